package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexledger/internal/aggregate"
	"lexledger/internal/config"
	applog "lexledger/internal/log"
	"lexledger/internal/period"
	sheetsmem "lexledger/internal/sheets/memory"
	"lexledger/internal/storage"
	"lexledger/internal/storage/memory"
)

var fixedNow = func() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) }

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		PeriodMaxMonth:         period.YearMonth{Year: 2032, Month: time.December},
		InstallmentConcurrency: 2,
	}
	logger := applog.New(applog.Config{Output: io.Discard})
	created := func() time.Time { return time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC) }
	app := Assemble(cfg, logger, memory.NewStore(storage.WithClock(created)), nil)
	app.Now = fixedNow
	return app
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(Options{
		Config: app.Config,
		NewApp: func(context.Context) (*App, error) { return app, nil },
		Now:    fixedNow,
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, repo storage.Repository) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range []storage.Record{
		{"type": "entrada", "category": "honorarios", "value": "2.000,00", "date": "2024-06-05", "status": "pago"},
		{"type": "despesa", "category": "aluguel", "value": "800", "date": "2024-06-10", "status": "pago"},
		{"type": "entrada", "category": "honorarios", "value": "500", "date": "2024-05-10", "status": "pago"},
	} {
		_, err := repo.Create(ctx, storage.Financial, rec)
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, storage.Processes, storage.Record{
		"number": "0001", "client_name": "Maria", "status": "em_andamento",
	})
	require.NoError(t, err)
}

func TestPeriodResolve(t *testing.T) {
	app := testApp(t)

	out, err := run(t, app, "period", "resolve", "--kind", "custom_month", "--month", "2024-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Início: 2024-02-01")
	assert.Contains(t, out, "Fim: 2024-02-29")

	out, err = run(t, app, "period", "resolve", "--kind", "last_3_months")
	require.NoError(t, err)
	assert.Contains(t, out, "Início: 2024-04-01")
	assert.Contains(t, out, "Fim: 2024-06-30")

	out, err = run(t, app, "period", "resolve", "--kind", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "sem limite")

	_, err = run(t, app, "period", "resolve", "--kind", "fortnight")
	assert.ErrorIs(t, err, period.ErrUnknownKind)
}

func TestPeriodShift(t *testing.T) {
	app := testApp(t)

	out, err := run(t, app, "period", "shift", "--kind", "custom_month", "--month", "2024-01", "--direction", "prev")
	require.NoError(t, err)
	assert.Contains(t, out, "Início: 2023-12-01")
	assert.NotContains(t, out, "last selectable month")

	out, err = run(t, app, "period", "shift", "--kind", "custom_month", "--month", "2032-12", "--direction", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Início: 2032-12-01")
	assert.Contains(t, out, "Already at the last selectable month (2032-12)")

	_, err = run(t, app, "period", "shift", "--kind", "current_year")
	assert.ErrorIs(t, err, period.ErrNotNavigable)

	_, err = run(t, app, "period", "shift", "--kind", "current_month", "--direction", "sideways")
	assert.ErrorIs(t, err, period.ErrInvalidDirection)
}

func TestLedgerAddInstallments(t *testing.T) {
	app := testApp(t)

	out, err := run(t, app, "ledger", "add",
		"--type", "despesa", "--category", "materiais", "--value", "300",
		"--payment-method", "cartao_credito_parcelado", "--installments", "3",
		"--description", "Notebook", "--date", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Notebook - Parcela 1/3")
	assert.Contains(t, out, "Notebook - Parcela 3/3")

	recs, err := app.Repo.List(context.Background(), storage.Financial)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	group, _ := recs[0]["installment_group_id"].(string)
	require.NotEmpty(t, group)

	out, err = run(t, app, "ledger", "cancel-group", group)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "cancelado"))
}

func TestLedgerAddSingleEntryDefaults(t *testing.T) {
	app := testApp(t)

	out, err := run(t, app, "ledger", "add", "--type", "entrada", "--category", "honorarios", "--value", "1.500,50")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-15")
	assert.Contains(t, out, "pendente")

	recs, err := app.Repo.List(context.Background(), storage.Financial)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	id := recs[0].ID()

	out, err = run(t, app, "ledger", "status", id, "pago")
	require.NoError(t, err)
	assert.Contains(t, out, "pago")

	_, err = run(t, app, "ledger", "status", id, "quitado")
	assert.Error(t, err)

	_, err = run(t, app, "ledger", "delete", id)
	require.NoError(t, err)
	_, err = run(t, app, "ledger", "delete", id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLedgerAddRejectsBadInstallmentCount(t *testing.T) {
	app := testApp(t)
	_, err := run(t, app, "ledger", "add", "--type", "despesa", "--category", "materiais", "--value", "300",
		"--payment-method", "cartao_credito_parcelado", "--installments", "13")
	assert.Error(t, err)

	recs, err := app.Repo.List(context.Background(), storage.Financial)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLedgerList(t *testing.T) {
	app := testApp(t)
	seed(t, app.Repo)

	out, err := run(t, app, "ledger", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-05")
	assert.Contains(t, out, "2024-06-10")
	assert.NotContains(t, out, "2024-05-10")
	assert.Less(t, strings.Index(out, "2024-06-05"), strings.Index(out, "2024-06-10"))
}

func TestReportJSON(t *testing.T) {
	app := testApp(t)
	seed(t, app.Repo)

	out, err := run(t, app, "report", "--json")
	require.NoError(t, err)

	var res aggregate.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "2000", res.Totals.Income.String())
	assert.Equal(t, "800", res.Totals.Expense.String())
	assert.Equal(t, "1200", res.Totals.Profit.String())
	assert.Len(t, res.Monthly, 1)
}

func TestReportText(t *testing.T) {
	app := testApp(t)
	seed(t, app.Repo)

	out, err := run(t, app, "report", "--kind", "last_3_months")
	require.NoError(t, err)
	assert.Contains(t, out, "Últimos 3 meses")
	assert.Contains(t, out, "Receitas")
	assert.Contains(t, out, "Aluguel")
}

func TestReportExport(t *testing.T) {
	app := testApp(t)
	seed(t, app.Repo)

	_, err := run(t, app, "report", "--export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")

	writer := sheetsmem.New()
	app.Writer = writer
	out, err := run(t, app, "report", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported report to mem:1")
	assert.Equal(t, 1, writer.Count())
}

func TestReviewCommands(t *testing.T) {
	app := testApp(t)
	seed(t, app.Repo)

	out, err := run(t, app, "review", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0001")

	recs, err := app.Repo.List(context.Background(), storage.Processes)
	require.NoError(t, err)
	id := recs[0].ID()

	out, err = run(t, app, "review", "mark", id)
	require.NoError(t, err)
	assert.Contains(t, out, "reviewed on 2024-06-15")

	out, err = run(t, app, "review", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "0001")
}

func TestCommandsWithoutBackend(t *testing.T) {
	root := NewRootCommand(Options{Now: fixedNow})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"review", "list"})
	err := root.ExecuteContext(context.Background())
	assert.Error(t, err)
}

func TestSchemaCommand(t *testing.T) {
	app := testApp(t)

	app.Config.DataBackend = "memory"
	out, err := run(t, app, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend memory has no schema")

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	app.Config.DataBackend = "sqlite"
	app.Config.SQLiteDBPath = dbPath
	_, err = storage.RunMigrations(dbPath)
	require.NoError(t, err)

	out, err = run(t, app, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 2")
}
