package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type fakeSheets struct {
	mu      sync.Mutex
	calls   []string
	written [][]any
	input   string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		f.input = r.URL.Query().Get("valueInputOption")
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.written = vr.Values
		_, _ = w.Write([]byte(`{"updatedRange":"Relatorio!A1:D3","updatedRows":3}`))
	default:
		http.Error(w, "unexpected request", http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c, err := NewWithService(svc, "sheet-1", "Relatorio", nil)
	if err != nil {
		t.Fatalf("NewWithService: %v", err)
	}
	return c
}

func TestWriteReport_ClearsThenWrites(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	rows := [][]any{{"Relatório", "Mês atual"}, {}, {"Mês", "Receitas"}}
	ref, err := c.WriteReport(context.Background(), rows)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if ref != "Relatorio!A1:D3" {
		t.Errorf("unexpected ref %q", ref)
	}
	if strings.Join(fake.calls, ",") != "clear,update" {
		t.Errorf("unexpected call order %v", fake.calls)
	}
	if fake.input != "USER_ENTERED" {
		t.Errorf("unexpected valueInputOption %q", fake.input)
	}
	if len(fake.written) != 3 || len(fake.written[1]) != 1 {
		t.Errorf("blank row not preserved: %v", fake.written)
	}
}

func TestWriteReport_ClearFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))

	_, err := c.WriteReport(context.Background(), [][]any{{"x"}})
	if err == nil || !strings.Contains(err.Error(), "clear sheet Relatorio") {
		t.Fatalf("expected clear error, got %v", err)
	}
}

func TestNewWithService_Validation(t *testing.T) {
	if _, err := NewWithService(nil, " ", "Relatorio", nil); err == nil {
		t.Error("expected error for missing spreadsheet id")
	}
	if _, err := NewWithService(nil, "id", "", nil); err == nil {
		t.Error("expected error for missing sheet name")
	}
}

func TestWriteReport_NoService(t *testing.T) {
	c := &Client{spreadsheetID: "id", sheet: "Relatorio"}
	if _, err := c.WriteReport(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), "id", "Relatorio", Credentials{}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_UnreadableFile(t *testing.T) {
	_, err := New(context.Background(), "id", "Relatorio", Credentials{File: "/non/existent/sa.json"}, nil)
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Relatório d'Ouro"); got != "'Relatório d''Ouro'" {
		t.Fatalf("unexpected quoting %q", got)
	}
}
