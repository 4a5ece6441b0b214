package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores every collection as JSON documents in one table.
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; concurrent installment creates queue here.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "db_path", dbPath, "version", version)

	return &SQLiteRepository{db: db, opts: BuildOptions(opts...)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, c Collection) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM records WHERE collection = ? ORDER BY created_at DESC, rowid DESC`,
		string(c))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c, err)
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, c Collection, id string) (Record, error) {
	return r.get(ctx, r.db, c, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepository) get(ctx context.Context, q querier, c Collection, id string) (Record, error) {
	var data string
	err := q.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ?`,
		string(c), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound(c, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	return unmarshalRecord(data)
}

func (r *SQLiteRepository) Create(ctx context.Context, c Collection, rec Record) (Record, error) {
	now := r.opts.Now()
	out, err := NewRecord(c, rec, r.opts.NewID(), now)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s record: %w", c, err)
	}

	stamp := now.UTC().Format(TimestampLayout)
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(c), out.ID(), string(data), stamp, stamp); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c, err)
	}

	slog.DebugContext(ctx, "Record created", "collection", c, "id", out.ID())
	return out, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c Collection, id string, patch Record) (Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update %s/%s: %w", c, id, err)
	}
	defer tx.Rollback()

	existing, err := r.get(ctx, tx, c, id)
	if err != nil {
		return nil, err
	}
	out, err := Merge(c, existing, patch)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s record: %w", c, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(data), r.opts.Now().UTC().Format(TimestampLayout), string(c), id); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", c, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update %s/%s: %w", c, id, err)
	}
	return out, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, c Collection, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, string(c), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	if n == 0 {
		return NotFound(c, id)
	}
	return nil
}

// ListInstallmentGroup returns the ledger entries sharing an installment
// group, first installment first.
func (r *SQLiteRepository) ListInstallmentGroup(ctx context.Context, groupID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM records
		 WHERE collection = 'financial' AND json_extract(data, '$.installment_group_id') = ?
		 ORDER BY json_extract(data, '$.installment_index')`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("list installment group %s: %w", groupID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan installment group: %w", err)
		}
		rec, err := unmarshalRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func unmarshalRecord(data string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
