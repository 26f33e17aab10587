package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	// Register Postgres SQL driver.
	_ "github.com/lib/pq"
	// Register SQLite SQL driver.
	_ "modernc.org/sqlite"
)

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// SQLStore opens record tables on a SQL backend.
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewSQLiteStore creates a SQLite-backed record store.
// dsn can be a file path (e.g. /tmp/panel.db) or SQLite DSN.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "expanel.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	store := &SQLStore{db: db, dialect: dialectSQLite}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	return store, nil
}

// NewPostgresStore creates a Postgres-backed record store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	store := &SQLStore{db: db, dialect: dialectPostgres}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres store: %w", err)
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

var tableNameRE = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// EnsureTable creates the record table for a model if it does not exist.
func (s *SQLStore) EnsureTable(table string) error {
	if !tableNameRE.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	pk TEXT PRIMARY KEY,
	data TEXT NOT NULL
);`, table)
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize %s table %s: %w", s.dialect, table, err)
	}
	return nil
}

// Records returns the Records surface for one model table. EnsureTable must
// have been called for the table during startup.
func (s *SQLStore) Records(table string) (Records, error) {
	if !tableNameRE.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &sqlRecords{store: s, table: table}, nil
}

// rebind converts ?-style placeholders to the dialect's form.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type sqlRecords struct {
	store *SQLStore
	table string
}

func (r *sqlRecords) Get(ctx context.Context, pk string) (Record, error) {
	query := r.store.rebind(fmt.Sprintf("SELECT data FROM %s WHERE pk = ?", r.table))
	var data string
	err := r.store.db.QueryRowContext(ctx, query, pk).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s record %s: %w", r.table, pk, err)
	}
	return decodeRecord(pk, data)
}

func (r *sqlRecords) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.store.rebind(fmt.Sprintf("SELECT pk, data FROM %s ORDER BY pk LIMIT ? OFFSET ?", r.table))
	rows, err := r.store.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", r.table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var pk, data string
		if err := rows.Scan(&pk, &data); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", r.table, err)
		}
		rec, err := decodeRecord(pk, data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqlRecords) Count(ctx context.Context) (int, error) {
	var n int
	err := r.store.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s records: %w", r.table, err)
	}
	return n, nil
}

func (r *sqlRecords) Put(ctx context.Context, pk string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record %s: %w", r.table, pk, err)
	}
	var query string
	if r.store.dialect == dialectPostgres {
		query = r.store.rebind(fmt.Sprintf(
			"INSERT INTO %s (pk, data) VALUES (?, ?) ON CONFLICT (pk) DO UPDATE SET data = EXCLUDED.data", r.table))
	} else {
		query = fmt.Sprintf("INSERT OR REPLACE INTO %s (pk, data) VALUES (?, ?)", r.table)
	}
	if _, err := r.store.db.ExecContext(ctx, query, pk, string(data)); err != nil {
		return fmt.Errorf("put %s record %s: %w", r.table, pk, err)
	}
	return nil
}

func (r *sqlRecords) Delete(ctx context.Context, pk string) error {
	query := r.store.rebind(fmt.Sprintf("DELETE FROM %s WHERE pk = ?", r.table))
	res, err := r.store.db.ExecContext(ctx, query, pk)
	if err != nil {
		return fmt.Errorf("delete %s record %s: %w", r.table, pk, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRecord(pk, data string) (Record, error) {
	rec := Record{}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", pk, err)
	}
	rec["pk"] = pk
	return rec, nil
}
