package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/visit-log-api/pkg/config"
)

// Cell kind discriminators persisted alongside the raw value.
const (
	kindString = "string"
	kindNumber = "number"
	kindBool   = "bool"
	kindTime   = "time"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS sheets (
    id   SERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS sheet_cells (
    sheet_id INT  NOT NULL REFERENCES sheets(id) ON DELETE CASCADE,
    row      INT  NOT NULL,
    col      INT  NOT NULL,
    kind     TEXT NOT NULL,
    value    TEXT NOT NULL,
    PRIMARY KEY (sheet_id, row, col)
);
CREATE INDEX IF NOT EXISTS idx_sheet_cells_row ON sheet_cells (sheet_id, row);
`

// PostgresStore persists tables as a sparse cell grid.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens a connection pool and ensures the schema exists.
func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &PostgresStore{db: db}
	if _, err := db.Exec(pgSchema); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// NewPostgresStoreWithDB wraps an existing connection. Used by tests.
func NewPostgresStoreWithDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Table implements Store.
func (s *PostgresStore) Table(ctx context.Context, name string) (Table, error) {
	var id int
	err := s.db.GetContext(ctx, &id, "SELECT id FROM sheets WHERE name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup sheet %q: %w", name, err)
	}
	return &postgresTable{db: s.db, id: id, name: name}, nil
}

// CreateTable implements Store.
func (s *PostgresStore) CreateTable(ctx context.Context, name string) (Table, error) {
	var id int
	err := s.db.GetContext(ctx, &id, "INSERT INTO sheets (name) VALUES ($1) RETURNING id", name)
	if err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}
	return &postgresTable{db: s.db, id: id, name: name}, nil
}

// CloneTable implements Store.
func (s *PostgresStore) CloneTable(ctx context.Context, template, name string) (Table, error) {
	var srcID int
	err := s.db.GetContext(ctx, &srcID, "SELECT id FROM sheets WHERE name = $1", template)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", template, ErrTableNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup sheet %q: %w", template, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin clone: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int
	if err := tx.GetContext(ctx, &id, "INSERT INTO sheets (name) VALUES ($1) RETURNING id", name); err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO sheet_cells (sheet_id, row, col, kind, value) SELECT $1, row, col, kind, value FROM sheet_cells WHERE sheet_id = $2",
		id, srcID)
	if err != nil {
		return nil, fmt.Errorf("copy cells: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit clone: %w", err)
	}
	return &postgresTable{db: s.db, id: id, name: name}, nil
}

// TableNames implements Store.
func (s *PostgresStore) TableNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, "SELECT name FROM sheets ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	return names, nil
}

type postgresTable struct {
	db   *sqlx.DB
	id   int
	name string
}

func (t *postgresTable) Name() string { return t.name }

type cellRow struct {
	Row   int    `db:"row"`
	Col   int    `db:"col"`
	Kind  string `db:"kind"`
	Value string `db:"value"`
}

func (t *postgresTable) ReadRange(ctx context.Context, row, col, numRows, numCols int) ([][]Cell, error) {
	if row < 1 || col < 1 || numRows < 1 || numCols < 1 {
		return nil, fmt.Errorf("invalid range %d,%d %dx%d", row, col, numRows, numCols)
	}
	var rows []cellRow
	err := t.db.SelectContext(ctx, &rows,
		"SELECT row, col, kind, value FROM sheet_cells WHERE sheet_id = $1 AND row BETWEEN $2 AND $3 AND col BETWEEN $4 AND $5",
		t.id, row, row+numRows-1, col, col+numCols-1)
	if err != nil {
		return nil, fmt.Errorf("read range: %w", err)
	}

	out := make([][]Cell, numRows)
	for r := range out {
		out[r] = make([]Cell, numCols)
	}
	for _, cr := range rows {
		v, err := decodeCell(cr.Kind, cr.Value)
		if err != nil {
			return nil, fmt.Errorf("decode cell %d,%d: %w", cr.Row, cr.Col, err)
		}
		out[cr.Row-row][cr.Col-col] = v
	}
	return out, nil
}

func (t *postgresTable) WriteCell(ctx context.Context, row, col int, value Cell) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell %d,%d", row, col)
	}
	if value == nil {
		_, err := t.db.ExecContext(ctx,
			"DELETE FROM sheet_cells WHERE sheet_id = $1 AND row = $2 AND col = $3", t.id, row, col)
		if err != nil {
			return fmt.Errorf("clear cell: %w", err)
		}
		return nil
	}
	kind, raw, err := encodeCell(value)
	if err != nil {
		return err
	}
	_, err = t.db.ExecContext(ctx,
		"INSERT INTO sheet_cells (sheet_id, row, col, kind, value) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (sheet_id, row, col) DO UPDATE SET kind = EXCLUDED.kind, value = EXCLUDED.value",
		t.id, row, col, kind, raw)
	if err != nil {
		return fmt.Errorf("write cell: %w", err)
	}
	return nil
}

func (t *postgresTable) WriteRow(ctx context.Context, row int, values []Cell) error {
	if row < 1 {
		return fmt.Errorf("invalid row %d", row)
	}
	for i, v := range values {
		if err := t.WriteCell(ctx, row, i+1, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *postgresTable) AppendRow(ctx context.Context, values []Cell) error {
	last, err := t.LastUsedRow(ctx)
	if err != nil {
		return err
	}
	return t.WriteRow(ctx, last+1, values)
}

func (t *postgresTable) LastUsedRow(ctx context.Context) (int, error) {
	var last int
	err := t.db.GetContext(ctx, &last,
		"SELECT COALESCE(MAX(row), 0) FROM sheet_cells WHERE sheet_id = $1", t.id)
	if err != nil {
		return 0, fmt.Errorf("last used row: %w", err)
	}
	return last, nil
}

func encodeCell(value Cell) (kind, raw string, err error) {
	switch v := value.(type) {
	case string:
		return kindString, v, nil
	case float64:
		return kindNumber, strconv.FormatFloat(v, 'g', -1, 64), nil
	case int:
		return kindNumber, strconv.Itoa(v), nil
	case int64:
		return kindNumber, strconv.FormatInt(v, 10), nil
	case bool:
		return kindBool, strconv.FormatBool(v), nil
	case time.Time:
		return kindTime, v.UTC().Format(time.RFC3339Nano), nil
	default:
		return "", "", fmt.Errorf("unsupported cell type %T", value)
	}
}

func decodeCell(kind, raw string) (Cell, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindNumber:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindTime:
		return time.Parse(time.RFC3339Nano, raw)
	default:
		return nil, fmt.Errorf("unknown cell kind %q", kind)
	}
}
