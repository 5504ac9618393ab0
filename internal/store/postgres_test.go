package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStoreMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestPostgresStoreTableLookup(t *testing.T) {
	s, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sheets WHERE name = $1")).
		WithArgs("Log").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	tbl, err := s.Table(context.Background(), "Log")
	require.NoError(t, err)
	assert.Equal(t, "Log", tbl.Name())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sheets WHERE name = $1")).
		WithArgs("Missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = s.Table(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCreateTable(t *testing.T) {
	s, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sheets (name) VALUES ($1) RETURNING id")).
		WithArgs("Alice 2026").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	tbl, err := s.CreateTable(context.Background(), "Alice 2026")
	require.NoError(t, err)
	assert.Equal(t, "Alice 2026", tbl.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCloneTableCopiesCells(t *testing.T) {
	s, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sheets WHERE name = $1")).
		WithArgs("Template").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sheets (name) VALUES ($1) RETURNING id")).
		WithArgs("Alice 2026").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sheet_cells (sheet_id, row, col, kind, value) SELECT $1, row, col, kind, value FROM sheet_cells WHERE sheet_id = $2")).
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 42))
	mock.ExpectCommit()

	tbl, err := s.CloneTable(context.Background(), "Template", "Alice 2026")
	require.NoError(t, err)
	assert.Equal(t, "Alice 2026", tbl.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTableWriteCellUpsert(t *testing.T) {
	s, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sheets WHERE name = $1")).
		WithArgs("Log").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	tbl, err := s.Table(context.Background(), "Log")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO sheet_cells .+ ON CONFLICT").
		WithArgs(7, 2, 12, kindString, "Approved").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, tbl.WriteCell(context.Background(), 2, 12, "Approved"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sheet_cells WHERE sheet_id = $1 AND row = $2 AND col = $3")).
		WithArgs(7, 2, 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, tbl.WriteCell(context.Background(), 2, 12, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTableReadRangeAndLastRow(t *testing.T) {
	s, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sheets WHERE name = $1")).
		WithArgs("Log").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	tbl, err := s.Table(context.Background(), "Log")
	require.NoError(t, err)

	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT row, col, kind, value FROM sheet_cells").
		WithArgs(7, 2, 2, 1, 3).
		WillReturnRows(sqlmock.NewRows([]string{"row", "col", "kind", "value"}).
			AddRow(2, 1, kindString, "REQ-1-001").
			AddRow(2, 2, kindTime, when.Format(time.RFC3339Nano)).
			AddRow(2, 3, kindNumber, "3.1"))

	grid, err := tbl.ReadRange(context.Background(), 2, 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "REQ-1-001", grid[0][0])
	assert.Equal(t, when, grid[0][1])
	assert.Equal(t, 3.1, grid[0][2])

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(row), 0) FROM sheet_cells WHERE sheet_id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(9))

	last, err := tbl.LastUsedRow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCellEncodingRoundTrip(t *testing.T) {
	cases := []Cell{"text", 3.1, true, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	for _, c := range cases {
		kind, raw, err := encodeCell(c)
		require.NoError(t, err)
		got, err := decodeCell(kind, raw)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, _, err := encodeCell(struct{}{})
	assert.Error(t, err)
	_, err = decodeCell("mystery", "x")
	assert.Error(t, err)
}
