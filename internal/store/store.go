// Package store abstracts the tabular workspace the workflow operates on.
// Rows and columns are 1-based, matching how the layouts in internal/models
// address cells.
package store

import (
	"context"
	"errors"
)

// Cell is a single table value: string, float64, bool, time.Time or nil.
type Cell = any

// ErrTableNotFound is returned when a named table does not exist.
var ErrTableNotFound = errors.New("table not found")

// Store is a collection of named tables.
type Store interface {
	// Table returns an existing table or ErrTableNotFound.
	Table(ctx context.Context, name string) (Table, error)
	// CreateTable creates an empty table. Fails if the name is taken.
	CreateTable(ctx context.Context, name string) (Table, error)
	// CloneTable copies an existing table, contents included, under a new
	// name. Used to stamp ledgers out of the Template table.
	CloneTable(ctx context.Context, template, name string) (Table, error)
	// TableNames lists all table names in creation order.
	TableNames(ctx context.Context) ([]string, error)
}

// Table is a sparse grid of cells.
type Table interface {
	Name() string
	// ReadRange returns a numRows x numCols block starting at (row, col).
	// Cells never written read back as nil.
	ReadRange(ctx context.Context, row, col, numRows, numCols int) ([][]Cell, error)
	WriteCell(ctx context.Context, row, col int, value Cell) error
	// WriteRow writes values left to right starting at column 1.
	WriteRow(ctx context.Context, row int, values []Cell) error
	// AppendRow writes values on the row after the last used one.
	AppendRow(ctx context.Context, values []Cell) error
	// LastUsedRow returns the highest row holding any value, 0 when empty.
	LastUsedRow(ctx context.Context) (int, error)
}
