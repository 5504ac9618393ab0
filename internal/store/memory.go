package store

import (
	"context"
	"fmt"
	"sync"
)

type cellKey struct {
	row int
	col int
}

// MemoryStore is an in-process Store used for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
	order  []string
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

// Table implements Store.
func (s *MemoryStore) Table(_ context.Context, name string) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
	}
	return t, nil
}

// CreateTable implements Store.
func (s *MemoryStore) CreateTable(_ context.Context, name string) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[name]; exists {
		return nil, fmt.Errorf("table %q already exists", name)
	}
	t := newMemoryTable(name)
	s.tables[name] = t
	s.order = append(s.order, name)
	return t, nil
}

// CloneTable implements Store.
func (s *MemoryStore) CloneTable(_ context.Context, template, name string) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.tables[template]
	if !ok {
		return nil, fmt.Errorf("%q: %w", template, ErrTableNotFound)
	}
	if _, exists := s.tables[name]; exists {
		return nil, fmt.Errorf("table %q already exists", name)
	}
	dst := newMemoryTable(name)
	src.mu.RLock()
	for k, v := range src.cells {
		dst.cells[k] = v
	}
	dst.lastRow = src.lastRow
	src.mu.RUnlock()
	s.tables[name] = dst
	s.order = append(s.order, name)
	return dst, nil
}

// TableNames implements Store.
func (s *MemoryStore) TableNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names, nil
}

type memoryTable struct {
	name string

	mu      sync.RWMutex
	cells   map[cellKey]Cell
	lastRow int
}

func newMemoryTable(name string) *memoryTable {
	return &memoryTable{name: name, cells: make(map[cellKey]Cell)}
}

func (t *memoryTable) Name() string { return t.name }

func (t *memoryTable) ReadRange(_ context.Context, row, col, numRows, numCols int) ([][]Cell, error) {
	if row < 1 || col < 1 || numRows < 1 || numCols < 1 {
		return nil, fmt.Errorf("invalid range %d,%d %dx%d", row, col, numRows, numCols)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][]Cell, numRows)
	for r := 0; r < numRows; r++ {
		out[r] = make([]Cell, numCols)
		for c := 0; c < numCols; c++ {
			out[r][c] = t.cells[cellKey{row: row + r, col: col + c}]
		}
	}
	return out, nil
}

func (t *memoryTable) WriteCell(_ context.Context, row, col int, value Cell) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell %d,%d", row, col)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(row, col, value)
	return nil
}

func (t *memoryTable) WriteRow(_ context.Context, row int, values []Cell) error {
	if row < 1 {
		return fmt.Errorf("invalid row %d", row)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, v := range values {
		t.set(row, i+1, v)
	}
	return nil
}

func (t *memoryTable) AppendRow(ctx context.Context, values []Cell) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.lastRow + 1
	for i, v := range values {
		t.set(row, i+1, v)
	}
	return nil
}

func (t *memoryTable) LastUsedRow(_ context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastRow, nil
}

// set assumes the write lock is held.
func (t *memoryTable) set(row, col int, value Cell) {
	key := cellKey{row: row, col: col}
	if value == nil {
		delete(t.cells, key)
		return
	}
	t.cells[key] = value
	if row > t.lastRow {
		t.lastRow = row
	}
}
