package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/noah-isme/visit-log-api/pkg/config"
)

// GSheetsStore backs the workspace with a Google Sheets spreadsheet. Each
// table is one sheet tab.
type GSheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
	order    []string
}

// NewGSheetsStore builds a store over the configured spreadsheet.
func NewGSheetsStore(ctx context.Context, cfg config.GSheetsConfig) (*GSheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	s := &GSheetsStore{svc: svc, spreadsheetID: cfg.SpreadsheetID}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// refresh reloads the tab name to sheet ID mapping.
func (s *GSheetsStore) refresh(ctx context.Context) error {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Fields("sheets.properties").Do()
	if err != nil {
		return fmt.Errorf("spreadsheet metadata: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheetIDs = make(map[string]int64, len(meta.Sheets))
	s.order = s.order[:0]
	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		s.order = append(s.order, sh.Properties.Title)
	}
	return nil
}

// Table implements Store.
func (s *GSheetsStore) Table(ctx context.Context, name string) (Table, error) {
	s.mu.Lock()
	_, ok := s.sheetIDs[name]
	s.mu.Unlock()
	if !ok {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		_, ok = s.sheetIDs[name]
		s.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
		}
	}
	return &gsheetsTable{store: s, name: name}, nil
}

// CreateTable implements Store.
func (s *GSheetsStore) CreateTable(ctx context.Context, name string) (Table, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("add sheet %q: %w", name, err)
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return &gsheetsTable{store: s, name: name}, nil
}

// CloneTable implements Store.
func (s *GSheetsStore) CloneTable(ctx context.Context, template, name string) (Table, error) {
	s.mu.Lock()
	srcID, ok := s.sheetIDs[template]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", template, ErrTableNotFound)
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DuplicateSheet: &sheets.DuplicateSheetRequest{
				SourceSheetId: srcID,
				NewSheetName:  name,
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("duplicate sheet %q: %w", template, err)
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return &gsheetsTable{store: s, name: name}, nil
}

// TableNames implements Store.
func (s *GSheetsStore) TableNames(ctx context.Context) ([]string, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names, nil
}

type gsheetsTable struct {
	store *GSheetsStore
	name  string
}

func (t *gsheetsTable) Name() string { return t.name }

func (t *gsheetsTable) ReadRange(ctx context.Context, row, col, numRows, numCols int) ([][]Cell, error) {
	if row < 1 || col < 1 || numRows < 1 || numCols < 1 {
		return nil, fmt.Errorf("invalid range %d,%d %dx%d", row, col, numRows, numCols)
	}
	rng := fmt.Sprintf("'%s'!%s%d:%s%d",
		t.name, columnLetter(col), row, columnLetter(col+numCols-1), row+numRows-1)
	resp, err := t.store.svc.Spreadsheets.Values.Get(t.store.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}

	out := make([][]Cell, numRows)
	for r := range out {
		out[r] = make([]Cell, numCols)
		if r >= len(resp.Values) {
			continue
		}
		for c := 0; c < numCols && c < len(resp.Values[r]); c++ {
			out[r][c] = normalizeCell(resp.Values[r][c])
		}
	}
	return out, nil
}

func (t *gsheetsTable) WriteCell(ctx context.Context, row, col int, value Cell) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell %d,%d", row, col)
	}
	rng := fmt.Sprintf("'%s'!%s%d", t.name, columnLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{outboundCell(value)}}}
	_, err := t.store.svc.Spreadsheets.Values.Update(t.store.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write cell %s: %w", rng, err)
	}
	return nil
}

func (t *gsheetsTable) WriteRow(ctx context.Context, row int, values []Cell) error {
	if row < 1 {
		return fmt.Errorf("invalid row %d", row)
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = outboundCell(v)
	}
	rng := fmt.Sprintf("'%s'!A%d", t.name, row)
	vr := &sheets.ValueRange{Values: [][]interface{}{out}}
	_, err := t.store.svc.Spreadsheets.Values.Update(t.store.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write row %s: %w", rng, err)
	}
	return nil
}

func (t *gsheetsTable) AppendRow(ctx context.Context, values []Cell) error {
	last, err := t.LastUsedRow(ctx)
	if err != nil {
		return err
	}
	return t.WriteRow(ctx, last+1, values)
}

func (t *gsheetsTable) LastUsedRow(ctx context.Context) (int, error) {
	resp, err := t.store.svc.Spreadsheets.Values.Get(t.store.spreadsheetID, fmt.Sprintf("'%s'", t.name)).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", t.name, err)
	}
	last := 0
	for i, row := range resp.Values {
		for _, v := range row {
			if v != nil && v != "" {
				last = i + 1
				break
			}
		}
	}
	return last, nil
}

// outboundCell converts a Cell to the value the Sheets API expects. Times
// are sent as plain strings so the sheet never holds native time values.
// Midnight values are written as bare dates; anything with a clock keeps it.
func outboundCell(value Cell) interface{} {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}

// normalizeCell maps API values onto the Cell type set.
func normalizeCell(v interface{}) Cell {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return val
	case float64, bool:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// columnLetter converts a 1-based column index to its A1 notation letters.
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
