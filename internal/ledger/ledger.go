// Package ledger manages the per-employee, per-year ledger tables mirrored
// from the central log.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/internal/store"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
	"github.com/noah-isme/visit-log-api/pkg/export"
)

var ledgerNamePattern = regexp.MustCompile(`^(.+) (20\d{2})$`)

// Ref identifies one ledger table.
type Ref struct {
	TableName    string
	EmployeeName string
	Year         int
}

// Manager creates, fills and scans ledger tables.
type Manager struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewManager builds a ledger Manager.
func NewManager(st store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: st, logger: logger, now: time.Now}
}

// Name returns the table name for an employee's yearly ledger.
func Name(employeeName string, year int) string {
	return fmt.Sprintf("%s %d", employeeName, year)
}

// IsLedgerName reports whether a table name looks like a ledger and returns
// its parts.
func IsLedgerName(tableName string) (employee string, year int, ok bool) {
	m := ledgerNamePattern.FindStringSubmatch(tableName)
	if m == nil {
		return "", 0, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], year, true
}

// EnsureLedger returns the employee's ledger for the year, stamping a new
// one from the Template table when missing. Idempotent.
func (m *Manager) EnsureLedger(ctx context.Context, emp models.Employee, year int) (store.Table, error) {
	name := Name(emp.Name, year)
	tbl, err := m.store.Table(ctx, name)
	if err == nil {
		return tbl, nil
	}
	if !errors.Is(err, store.ErrTableNotFound) {
		return nil, err
	}

	tbl, err = m.store.CloneTable(ctx, models.TemplateTableName, name)
	if errors.Is(err, store.ErrTableNotFound) {
		// no template in this workspace, start from a blank table
		tbl, err = m.store.CreateTable(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("create ledger %q: %w", name, err)
	}

	if err := tbl.WriteCell(ctx, models.LedgerYearLabelRow, models.LedgerYearLabelCol, fmt.Sprintf("For the year of %d", year)); err != nil {
		return nil, err
	}
	if err := tbl.WriteCell(ctx, models.LedgerNameRow, models.LedgerNameCol, emp.Name); err != nil {
		return nil, err
	}
	if err := tbl.WriteCell(ctx, models.LedgerPositionRow, models.LedgerPositionCol, emp.Position); err != nil {
		return nil, err
	}
	m.logger.Info("ledger created", zap.String("table", name))
	return tbl, nil
}

// Mirror appends the entry to the employee's ledger for the visit year.
// Times land as HH:MM strings, never as native time values.
func (m *Manager) Mirror(ctx context.Context, entry models.VisitEntry, emp models.Employee) error {
	year := YearFor(entry.VisitDate, m.now())
	tbl, err := m.EnsureLedger(ctx, emp, year)
	if err != nil {
		return err
	}

	last, err := tbl.LastUsedRow(ctx)
	if err != nil {
		return err
	}
	row := last + 1
	if row < models.LedgerDataStartRow {
		row = models.LedgerDataStartRow
	}

	cells := make([]store.Cell, models.LedgerColumnCount)
	cells[models.LedgerColRequestID-1] = entry.RequestID
	cells[models.LedgerColRequestDate-1] = entry.Timestamp
	cells[models.LedgerColVisitDate-1] = entry.VisitDate
	cells[models.LedgerColStatus-1] = string(entry.Status)
	cells[models.LedgerColTimeStart-1] = entry.StartTime
	cells[models.LedgerColTimeEnd-1] = entry.EndTime
	cells[models.LedgerColTotalHours-1] = ComputeHours(entry.StartTime, entry.EndTime)
	cells[models.LedgerColPurpose-1] = entry.Purpose
	cells[models.LedgerColLocation-1] = PrimaryLocation(entry.Companies)
	cells[models.LedgerColCompanies-1] = entry.Companies
	cells[models.LedgerColDescription-1] = entry.Description
	cells[models.LedgerColReimbursement-1] = entry.Reimbursement

	if err := tbl.WriteRow(ctx, row, cells); err != nil {
		return fmt.Errorf("mirror entry %s: %w", entry.RequestID, err)
	}
	return nil
}

// Ledgers scans the workspace once and returns every ledger table.
func (m *Manager) Ledgers(ctx context.Context) ([]Ref, error) {
	names, err := m.store.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	var refs []Ref
	for _, name := range names {
		emp, year, ok := IsLedgerName(name)
		if !ok {
			continue
		}
		refs = append(refs, Ref{TableName: name, EmployeeName: emp, Year: year})
	}
	return refs, nil
}

// FindRow locates the data row holding the request ID, 0 when absent.
func (m *Manager) FindRow(ctx context.Context, tbl store.Table, requestID string) (int, error) {
	last, err := tbl.LastUsedRow(ctx)
	if err != nil {
		return 0, err
	}
	if last < models.LedgerDataStartRow {
		return 0, nil
	}
	grid, err := tbl.ReadRange(ctx, models.LedgerDataStartRow, models.LedgerColRequestID, last-models.LedgerDataStartRow+1, 1)
	if err != nil {
		return 0, err
	}
	for i, row := range grid {
		if s, _ := row[0].(string); s == requestID {
			return models.LedgerDataStartRow + i, nil
		}
	}
	return 0, nil
}

// UpdateStatus sets the status cell of the entry's row in one ledger.
// Missing rows are not an error; the caller decides what a miss means.
func (m *Manager) UpdateStatus(ctx context.Context, tableName, requestID string, status models.Status) (bool, error) {
	tbl, err := m.store.Table(ctx, tableName)
	if err != nil {
		return false, err
	}
	row, err := m.FindRow(ctx, tbl, requestID)
	if err != nil {
		return false, err
	}
	if row == 0 {
		return false, nil
	}
	if err := tbl.WriteCell(ctx, row, models.LedgerColStatus, string(status)); err != nil {
		return false, err
	}
	return true, nil
}

// Export renders an employee's yearly ledger as a dataset for CSV or PDF
// output.
func (m *Manager) Export(ctx context.Context, employeeName string, year int) (export.Dataset, error) {
	name := Name(employeeName, year)
	tbl, err := m.store.Table(ctx, name)
	if errors.Is(err, store.ErrTableNotFound) {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("ledger %q not found", name))
	}
	if err != nil {
		return export.Dataset{}, err
	}

	ds := export.Dataset{Headers: models.LedgerHeaders}
	last, err := tbl.LastUsedRow(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	if last < models.LedgerDataStartRow {
		return ds, nil
	}
	grid, err := tbl.ReadRange(ctx, models.LedgerDataStartRow, 1, last-models.LedgerDataStartRow+1, models.LedgerColumnCount)
	if err != nil {
		return export.Dataset{}, err
	}
	for _, row := range grid {
		if row[models.LedgerColRequestID-1] == nil {
			continue
		}
		rec := make(map[string]string, models.LedgerColumnCount)
		for i, header := range models.LedgerHeaders {
			rec[header] = renderCell(row[i])
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// PrimaryLocation picks the first company from a comma separated list.
func PrimaryLocation(companies string) string {
	first := strings.SplitN(companies, ",", 2)[0]
	return strings.TrimSpace(first)
}

func renderCell(v store.Cell) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", val)
	}
}
