package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/internal/store"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
)

var testEmployee = models.Employee{Name: "Alice", Email: "alice@example.com", Position: "Field Engineer"}

func testEntry(id string) models.VisitEntry {
	return models.VisitEntry{
		RequestID:     id,
		Timestamp:     time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		EmployeeName:  "Alice",
		EmployeeEmail: "alice@example.com",
		VisitDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:30",
		EndTime:       "12:36",
		Purpose:       "Client visit",
		Reimbursement: "Yes",
		Description:   "Quarterly review",
		Companies:     "Acme, Globex",
		Status:        models.StatusPending,
	}
}

func TestEnsureLedgerStampsTemplate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	tpl, err := st.CreateTable(ctx, models.TemplateTableName)
	require.NoError(t, err)
	require.NoError(t, tpl.WriteCell(ctx, 9, 1, "Request_ID"))

	m := NewManager(st, nil)
	tbl, err := m.EnsureLedger(ctx, testEmployee, 2026)
	require.NoError(t, err)
	assert.Equal(t, "Alice 2026", tbl.Name())

	grid, err := tbl.ReadRange(ctx, 9, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Request_ID", grid[0][0])

	grid, err = tbl.ReadRange(ctx, models.LedgerYearLabelRow, models.LedgerYearLabelCol, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "For the year of 2026", grid[0][0])

	grid, err = tbl.ReadRange(ctx, models.LedgerNameRow, models.LedgerNameCol, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", grid[0][0])

	grid, err = tbl.ReadRange(ctx, models.LedgerPositionRow, models.LedgerPositionCol, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Field Engineer", grid[0][0])
}

func TestEnsureLedgerIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	m := NewManager(st, nil)
	first, err := m.EnsureLedger(ctx, testEmployee, 2026)
	require.NoError(t, err)
	require.NoError(t, first.WriteCell(ctx, models.LedgerDataStartRow, 1, "keep-me"))

	second, err := m.EnsureLedger(ctx, testEmployee, 2026)
	require.NoError(t, err)
	assert.Equal(t, first.Name(), second.Name())

	grid, err := second.ReadRange(ctx, models.LedgerDataStartRow, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "keep-me", grid[0][0], "existing data must survive a second ensure")

	names, err := st.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice 2026"}, names)
}

func TestMirrorWritesDataRows(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := NewManager(st, nil)

	require.NoError(t, m.Mirror(ctx, testEntry("REQ-1-001"), testEmployee))
	require.NoError(t, m.Mirror(ctx, testEntry("REQ-2-002"), testEmployee))

	tbl, err := st.Table(ctx, "Alice 2026")
	require.NoError(t, err)

	grid, err := tbl.ReadRange(ctx, models.LedgerDataStartRow, 1, 2, models.LedgerColumnCount)
	require.NoError(t, err)

	first := grid[0]
	assert.Equal(t, "REQ-1-001", first[models.LedgerColRequestID-1])
	assert.Equal(t, "Pending", first[models.LedgerColStatus-1])
	assert.Equal(t, "09:30", first[models.LedgerColTimeStart-1])
	assert.Equal(t, "12:36", first[models.LedgerColTimeEnd-1])
	assert.Equal(t, 3.1, first[models.LedgerColTotalHours-1])
	assert.Equal(t, "Acme", first[models.LedgerColLocation-1])
	assert.Equal(t, "Acme, Globex", first[models.LedgerColCompanies-1])

	assert.Equal(t, "REQ-2-002", grid[1][models.LedgerColRequestID-1], "second entry lands on the next row")
}

func TestLedgersScansRegistry(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	for _, name := range []string{"Log", "Config", "Alice 2026", "Bob Smith 2025", "Notes"} {
		_, err := st.CreateTable(ctx, name)
		require.NoError(t, err)
	}

	refs, err := NewManager(st, nil).Ledgers(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, Ref{TableName: "Alice 2026", EmployeeName: "Alice", Year: 2026}, refs[0])
	assert.Equal(t, Ref{TableName: "Bob Smith 2025", EmployeeName: "Bob Smith", Year: 2025}, refs[1])
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := NewManager(st, nil)
	require.NoError(t, m.Mirror(ctx, testEntry("REQ-1-001"), testEmployee))

	updated, err := m.UpdateStatus(ctx, "Alice 2026", "REQ-1-001", models.StatusApproved)
	require.NoError(t, err)
	assert.True(t, updated)

	tbl, err := st.Table(ctx, "Alice 2026")
	require.NoError(t, err)
	grid, err := tbl.ReadRange(ctx, models.LedgerDataStartRow, models.LedgerColStatus, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Approved", grid[0][0])

	// a miss is reported, not an error
	updated, err = m.UpdateStatus(ctx, "Alice 2026", "REQ-9-999", models.StatusApproved)
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = m.UpdateStatus(ctx, "Bob 2026", "REQ-1-001", models.StatusApproved)
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := NewManager(st, nil)
	require.NoError(t, m.Mirror(ctx, testEntry("REQ-1-001"), testEmployee))

	ds, err := m.Export(ctx, "Alice", 2026)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerHeaders, ds.Headers)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "REQ-1-001", ds.Rows[0]["Request_ID"])
	assert.Equal(t, "3.1", ds.Rows[0]["Total_Hours"])
	assert.Equal(t, "2026-03-14", ds.Rows[0]["Visit_Date"])
	assert.Equal(t, "", ds.Rows[0]["Remarks"])
}

func TestExportUnknownLedger(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), nil)

	_, err := m.Export(context.Background(), "Nobody", 2026)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestIsLedgerName(t *testing.T) {
	emp, year, ok := IsLedgerName("Jane Doe 2024")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", emp)
	assert.Equal(t, 2024, year)

	for _, name := range []string{"Log", "Template", "Config", "2026", "Alice 99"} {
		_, _, ok := IsLedgerName(name)
		assert.False(t, ok, name)
	}
}
