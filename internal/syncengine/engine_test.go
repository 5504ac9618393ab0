package syncengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/visit-log-api/internal/ledger"
	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/internal/store"
	"github.com/noah-isme/visit-log-api/internal/visitlog"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
)

type recordingNotifier struct {
	approved []string
}

func (r *recordingNotifier) NotifyApproval(_ context.Context, entry models.VisitEntry) error {
	r.approved = append(r.approved, entry.RequestID)
	return nil
}

type recordingMetrics struct {
	updated int
	failed  int
	calls   int
}

func (r *recordingMetrics) RecordSyncTargets(updated, failed int) {
	r.updated += updated
	r.failed += failed
	r.calls++
}

type fixture struct {
	store    *store.MemoryStore
	log      *visitlog.Log
	ledgers  *ledger.Manager
	notifier *recordingNotifier
	metrics  *recordingMetrics
	engine   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	log := visitlog.New(st, nil)
	ledgers := ledger.NewManager(st, nil)
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}
	return &fixture{
		store:    st,
		log:      log,
		ledgers:  ledgers,
		notifier: notifier,
		metrics:  metrics,
		engine:   New(st, log, ledgers, notifier, metrics, nil),
	}
}

func (f *fixture) seed(t *testing.T, id, name, email string) models.VisitEntry {
	t.Helper()
	ctx := context.Background()
	entry := models.VisitEntry{
		RequestID:     id,
		Timestamp:     time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		EmployeeName:  name,
		EmployeeEmail: email,
		VisitDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		StartTime:     "09:30",
		EndTime:       "12:36",
		Companies:     "Acme",
		Status:        models.StatusPending,
	}
	require.NoError(t, f.log.Append(ctx, entry))
	require.NoError(t, f.ledgers.Mirror(ctx, entry, models.Employee{Name: name, Email: email}))
	return entry
}

func (f *fixture) ledgerStatus(t *testing.T, table, requestID string) string {
	t.Helper()
	ctx := context.Background()
	tbl, err := f.store.Table(ctx, table)
	require.NoError(t, err)
	row, err := f.ledgers.FindRow(ctx, tbl, requestID)
	require.NoError(t, err)
	require.NotZero(t, row)
	grid, err := tbl.ReadRange(ctx, row, models.LedgerColStatus, 1, 1)
	require.NoError(t, err)
	s, _ := grid[0][0].(string)
	return s
}

func TestOnStatusEditIgnoresNonStatusEdits(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "REQ-1-001", "Alice", "alice@example.com")
	ctx := context.Background()

	cases := []ChangeEvent{
		{Table: "Alice 2026", Row: 10, Col: models.LedgerColPurpose, NewValue: "Approved"},
		{Table: "Alice 2026", Row: 9, Col: models.LedgerColStatus, NewValue: "Approved"},
		{Table: "Log", Row: 10, Col: models.LedgerColStatus, NewValue: "Approved"},
		{Table: "Alice 2026", Row: 10, Col: models.LedgerColStatus, NewValue: "Done"},
		{Table: "Alice 2026", Row: 10, Col: models.LedgerColStatus, OldValue: "Pending", NewValue: "Invalid Employee"},
		{Table: "Alice 2026", Row: 10, Col: models.LedgerColStatus, OldValue: "Pending", NewValue: "Pending"},
		{Table: "Alice 2026", Row: 11, Col: models.LedgerColStatus, NewValue: "Approved"}, // empty row, no request id
	}
	for _, c := range cases {
		report, err := f.engine.OnStatusEdit(ctx, c)
		require.NoError(t, err)
		assert.Nil(t, report)
	}

	entry, _, err := f.log.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, entry.Status)
	assert.Equal(t, string(models.StatusPending), f.ledgerStatus(t, "Alice 2026", "REQ-1-001"))
	assert.Zero(t, f.metrics.calls, "ignored edits must not count targets")
}

func TestOnStatusEditPropagates(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "REQ-1-001", "Alice", "alice@example.com")
	ctx := context.Background()

	report, err := f.engine.OnStatusEdit(ctx, ChangeEvent{
		Table: "Alice 2026", Row: 10, Col: models.LedgerColStatus,
		OldValue: "Pending", NewValue: "Approved",
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "REQ-1-001", report.RequestID)
	assert.Zero(t, report.Failed)

	entry, _, err := f.log.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, entry.Status)
	assert.False(t, entry.ActionDate.IsZero())

	// the log target was counted; the source ledger was skipped
	assert.Equal(t, 1, f.metrics.calls)
	assert.Equal(t, 1, f.metrics.updated)
	assert.Zero(t, f.metrics.failed)
}

func TestPropagateLeavesOtherEntriesAlone(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "REQ-1-001", "Alice", "alice@example.com")
	f.seed(t, "REQ-1-002", "Bob", "bob@example.com")
	ctx := context.Background()

	report, err := f.engine.Propagate(ctx, "REQ-1-001", models.StatusApproved, "Alice 2026", "test")
	require.NoError(t, err)
	assert.Zero(t, report.Failed)

	// Bob's ledger was scanned but his entry must be untouched
	assert.Equal(t, string(models.StatusPending), f.ledgerStatus(t, "Bob 2026", "REQ-1-002"))

	bob, _, err := f.log.Find(ctx, "REQ-1-002")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, bob.Status)
}

func TestPropagateReportsMissingLogEntry(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "REQ-1-001", "Alice", "alice@example.com")

	report, err := f.engine.Propagate(context.Background(), "REQ-9-999", models.StatusApproved, "", "test")
	assert.ErrorIs(t, err, appErrors.ErrPartialSync)
	require.NotEmpty(t, report.Results)
	assert.False(t, report.Results[0].Updated)
	assert.Equal(t, 1, report.Failed)

	// the ledger pass still ran
	assert.Equal(t, string(models.StatusPending), f.ledgerStatus(t, "Alice 2026", "REQ-1-001"))
	assert.Equal(t, 1, f.metrics.failed)
}

func TestApproveUpdatesAllCopiesAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "REQ-1-001", "Alice", "alice@example.com")
	ctx := context.Background()

	report, err := f.engine.Approve(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Zero(t, report.Failed)

	entry, _, err := f.log.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, entry.Status)
	assert.Equal(t, string(models.StatusApproved), f.ledgerStatus(t, "Alice 2026", "REQ-1-001"))
	assert.Equal(t, []string{"REQ-1-001"}, f.notifier.approved)
}

func TestApproveUnknownRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Approve(context.Background(), "REQ-9-999")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, f.notifier.approved)
}
