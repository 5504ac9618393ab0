package visitlog

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

func sampleEntry(id string, status models.Status) models.VisitEntry {
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
		Status:        status,
	}
}

func TestEnsureCreatesHeadersOnce(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	l := New(st, nil)

	require.NoError(t, l.Ensure(ctx))
	require.NoError(t, l.Ensure(ctx))

	tbl, err := st.Table(ctx, models.LogTableName)
	require.NoError(t, err)
	grid, err := tbl.ReadRange(ctx, models.LogHeaderRow, 1, 1, models.LogColumnCount)
	require.NoError(t, err)
	assert.Equal(t, "Request_ID", grid[0][0])
	assert.Equal(t, "Comments", grid[0][models.LogColumnCount-1])

	last, err := tbl.LastUsedRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LogHeaderRow, last)
}

func TestAppendAndFind(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore(), nil)

	require.NoError(t, l.Append(ctx, sampleEntry("REQ-1-001", models.StatusPending)))
	require.NoError(t, l.Append(ctx, sampleEntry("REQ-1-002", models.StatusPending)))

	entry, row, err := l.Find(ctx, "REQ-1-002")
	require.NoError(t, err)
	assert.Equal(t, models.LogDataStartRow+1, row)
	assert.Equal(t, "Alice", entry.EmployeeName)
	assert.Equal(t, "09:30", entry.StartTime)
	assert.Equal(t, models.StatusPending, entry.Status)

	_, _, err = l.Find(ctx, "REQ-9-999")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	taken, err := l.HasRequestID(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = l.HasRequestID(ctx, "REQ-9-999")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdateStatusWritesActionDateAndNote(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore(), nil)
	when := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return when }

	require.NoError(t, l.Append(ctx, sampleEntry("REQ-1-001", models.StatusPending)))
	require.NoError(t, l.UpdateStatus(ctx, "REQ-1-001", models.StatusApproved, "approved via link"))

	entry, _, err := l.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, entry.Status)
	assert.Equal(t, when, entry.ActionDate)
	assert.Equal(t, "approved via link", entry.Comments)

	require.NoError(t, l.UpdateStatus(ctx, "REQ-1-001", models.StatusRejected, "corrected"))
	entry, _, err = l.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, "approved via link; corrected", entry.Comments)
}

func TestListPendingAndUnnotified(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore(), nil)

	require.NoError(t, l.Append(ctx, sampleEntry("REQ-1-001", models.StatusPending)))
	approved := sampleEntry("REQ-1-002", models.StatusApproved)
	require.NoError(t, l.Append(ctx, approved))
	notified := sampleEntry("REQ-1-003", models.StatusRejected)
	notified.Comments = "NOTIFIED 2026-03-15 10:00:00"
	require.NoError(t, l.Append(ctx, notified))

	pending, err := l.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "REQ-1-001", pending[0].RequestID)

	unnotified, err := l.ListUnnotified(ctx)
	require.NoError(t, err)
	require.Len(t, unnotified, 1)
	assert.Equal(t, "REQ-1-002", unnotified[0].RequestID)
}

func TestMarkNotifiedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore(), nil)
	l.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, l.Append(ctx, sampleEntry("REQ-1-001", models.StatusApproved)))
	require.NoError(t, l.MarkNotified(ctx, []string{"REQ-1-001", "REQ-9-999"}))

	entry, _, err := l.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, "NOTIFIED 2026-03-15 10:00:00", entry.Comments)

	// second pass must not duplicate the marker
	require.NoError(t, l.MarkNotified(ctx, []string{"REQ-1-001"}))
	entry, _, err = l.Find(ctx, "REQ-1-001")
	require.NoError(t, err)
	assert.Equal(t, "NOTIFIED 2026-03-15 10:00:00", entry.Comments)

	unnotified, err := l.ListUnnotified(ctx)
	require.NoError(t, err)
	assert.Empty(t, unnotified)
}

func TestListOnMissingTableIsEmpty(t *testing.T) {
	l := New(store.NewMemoryStore(), nil)
	pending, err := l.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}
