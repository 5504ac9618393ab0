// Package visitlog owns the central Log table: the authoritative record of
// every submitted visit entry.
package visitlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/internal/store"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
)

// Log wraps the central log table.
type Log struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// New builds a Log accessor.
func New(st store.Store, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{store: st, logger: logger, now: time.Now}
}

// Ensure creates the Log table with its header row when missing.
func (l *Log) Ensure(ctx context.Context) error {
	_, err := l.store.Table(ctx, models.LogTableName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrTableNotFound) {
		return err
	}

	tbl, err := l.store.CreateTable(ctx, models.LogTableName)
	if err != nil {
		return fmt.Errorf("create log table: %w", err)
	}
	headers := make([]store.Cell, len(models.LogHeaders))
	for i, h := range models.LogHeaders {
		headers[i] = h
	}
	if err := tbl.WriteRow(ctx, models.LogHeaderRow, headers); err != nil {
		return fmt.Errorf("write log headers: %w", err)
	}
	l.logger.Info("log table created")
	return nil
}

// Append adds an entry as a new row.
func (l *Log) Append(ctx context.Context, entry models.VisitEntry) error {
	if err := l.Ensure(ctx); err != nil {
		return err
	}
	tbl, err := l.store.Table(ctx, models.LogTableName)
	if err != nil {
		return err
	}
	if err := tbl.AppendRow(ctx, entryToCells(entry)); err != nil {
		return fmt.Errorf("append log row: %w", err)
	}
	return nil
}

// HasRequestID reports whether a request ID is already logged.
func (l *Log) HasRequestID(ctx context.Context, requestID string) (bool, error) {
	_, _, err := l.Find(ctx, requestID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, appErrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Find returns the entry and its 1-based row number.
func (l *Log) Find(ctx context.Context, requestID string) (models.VisitEntry, int, error) {
	rows, startRow, err := l.dataRows(ctx)
	if err != nil {
		return models.VisitEntry{}, 0, err
	}
	for i, row := range rows {
		if cellString(row[models.LogColRequestID-1]) == requestID {
			return cellsToEntry(row), startRow + i, nil
		}
	}
	notFound := appErrors.ErrNotFound
	return models.VisitEntry{}, 0, appErrors.Wrap(notFound, notFound.Code, notFound.Status, fmt.Sprintf("request %s not found", requestID))
}

// UpdateStatus sets the status and action date on the entry's row and
// appends an audit note to the Comments column.
func (l *Log) UpdateStatus(ctx context.Context, requestID string, status models.Status, note string) error {
	entry, row, err := l.Find(ctx, requestID)
	if err != nil {
		return err
	}
	tbl, err := l.store.Table(ctx, models.LogTableName)
	if err != nil {
		return err
	}
	if err := tbl.WriteCell(ctx, row, models.LogColStatus, string(status)); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := tbl.WriteCell(ctx, row, models.LogColActionDate, l.now()); err != nil {
		return fmt.Errorf("update action date: %w", err)
	}
	if note != "" {
		comments := appendNote(entry.Comments, note)
		if err := tbl.WriteCell(ctx, row, models.LogColComments, comments); err != nil {
			return fmt.Errorf("update comments: %w", err)
		}
	}
	return nil
}

// ListPending returns every entry still awaiting action.
func (l *Log) ListPending(ctx context.Context) ([]models.VisitEntry, error) {
	return l.list(ctx, func(e models.VisitEntry) bool {
		return e.Status == models.StatusPending
	})
}

// ListUnnotified returns terminal entries whose confirmation has not been
// sent yet.
func (l *Log) ListUnnotified(ctx context.Context) ([]models.VisitEntry, error) {
	return l.list(ctx, func(e models.VisitEntry) bool {
		return e.Status.Terminal() && !strings.Contains(e.Comments, models.NotifiedMarker)
	})
}

// MarkNotified stamps the NOTIFIED marker into the Comments of each entry.
func (l *Log) MarkNotified(ctx context.Context, requestIDs []string) error {
	tbl, err := l.store.Table(ctx, models.LogTableName)
	if err != nil {
		return err
	}
	marker := fmt.Sprintf("%s %s", models.NotifiedMarker, l.now().Format("2006-01-02 15:04:05"))
	for _, id := range requestIDs {
		entry, row, err := l.Find(ctx, id)
		if err != nil {
			l.logger.Warn("mark notified skipped", zap.String("request_id", id), zap.Error(err))
			continue
		}
		if strings.Contains(entry.Comments, models.NotifiedMarker) {
			continue
		}
		if err := tbl.WriteCell(ctx, row, models.LogColComments, appendNote(entry.Comments, marker)); err != nil {
			return fmt.Errorf("mark notified %s: %w", id, err)
		}
	}
	return nil
}

func (l *Log) list(ctx context.Context, keep func(models.VisitEntry) bool) ([]models.VisitEntry, error) {
	rows, _, err := l.dataRows(ctx)
	if err != nil {
		if errors.Is(err, store.ErrTableNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var out []models.VisitEntry
	for _, row := range rows {
		entry := cellsToEntry(row)
		if entry.RequestID == "" {
			continue
		}
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (l *Log) dataRows(ctx context.Context) ([][]store.Cell, int, error) {
	tbl, err := l.store.Table(ctx, models.LogTableName)
	if err != nil {
		return nil, 0, err
	}
	last, err := tbl.LastUsedRow(ctx)
	if err != nil {
		return nil, 0, err
	}
	if last < models.LogDataStartRow {
		return nil, models.LogDataStartRow, nil
	}
	rows, err := tbl.ReadRange(ctx, models.LogDataStartRow, 1, last-models.LogDataStartRow+1, models.LogColumnCount)
	if err != nil {
		return nil, 0, fmt.Errorf("read log rows: %w", err)
	}
	return rows, models.LogDataStartRow, nil
}

func appendNote(comments, note string) string {
	if comments == "" {
		return note
	}
	return comments + "; " + note
}

func entryToCells(e models.VisitEntry) []store.Cell {
	cells := make([]store.Cell, models.LogColumnCount)
	cells[models.LogColRequestID-1] = e.RequestID
	cells[models.LogColTimestamp-1] = e.Timestamp
	cells[models.LogColEmployeeName-1] = e.EmployeeName
	cells[models.LogColEmployeeEmail-1] = e.EmployeeEmail
	cells[models.LogColVisitDate-1] = e.VisitDate
	cells[models.LogColStartTime-1] = e.StartTime
	cells[models.LogColEndTime-1] = e.EndTime
	cells[models.LogColPurpose-1] = e.Purpose
	cells[models.LogColReimbursement-1] = e.Reimbursement
	cells[models.LogColDescription-1] = e.Description
	cells[models.LogColCompanies-1] = e.Companies
	cells[models.LogColStatus-1] = string(e.Status)
	if !e.ActionDate.IsZero() {
		cells[models.LogColActionDate-1] = e.ActionDate
	}
	if e.Comments != "" {
		cells[models.LogColComments-1] = e.Comments
	}
	return cells
}

func cellsToEntry(row []store.Cell) models.VisitEntry {
	return models.VisitEntry{
		RequestID:     cellString(row[models.LogColRequestID-1]),
		Timestamp:     cellTime(row[models.LogColTimestamp-1]),
		EmployeeName:  cellString(row[models.LogColEmployeeName-1]),
		EmployeeEmail: cellString(row[models.LogColEmployeeEmail-1]),
		VisitDate:     cellTime(row[models.LogColVisitDate-1]),
		StartTime:     cellString(row[models.LogColStartTime-1]),
		EndTime:       cellString(row[models.LogColEndTime-1]),
		Purpose:       cellString(row[models.LogColPurpose-1]),
		Reimbursement: cellString(row[models.LogColReimbursement-1]),
		Description:   cellString(row[models.LogColDescription-1]),
		Companies:     cellString(row[models.LogColCompanies-1]),
		Status:        models.Status(cellString(row[models.LogColStatus-1])),
		ActionDate:    cellTime(row[models.LogColActionDate-1]),
		Comments:      cellString(row[models.LogColComments-1]),
	}
}

func cellString(v store.Cell) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func cellTime(v store.Cell) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "02/01/2006"} {
			if parsed, err := time.Parse(layout, val); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
