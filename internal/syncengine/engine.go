// Package syncengine propagates status changes between the central log and
// every ledger copy of an entry.
package syncengine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/visit-log-api/internal/ledger"
	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/internal/store"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
)

// ChangeEvent describes a single cell edit reported by the edit webhook.
type ChangeEvent struct {
	Table    string `json:"sheet" binding:"required"`
	Row      int    `json:"row" binding:"required"`
	Col      int    `json:"col" binding:"required"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// TargetResult records the outcome of one propagation target.
type TargetResult struct {
	Target  string `json:"target"`
	Updated bool   `json:"updated"`
	Error   string `json:"error,omitempty"`
}

// Report summarises a propagation pass. Failures never roll back the
// targets that already succeeded.
type Report struct {
	RequestID string         `json:"request_id"`
	Status    models.Status  `json:"status"`
	Results   []TargetResult `json:"results"`
	Failed    int            `json:"failed"`
}

type logAccessor interface {
	UpdateStatus(ctx context.Context, requestID string, status models.Status, note string) error
	Find(ctx context.Context, requestID string) (models.VisitEntry, int, error)
}

type approvalNotifier interface {
	NotifyApproval(ctx context.Context, entry models.VisitEntry) error
}

type syncMetrics interface {
	RecordSyncTargets(updated, failed int)
}

// Engine validates edit events and fans status changes out.
type Engine struct {
	store    store.Store
	log      logAccessor
	ledgers  *ledger.Manager
	notifier approvalNotifier
	metrics  syncMetrics
	logger   *zap.Logger
}

// New builds an Engine. The notifier and metrics may be nil; Approve then
// skips the confirmation email and propagation goes uncounted.
func New(st store.Store, log logAccessor, ledgers *ledger.Manager, notifier approvalNotifier, metrics syncMetrics, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, log: log, ledgers: ledgers, notifier: notifier, metrics: metrics, logger: logger}
}

// OnStatusEdit handles one edit event. Events that are not a genuine status
// change on a ledger data row are ignored without error; this is the normal
// outcome for most edits. A nil report means the event was ignored.
func (e *Engine) OnStatusEdit(ctx context.Context, change ChangeEvent) (*Report, error) {
	if change.Col != models.LedgerColStatus || change.Row < models.LedgerDataStartRow {
		return nil, nil
	}
	if _, _, ok := ledger.IsLedgerName(change.Table); !ok {
		return nil, nil
	}
	status := models.Status(strings.TrimSpace(change.NewValue))
	if !reviewableStatus(status) || change.NewValue == change.OldValue {
		return nil, nil
	}

	tbl, err := e.store.Table(ctx, change.Table)
	if err != nil {
		e.logger.Warn("edit on unknown table", zap.String("table", change.Table), zap.Error(err))
		return nil, nil
	}
	grid, err := tbl.ReadRange(ctx, change.Row, models.LedgerColRequestID, 1, 1)
	if err != nil {
		return nil, err
	}
	requestID, _ := grid[0][0].(string)
	if !strings.HasPrefix(requestID, "REQ-") {
		return nil, nil
	}

	note := fmt.Sprintf("status %s synced from %s", status, change.Table)
	report, err := e.Propagate(ctx, requestID, status, change.Table, note)
	return &report, err
}

// reviewableStatus limits manual edits to the reviewer decisions. Invalid
// Employee is assigned by intake only and never propagates from a cell edit.
func reviewableStatus(s models.Status) bool {
	return s == models.StatusPending || s.Terminal()
}

// Propagate writes the status to the central log and every ledger copy
// except the source. Best effort: each failed target is recorded and the
// rest proceed. Returns ErrPartialSync when anything failed.
func (e *Engine) Propagate(ctx context.Context, requestID string, status models.Status, sourceTable, note string) (Report, error) {
	report := Report{RequestID: requestID, Status: status}

	logResult := TargetResult{Target: models.LogTableName, Updated: true}
	if err := e.log.UpdateStatus(ctx, requestID, status, note); err != nil {
		logResult.Updated = false
		logResult.Error = err.Error()
		report.Failed++
		e.logger.Error("log status update failed", zap.String("request_id", requestID), zap.Error(err))
	}
	report.Results = append(report.Results, logResult)

	refs, err := e.ledgers.Ledgers(ctx)
	if err != nil {
		return report, err
	}
	for _, ref := range refs {
		if ref.TableName == sourceTable {
			continue
		}
		updated, err := e.ledgers.UpdateStatus(ctx, ref.TableName, requestID, status)
		result := TargetResult{Target: ref.TableName, Updated: updated}
		if err != nil {
			result.Error = err.Error()
			report.Failed++
			e.logger.Error("ledger status update failed",
				zap.String("request_id", requestID), zap.String("table", ref.TableName), zap.Error(err))
		}
		report.Results = append(report.Results, result)
	}

	if e.metrics != nil {
		updated := 0
		for _, r := range report.Results {
			if r.Updated {
				updated++
			}
		}
		e.metrics.RecordSyncTargets(updated, report.Failed)
	}

	if report.Failed > 0 {
		return report, appErrors.ErrPartialSync
	}
	return report, nil
}

// Approve marks the entry approved everywhere and sends the confirmation
// notification. This is the path behind the signed approval link.
func (e *Engine) Approve(ctx context.Context, requestID string) (Report, error) {
	entry, _, err := e.log.Find(ctx, requestID)
	if err != nil {
		return Report{}, err
	}

	report, err := e.Propagate(ctx, requestID, models.StatusApproved, "", "approved via link")
	if err != nil {
		return report, err
	}

	entry.Status = models.StatusApproved
	if e.notifier != nil {
		if err := e.notifier.NotifyApproval(ctx, entry); err != nil {
			e.logger.Error("approval notification failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}
	return report, nil
}
