// Package notifier sends the workflow's emails: manager review requests,
// approval confirmations and periodic digests.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/visit-log-api/internal/mailer"
	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/pkg/config"
	"github.com/noah-isme/visit-log-api/pkg/signing"
)

type entryLog interface {
	ListPending(ctx context.Context) ([]models.VisitEntry, error)
	ListUnnotified(ctx context.Context) ([]models.VisitEntry, error)
	MarkNotified(ctx context.Context, requestIDs []string) error
}

type emailMetrics interface {
	RecordEmail(kind string, sent bool)
}

// Notifier composes and delivers workflow emails. With email disabled every
// send becomes a logged no-op.
type Notifier struct {
	sender   mailer.Sender
	log      entryLog
	signer   *signing.TokenSigner
	workflow config.WorkflowConfig
	baseURL  string
	metrics  emailMetrics
	logger   *zap.Logger
}

// Option customises a Notifier.
type Option func(*Notifier)

// WithMetrics counts every delivery attempt by kind and outcome.
func WithMetrics(m emailMetrics) Option {
	return func(n *Notifier) {
		n.metrics = m
	}
}

// New builds a Notifier.
func New(sender mailer.Sender, log entryLog, signer *signing.TokenSigner, workflow config.WorkflowConfig, baseURL string, logger *zap.Logger, opts ...Option) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{
		sender:   sender,
		log:      log,
		signer:   signer,
		workflow: workflow,
		baseURL:  baseURL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifySubmission emails the manager about a new pending entry, with the
// signed approval link embedded.
func (n *Notifier) NotifySubmission(ctx context.Context, entry models.VisitEntry) error {
	if !n.workflow.EmailEnabled() {
		n.logger.Info("email disabled, skipping submission notification", zap.String("request_id", entry.RequestID))
		return nil
	}
	if n.workflow.ManagerEmail == "" {
		n.logger.Warn("manager email not configured, skipping submission notification")
		return nil
	}

	token, _, err := n.signer.Generate(entry.RequestID)
	if err != nil {
		return fmt.Errorf("sign approval link: %w", err)
	}
	approvalURL := fmt.Sprintf("%s/approvals?action=approve&requestId=%s&token=%s",
		n.baseURL, url.QueryEscape(entry.RequestID), url.QueryEscape(token))

	body, err := render(submissionTmpl, map[string]any{
		"ManagerName": n.workflow.ManagerName,
		"CompanyName": n.workflow.CompanyName,
		"Entry":       entry,
		"VisitDate":   entry.VisitDate.Format("2006-01-02"),
		"ApprovalURL": approvalURL,
	})
	if err != nil {
		return err
	}

	return n.send(ctx, "submission", mailer.Message{
		To:       []string{n.workflow.ManagerEmail},
		Subject:  fmt.Sprintf("Visit approval required: %s (%s)", entry.EmployeeName, entry.RequestID),
		HTMLBody: body,
	})
}

// NotifyApproval emails HR with the employee in copy once an entry has been
// approved through the link.
func (n *Notifier) NotifyApproval(ctx context.Context, entry models.VisitEntry) error {
	if !n.workflow.EmailEnabled() {
		n.logger.Info("email disabled, skipping approval notification", zap.String("request_id", entry.RequestID))
		return nil
	}
	if n.workflow.HREmail == "" {
		n.logger.Warn("hr email not configured, skipping approval notification")
		return nil
	}

	body, err := render(approvalTmpl, map[string]any{
		"HRName":      n.workflow.HRName,
		"ManagerName": n.workflow.ManagerName,
		"CompanyName": n.workflow.CompanyName,
		"Entry":       entry,
		"VisitDate":   entry.VisitDate.Format("2006-01-02"),
	})
	if err != nil {
		return err
	}

	msg := mailer.Message{
		To:       []string{n.workflow.HREmail},
		Subject:  fmt.Sprintf("Visit approved: %s (%s)", entry.EmployeeName, entry.RequestID),
		HTMLBody: body,
	}
	if entry.EmployeeEmail != "" {
		msg.Cc = []string{entry.EmployeeEmail}
	}
	return n.send(ctx, "approval", msg)
}

type confirmationRow struct {
	RequestID string
	VisitDate string
	Status    models.Status
	Purpose   string
}

// SendBatchConfirmations digests finalised, unnotified entries per employee.
// Only entries whose employee digest actually went out get the NOTIFIED
// marker, so failed sends stay eligible for the next run. Returns the number
// of entries confirmed.
func (n *Notifier) SendBatchConfirmations(ctx context.Context) (int, error) {
	entries, err := n.log.ListUnnotified(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if !n.workflow.EmailEnabled() {
		n.logger.Info("email disabled, skipping batch confirmations", zap.Int("pending", len(entries)))
		return 0, nil
	}

	byEmployee := make(map[string][]models.VisitEntry)
	var order []string
	for _, e := range entries {
		if _, seen := byEmployee[e.EmployeeEmail]; !seen {
			order = append(order, e.EmployeeEmail)
		}
		byEmployee[e.EmployeeEmail] = append(byEmployee[e.EmployeeEmail], e)
	}

	confirmed := 0
	var confirmedIDs []string
	for _, email := range order {
		group := byEmployee[email]
		if email == "" {
			n.logger.Warn("entries without employee email skipped", zap.Int("count", len(group)))
			continue
		}

		rows := make([]confirmationRow, 0, len(group))
		ids := make([]string, 0, len(group))
		for _, e := range group {
			rows = append(rows, confirmationRow{
				RequestID: e.RequestID,
				VisitDate: e.VisitDate.Format("2006-01-02"),
				Status:    e.Status,
				Purpose:   e.Purpose,
			})
			ids = append(ids, e.RequestID)
		}

		body, err := render(confirmationTmpl, map[string]any{
			"EmployeeName": group[0].EmployeeName,
			"CompanyName":  n.workflow.CompanyName,
			"Rows":         rows,
		})
		if err != nil {
			return confirmed, err
		}

		err = n.send(ctx, "confirmation", mailer.Message{
			To:       []string{email},
			Subject:  fmt.Sprintf("Visit requests finalised (%d)", len(rows)),
			HTMLBody: body,
		})
		if err != nil {
			n.logger.Error("confirmation digest failed, entries left unmarked",
				zap.String("employee", email), zap.Error(err))
			continue
		}

		if err := n.log.MarkNotified(ctx, ids); err != nil {
			return confirmed, err
		}
		confirmed += len(ids)
		confirmedIDs = append(confirmedIDs, ids...)
	}

	if n.workflow.CCHR && n.workflow.HREmail != "" && len(confirmedIDs) > 0 {
		n.sendHRCopy(ctx, entries, confirmedIDs)
	}
	return confirmed, nil
}

func (n *Notifier) sendHRCopy(ctx context.Context, entries []models.VisitEntry, confirmedIDs []string) {
	confirmed := make(map[string]bool, len(confirmedIDs))
	for _, id := range confirmedIDs {
		confirmed[id] = true
	}
	var rows []confirmationRow
	for _, e := range entries {
		if !confirmed[e.RequestID] {
			continue
		}
		rows = append(rows, confirmationRow{
			RequestID: e.RequestID,
			VisitDate: e.VisitDate.Format("2006-01-02"),
			Status:    e.Status,
			Purpose:   e.Purpose,
		})
	}

	body, err := render(confirmationTmpl, map[string]any{
		"EmployeeName": n.workflow.HRName,
		"CompanyName":  n.workflow.CompanyName,
		"Rows":         rows,
	})
	if err != nil {
		n.logger.Error("hr digest render failed", zap.Error(err))
		return
	}
	err = n.send(ctx, "confirmation_summary", mailer.Message{
		To:       []string{n.workflow.HREmail},
		Subject:  fmt.Sprintf("Visit confirmations summary (%d)", len(rows)),
		HTMLBody: body,
	})
	if err != nil {
		// HR copy is informational only, the marker state is already settled
		n.logger.Error("hr digest failed", zap.Error(err))
	}
}

type pendingRow struct {
	RequestID    string
	EmployeeName string
	VisitDate    string
	Purpose      string
}

// SendPendingDigest emails the manager a summary of all entries still
// awaiting action. Returns the number of entries listed.
func (n *Notifier) SendPendingDigest(ctx context.Context) (int, error) {
	entries, err := n.log.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if !n.workflow.EmailEnabled() {
		n.logger.Info("email disabled, skipping pending digest", zap.Int("pending", len(entries)))
		return 0, nil
	}
	if n.workflow.ManagerEmail == "" {
		n.logger.Warn("manager email not configured, skipping pending digest")
		return 0, nil
	}

	rows := make([]pendingRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, pendingRow{
			RequestID:    e.RequestID,
			EmployeeName: e.EmployeeName,
			VisitDate:    e.VisitDate.Format("2006-01-02"),
			Purpose:      e.Purpose,
		})
	}
	body, err := render(pendingDigestTmpl, map[string]any{
		"ManagerName": n.workflow.ManagerName,
		"CompanyName": n.workflow.CompanyName,
		"Count":       len(rows),
		"Rows":        rows,
	})
	if err != nil {
		return 0, err
	}

	msg := mailer.Message{
		To:       []string{n.workflow.ManagerEmail},
		Subject:  fmt.Sprintf("Pending visit requests (%d)", len(rows)),
		HTMLBody: body,
	}
	if n.workflow.CCHR && n.workflow.HREmail != "" {
		msg.Cc = []string{n.workflow.HREmail}
	}
	if err := n.send(ctx, "pending_digest", msg); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (n *Notifier) send(ctx context.Context, kind string, msg mailer.Message) error {
	timeout := n.workflow.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := n.sender.Send(sendCtx, msg)
	if n.metrics != nil {
		n.metrics.RecordEmail(kind, err == nil)
	}
	return err
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
