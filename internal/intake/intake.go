// Package intake turns raw form submissions into logged, mirrored and
// notified visit entries.
package intake

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/visit-log-api/internal/directory"
	"github.com/noah-isme/visit-log-api/internal/ledger"
	"github.com/noah-isme/visit-log-api/internal/models"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
)

// Submission is the structured intake payload. FromValues maps the
// positional form row onto it.
type Submission struct {
	EmployeeEmail string `json:"employee_email" validate:"required,email"`
	VisitDate     string `json:"visit_date" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
	EndTime       string `json:"end_time" validate:"required"`
	Purpose       string `json:"purpose" validate:"required"`
	Reimbursement string `json:"reimbursement"`
	Description   string `json:"description"`
	Companies     string `json:"companies" validate:"required"`
}

// FromValues maps the positional answer row of the intake form. The layout
// is: timestamp, email, reserved, visit date, start, end, purpose,
// reimbursement, description, companies.
func FromValues(values []string) Submission {
	at := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
	return Submission{
		EmployeeEmail: at(1),
		VisitDate:     at(3),
		StartTime:     at(4),
		EndTime:       at(5),
		Purpose:       at(6),
		Reimbursement: at(7),
		Description:   at(8),
		Companies:     at(9),
	}
}

// Result reports what a submission produced.
type Result struct {
	RequestID    string        `json:"request_id"`
	Status       models.Status `json:"status"`
	EmployeeName string        `json:"employee_name,omitempty"`
}

type idGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type entryLog interface {
	Append(ctx context.Context, entry models.VisitEntry) error
}

type ledgerMirror interface {
	Mirror(ctx context.Context, entry models.VisitEntry, emp models.Employee) error
}

type submissionNotifier interface {
	NotifySubmission(ctx context.Context, entry models.VisitEntry) error
}

// Service handles intake submissions.
type Service struct {
	directory *directory.Directory
	reqIDs    idGenerator
	log       entryLog
	ledgers   ledgerMirror
	notifier  submissionNotifier
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires an intake Service.
func NewService(dir *directory.Directory, reqIDs idGenerator, log entryLog, ledgers ledgerMirror, notifier submissionNotifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		directory: dir,
		reqIDs:    reqIDs,
		log:       log,
		ledgers:   ledgers,
		notifier:  notifier,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates and records one submission. Submitters missing from the
// roster are logged with the Invalid Employee status and go no further: no
// ledger mirror, no manager notification.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	if err := s.validate.Struct(sub); err != nil {
		return Result{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission")
	}

	requestID, err := s.reqIDs.Generate(ctx)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	entry := models.VisitEntry{
		RequestID:     requestID,
		Timestamp:     now,
		EmployeeEmail: sub.EmployeeEmail,
		VisitDate:     ledger.ParseDate(sub.VisitDate, now),
		StartTime:     ledger.FormatClock(sub.StartTime),
		EndTime:       ledger.FormatClock(sub.EndTime),
		Purpose:       sub.Purpose,
		Reimbursement: sub.Reimbursement,
		Description:   sub.Description,
		Companies:     sub.Companies,
	}

	emp, found := s.directory.ResolveByEmail(ctx, sub.EmployeeEmail)
	if !found {
		entry.Status = models.StatusInvalidEmployee
		entry.Comments = "submitter not on roster"
		if err := s.log.Append(ctx, entry); err != nil {
			return Result{}, err
		}
		s.logger.Warn("submission from unknown employee",
			zap.String("request_id", requestID), zap.String("email", sub.EmployeeEmail))
		return Result{RequestID: requestID, Status: models.StatusInvalidEmployee}, nil
	}

	entry.EmployeeName = emp.Name
	entry.Status = models.StatusPending
	if err := s.log.Append(ctx, entry); err != nil {
		return Result{}, err
	}
	if err := s.ledgers.Mirror(ctx, entry, emp); err != nil {
		// the log row is authoritative, a failed mirror is not fatal
		s.logger.Error("ledger mirror failed", zap.String("request_id", requestID), zap.Error(err))
	}
	if err := s.notifier.NotifySubmission(ctx, entry); err != nil {
		s.logger.Error("submission notification failed", zap.String("request_id", requestID), zap.Error(err))
	}

	return Result{RequestID: requestID, Status: models.StatusPending, EmployeeName: emp.Name}, nil
}
