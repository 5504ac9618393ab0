package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/visit-log-api/internal/intake"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
	"github.com/noah-isme/visit-log-api/pkg/response"
)

type intakeService interface {
	Submit(ctx context.Context, sub intake.Submission) (intake.Result, error)
}

type submissionMetrics interface {
	RecordSubmission(status string)
}

// SubmissionHandler receives intake form submissions.
type SubmissionHandler struct {
	service intakeService
	metrics submissionMetrics
}

// NewSubmissionHandler builds a new handler. The metrics recorder may be nil.
func NewSubmissionHandler(service intakeService, metrics submissionMetrics) *SubmissionHandler {
	return &SubmissionHandler{service: service, metrics: metrics}
}

type submissionRequest struct {
	intake.Submission
	// Values carries the positional answer row when the caller forwards the
	// raw form payload instead of the structured fields.
	Values []string `json:"values"`
}

// Submit godoc
// @Summary Submit a visit entry
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body submissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	sub := req.Submission
	if len(req.Values) > 0 {
		sub = intake.FromValues(req.Values)
	}

	result, err := h.service.Submit(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSubmission(string(result.Status))
	}
	response.Created(c, result)
}
