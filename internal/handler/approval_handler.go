package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/visit-log-api/internal/syncengine"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
	"github.com/noah-isme/visit-log-api/pkg/response"
	"github.com/noah-isme/visit-log-api/pkg/signing"
)

type approvalService interface {
	Approve(ctx context.Context, requestID string) (syncengine.Report, error)
}

// ApprovalHandler serves the approval deep-link. GET renders a human page
// for the manager clicking the email link; POST is the JSON equivalent.
type ApprovalHandler struct {
	service approvalService
	signer  *signing.TokenSigner
}

// NewApprovalHandler builds a new handler.
func NewApprovalHandler(service approvalService, signer *signing.TokenSigner) *ApprovalHandler {
	return &ApprovalHandler{service: service, signer: signer}
}

var approvalPageTmpl = template.Must(template.New("approval_page").Parse(`<!DOCTYPE html>
<html><head><title>Visit Approval</title></head><body style="font-family:sans-serif">
{{if .Success}}
<h2>Request approved</h2>
<p>Visit request <b>{{.RequestID}}</b> has been approved. The employee and HR have been notified.</p>
{{else}}
<h2>Approval failed</h2>
<p>{{.Message}}</p>
{{end}}
</body></html>`))

type approvalQuery struct {
	Action    string `form:"action" json:"action"`
	RequestID string `form:"requestId" json:"requestId"`
	Token     string `form:"token" json:"token"`
}

// ApprovePage godoc
// @Summary Approve via email link
// @Tags Approvals
// @Produce html
// @Param action query string true "Action, must be approve"
// @Param requestId query string true "Request ID"
// @Param token query string true "Signed approval token"
// @Success 200 {string} string "HTML result page"
// @Router /approvals [get]
func (h *ApprovalHandler) ApprovePage(c *gin.Context) {
	var q approvalQuery
	_ = c.ShouldBindQuery(&q)

	status := http.StatusOK
	data := gin.H{"Success": true, "RequestID": q.RequestID}
	if err := h.approve(c.Request.Context(), q); err != nil {
		appErr := appErrors.FromError(err)
		status = appErr.Status
		data = gin.H{"Success": false, "Message": appErr.Message}
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = approvalPageTmpl.Execute(c.Writer, data)
}

// Approve godoc
// @Summary Approve a visit request
// @Tags Approvals
// @Accept json
// @Produce json
// @Param payload body approvalQuery true "Approval payload"
// @Success 200 {object} response.Envelope
// @Router /approvals [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	var q approvalQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}
	if err := h.approve(c.Request.Context(), q); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true, "requestId": q.RequestID})
}

func (h *ApprovalHandler) approve(ctx context.Context, q approvalQuery) error {
	if q.Action != "approve" {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported action")
	}
	if q.RequestID == "" || q.Token == "" {
		return appErrors.Clone(appErrors.ErrValidation, "requestId and token are required")
	}

	tokenID, _, err := h.signer.Parse(q.Token)
	if err != nil || tokenID != q.RequestID {
		return appErrors.ErrInvalidApprovalToken
	}

	_, err = h.service.Approve(ctx, q.RequestID)
	return err
}
