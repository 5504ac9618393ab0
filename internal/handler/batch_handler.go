package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/visit-log-api/pkg/response"
)

type batchService interface {
	SendBatchConfirmations(ctx context.Context) (int, error)
	SendPendingDigest(ctx context.Context) (int, error)
}

// BatchHandler triggers the notification batch passes on demand.
type BatchHandler struct {
	service batchService
}

// NewBatchHandler builds a new handler.
func NewBatchHandler(service batchService) *BatchHandler {
	return &BatchHandler{service: service}
}

// RunConfirmations godoc
// @Summary Send pending confirmation digests
// @Tags Batch
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /confirmations/run [post]
func (h *BatchHandler) RunConfirmations(c *gin.Context) {
	count, err := h.service.SendBatchConfirmations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"confirmed": count})
}

// RunPendingDigest godoc
// @Summary Send the manager's pending digest
// @Tags Batch
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /digests/pending/run [post]
func (h *BatchHandler) RunPendingDigest(c *gin.Context) {
	count, err := h.service.SendPendingDigest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"pending": count})
}
