package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/visit-log-api/internal/syncengine"
	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
	"github.com/noah-isme/visit-log-api/pkg/response"
)

type editService interface {
	OnStatusEdit(ctx context.Context, change syncengine.ChangeEvent) (*syncengine.Report, error)
}

// EditHandler receives cell edit events from the workspace host.
type EditHandler struct {
	service editService
}

// NewEditHandler builds a new handler.
func NewEditHandler(service editService) *EditHandler {
	return &EditHandler{service: service}
}

// HandleEdit godoc
// @Summary Report a cell edit
// @Tags Edits
// @Accept json
// @Produce json
// @Param payload body syncengine.ChangeEvent true "Change descriptor"
// @Success 200 {object} response.Envelope
// @Router /edits [post]
func (h *EditHandler) HandleEdit(c *gin.Context) {
	var change syncengine.ChangeEvent
	if err := c.ShouldBindJSON(&change); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change payload"))
		return
	}

	report, err := h.service.OnStatusEdit(c.Request.Context(), change)
	if err != nil {
		// the edit was accepted; partial propagation details ride along
		if report != nil {
			response.JSON(c, http.StatusOK, gin.H{"ignored": false, "report": report, "partial": true})
			return
		}
		response.Error(c, err)
		return
	}
	if report == nil {
		response.JSON(c, http.StatusOK, gin.H{"ignored": true})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ignored": false, "report": report})
}
