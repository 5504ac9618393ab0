package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/visit-log-api/pkg/errors"
	"github.com/noah-isme/visit-log-api/pkg/export"
	"github.com/noah-isme/visit-log-api/pkg/response"
)

type ledgerService interface {
	Export(ctx context.Context, employeeName string, year int) (export.Dataset, error)
}

// LedgerHandler exposes ledger exports.
type LedgerHandler struct {
	service ledgerService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewLedgerHandler builds a new handler.
func NewLedgerHandler(service ledgerService) *LedgerHandler {
	return &LedgerHandler{
		service: service,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// Export godoc
// @Summary Export an employee's yearly ledger
// @Tags Ledgers
// @Produce octet-stream
// @Param employee path string true "Employee name"
// @Param year path int true "Ledger year"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /ledgers/{employee}/{year}/export [get]
func (h *LedgerHandler) Export(c *gin.Context) {
	employee := c.Param("employee")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be numeric"))
		return
	}

	dataset, err := h.service.Export(c.Request.Context(), employee, year)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%d", employee, year)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, fmt.Sprintf("Visit ledger %s %d", employee, year))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".pdf"))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
