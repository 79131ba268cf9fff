package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admission-api/internal/service"
	"github.com/noah-isme/uni-admission-api/pkg/response"
)

// ReportHandler streams rendered admission reports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Enrollment godoc
// @Summary Download the per-program enrollment report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Cycle date (YYYY-MM-DD or DD.MM.YYYY)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /reports/enrollment [get]
func (h *ReportHandler) Enrollment(c *gin.Context) {
	file, err := h.reports.GenerateEnrollmentReport(c.Request.Context(), c.Query("date"), reportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamReport(c, file)
}

// PassingScores godoc
// @Summary Download the passing-score table
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Cycle date (YYYY-MM-DD or DD.MM.YYYY)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /reports/passing-scores [get]
func (h *ReportHandler) PassingScores(c *gin.Context) {
	file, err := h.reports.GeneratePassingScoreReport(c.Request.Context(), c.Query("date"), reportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamReport(c, file)
}

func reportFormat(c *gin.Context) service.ReportFormat {
	return service.ReportFormat(c.DefaultQuery("format", "csv"))
}

func streamReport(c *gin.Context, file *service.ReportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
