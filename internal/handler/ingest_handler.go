package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admission-api/internal/service"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
	"github.com/noah-isme/uni-admission-api/pkg/response"
)

// IngestHandler accepts pre-validated applicant batches.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler constructs IngestHandler.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// ReplaceBatch godoc
// @Summary Replace one program's applicant batch for a cycle date
// @Description The batch fully supersedes any earlier import for the same program and date. Malformed rows are skipped and counted.
// @Tags Ingest
// @Accept json
// @Produce json
// @Param payload body service.IngestBatchRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /ingest/batches [post]
func (h *IngestHandler) ReplaceBatch(c *gin.Context) {
	var req service.IngestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.ingest.ReplaceBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
