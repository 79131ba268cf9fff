package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admission-api/internal/models"
	"github.com/noah-isme/uni-admission-api/internal/service"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
	"github.com/noah-isme/uni-admission-api/pkg/response"
)

// ApplicantHandler serves the applicant and priority read models.
type ApplicantHandler struct {
	applicants *service.ApplicantService
}

// NewApplicantHandler constructs ApplicantHandler.
func NewApplicantHandler(applicants *service.ApplicantService) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants}
}

// ListPriorities godoc
// @Summary List priority entries joined with applicant scores
// @Tags Applicants
// @Produce json
// @Param programCode query string false "Filter by program"
// @Param date query string false "Filter by cycle date"
// @Param applicantId query int false "Filter by applicant"
// @Param consent query bool false "Filter by consent flag"
// @Success 200 {object} response.Envelope
// @Router /priorities [get]
func (h *ApplicantHandler) ListPriorities(c *gin.Context) {
	var filter models.PriorityListFilter
	filter.ProgramCode = c.Query("programCode")
	filter.CycleDate = c.Query("date")
	if raw := c.Query("applicantId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "applicantId must be an integer"))
			return
		}
		filter.ApplicantID = id
	}
	if raw := c.Query("consent"); raw != "" {
		consent, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "consent must be a boolean"))
			return
		}
		filter.Consent = &consent
	}

	rows, err := h.applicants.ListPriorities(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ListApplicants godoc
// @Summary List distinct scored applicants holding priorities
// @Tags Applicants
// @Produce json
// @Param applicantId query int false "Filter by applicant"
// @Param minScore query int false "Minimum total score"
// @Param date query string false "Filter by cycle date"
// @Success 200 {object} response.Envelope
// @Router /applicants [get]
func (h *ApplicantHandler) ListApplicants(c *gin.Context) {
	var filter models.ApplicantFilter
	filter.CycleDate = c.Query("date")
	if raw := c.Query("applicantId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "applicantId must be an integer"))
			return
		}
		filter.ApplicantID = id
	}
	if raw := c.Query("minScore"); raw != "" {
		minScore, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "minScore must be an integer"))
			return
		}
		filter.MinScore = minScore
	}

	summaries, err := h.applicants.ListApplicants(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// GetApplicant godoc
// @Summary Applicant detail with ranked priorities
// @Tags Applicants
// @Produce json
// @Param id path int true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applicants/{id} [get]
func (h *ApplicantHandler) GetApplicant(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "applicant id must be an integer"))
		return
	}
	detail, err := h.applicants.GetApplicantDetail(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
