package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admission-api/internal/service"
	"github.com/noah-isme/uni-admission-api/pkg/response"
)

// EnrollmentHandler exposes the read-only assignment listing.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List admitted applicants for a program
// @Tags Enrollments
// @Produce json
// @Param programCode query string true "Program code"
// @Param date query string true "Cycle date (YYYY-MM-DD or DD.MM.YYYY)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	assignments, err := h.enrollments.ListByProgram(c.Request.Context(), c.Query("programCode"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil, map[string]interface{}{
		"total": len(assignments),
	})
}

// Programs godoc
// @Summary List the program catalog
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *EnrollmentHandler) Programs(c *gin.Context) {
	programs, err := h.enrollments.ListPrograms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}
