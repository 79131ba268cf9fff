package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admission-api/internal/service"
	"github.com/noah-isme/uni-admission-api/pkg/response"
)

// AdminHandler exposes the explicit reset endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ClearEnrollment godoc
// @Summary Clear simulation output
// @Description Without a date every assignment is removed. With a date the assignments and passing scores of that date are removed so it simulates afresh.
// @Tags Admin
// @Produce json
// @Param date query string false "Cycle date (YYYY-MM-DD or DD.MM.YYYY)"
// @Success 200 {object} response.Envelope
// @Router /admin/clear-enrollment [post]
func (h *AdminHandler) ClearEnrollment(c *gin.Context) {
	if err := h.admin.ClearEnrollment(c.Request.Context(), c.Query("date")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "enrollment data cleared"}, nil)
}

// ClearAll godoc
// @Summary Clear every ledger and all simulation output
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/clear [post]
func (h *AdminHandler) ClearAll(c *gin.Context) {
	if err := h.admin.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "database cleared"}, nil)
}
