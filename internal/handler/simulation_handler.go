package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admission-api/internal/service"
	"github.com/noah-isme/uni-admission-api/pkg/response"
)

// SimulationHandler exposes the passing-score endpoint backed by the engine.
type SimulationHandler struct {
	simulations *service.SimulationService
}

// NewSimulationHandler constructs SimulationHandler.
func NewSimulationHandler(simulations *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulations: simulations}
}

// PassingScores godoc
// @Summary Passing scores for a cycle date
// @Description Returns the passing-score table, running the admission simulation first if the date has no results yet.
// @Tags Simulation
// @Produce json
// @Param date query string true "Cycle date (YYYY-MM-DD or DD.MM.YYYY)"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /passing-scores [get]
func (h *SimulationHandler) PassingScores(c *gin.Context) {
	rows, fromCache, summary, err := h.simulations.GetOrCompute(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{
		"from_cache":     fromCache,
		"total_programs": len(rows),
	}
	if summary != nil {
		meta["assigned"] = summary.Assigned
		meta["unassigned"] = summary.Unassigned
	}
	response.JSON(c, http.StatusOK, rows, nil, meta)
}
