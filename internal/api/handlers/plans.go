package handlers

import (
	"errors"
	"io"
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/services"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	Planner *services.Planner
}

// Plan runs route planning over the current drop backlog.
// With dry_run the routes are computed but not stored.
func (h *PlanHandler) Plan(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	run := h.Planner.PlanRoutes
	if req.DryRun {
		run = h.Planner.Preview
	}

	result, err := run(c.Request.Context())
	if err != nil {
		writeServiceError(c, "plan routes", err)
		return
	}

	res := dto.PlanResponse{
		Routes:            make([]dto.RouteResponse, 0, len(result.Routes)),
		UnassignedDropIDs: result.UnassignedDropIDs,
		OptimizationScore: result.OptimizationScore,
		TotalDrops:        result.TotalDrops,
		Persisted:         !req.DryRun,
	}
	if res.UnassignedDropIDs == nil {
		res.UnassignedDropIDs = []string{}
	}
	for _, r := range result.Routes {
		res.Routes = append(res.Routes, dto.NewRouteResponse(r))
	}

	c.JSON(http.StatusOK, res)
}
