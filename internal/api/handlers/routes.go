package handlers

import (
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	Routes      ports.RouteStore
	Assignments *services.AssignmentCoordinator
}

func (h *RouteHandler) Get(c *gin.Context) {
	id := c.Param("id")

	detail, err := services.GetRoute(c.Request.Context(), h.Routes, id)
	if err != nil {
		writeServiceError(c, "get route", err)
		return
	}
	if detail == nil {
		writeError(c, http.StatusNotFound, "route not found")
		return
	}

	c.JSON(http.StatusOK, dto.NewRouteDetailResponse(*detail))
}

// Assign offers the route to a driver.
func (h *RouteHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "driver_id is required")
		return
	}

	a, err := h.Assignments.AssignRoute(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		writeServiceError(c, "assign route", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAssignmentResponse(a))
}
