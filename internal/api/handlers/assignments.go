package handlers

import (
	"context"
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/services"

	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	Assignments *services.AssignmentCoordinator
}

func (h *AssignmentHandler) Accept(c *gin.Context) {
	h.respond(c, "accept assignment", h.Assignments.AcceptAssignment)
}

func (h *AssignmentHandler) Reject(c *gin.Context) {
	h.respond(c, "reject assignment", h.Assignments.RejectAssignment)
}

func (h *AssignmentHandler) respond(
	c *gin.Context,
	op string,
	fn func(ctx context.Context, assignmentID, driverID string) (domain.DriverAssignment, error),
) {
	var req dto.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "driver_id is required")
		return
	}

	a, err := fn(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		writeServiceError(c, op, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAssignmentResponse(a))
}
