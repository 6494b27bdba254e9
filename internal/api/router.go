package api

import (
	"route-planner-service/internal/api/handlers"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Planner     *services.Planner
	Routes      ports.RouteStore
	Assignments *services.AssignmentCoordinator
	Catalog     *services.Catalog
}

// NewRouter wires HTTP handlers with their dependencies.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware(), prometheusMiddleware())

	planHandler := &handlers.PlanHandler{Planner: d.Planner}
	routeHandler := &handlers.RouteHandler{Routes: d.Routes, Assignments: d.Assignments}
	assignmentHandler := &handlers.AssignmentHandler{Assignments: d.Assignments}
	catalogHandler := &handlers.CatalogHandler{Catalog: d.Catalog}

	r.GET("/health", handlers.Health)
	r.GET("/metrics", metricsHandler())

	r.POST("/plans", planHandler.Plan)
	r.GET("/routes/:id", routeHandler.Get)
	r.POST("/routes/:id/assign", routeHandler.Assign)
	r.POST("/assignments/:id/accept", assignmentHandler.Accept)
	r.POST("/assignments/:id/reject", assignmentHandler.Reject)
	r.POST("/catalog/reload", catalogHandler.Reload)

	return r
}
