package handlers

import (
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/services"
	"time"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Catalog *services.Catalog
}

// Reload re-reads the catalog source. A failed reload keeps the current snapshot.
func (h *CatalogHandler) Reload(c *gin.Context) {
	if err := h.Catalog.Reload(c.Request.Context()); err != nil {
		writeServiceError(c, "reload catalog", err)
		return
	}

	c.JSON(http.StatusOK, dto.CatalogReloadResponse{
		Entries:  h.Catalog.Size(),
		LoadedAt: h.Catalog.LoadedAt().UTC().Format(time.RFC3339),
	})
}
