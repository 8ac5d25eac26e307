package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterAllianceRoutes registers alliance lifecycle routes
func RegisterAllianceRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAllianceHandler(c)

	alliances := e.Group("/api/v1/alliances")
	{
		alliances.POST("", h.Create)                               // POST /api/v1/alliances
		alliances.GET("", h.List)                                  // GET /api/v1/alliances
		alliances.GET("/:alliance_id", h.Get)                      // GET /api/v1/alliances/:alliance_id
		alliances.PATCH("/:alliance_id/settings", h.PatchSettings) // PATCH /api/v1/alliances/:alliance_id/settings
		alliances.DELETE("/:alliance_id", h.Delete)                // DELETE /api/v1/alliances/:alliance_id
	}
}
