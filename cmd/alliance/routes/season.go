package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterSeasonRoutes registers season lifecycle routes
func RegisterSeasonRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewSeasonHandler(c)

	seasons := e.Group("/api/v1/alliances/:alliance_id/seasons")
	{
		seasons.POST("", h.Create)                  // POST /api/v1/alliances/:alliance_id/seasons
		seasons.GET("", h.List)                     // GET /api/v1/alliances/:alliance_id/seasons
		seasons.GET("/active", h.GetActive)         // GET /api/v1/alliances/:alliance_id/seasons/active
		seasons.GET("/:season_id", h.Get)           // GET /api/v1/alliances/:alliance_id/seasons/:season_id
		seasons.POST("/:season_id/close", h.Close)  // POST /api/v1/alliances/:alliance_id/seasons/:season_id/close
	}
}
