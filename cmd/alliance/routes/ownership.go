package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterOwnershipRoutes registers mine ownership ledger routes
func RegisterOwnershipRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewOwnershipHandler(c)

	owns := e.Group("/api/v1/alliances/:alliance_id/seasons/:season_id/ownerships")
	{
		owns.POST("", h.Grant)                            // POST /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships
		owns.GET("", h.List)                              // GET /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships
		owns.DELETE("/:ownership_id", h.Revoke)           // DELETE /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships/:ownership_id
		owns.POST("/:ownership_id/transfer", h.Transfer)  // POST /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships/:ownership_id/transfer
	}
}
