package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterMemberRoutes registers roster management routes
func RegisterMemberRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewMemberHandler(c)

	members := e.Group("/api/v1/alliances/:alliance_id/members")
	{
		members.POST("", h.Create)              // POST /api/v1/alliances/:alliance_id/members
		members.GET("", h.List)                 // GET /api/v1/alliances/:alliance_id/members
		members.GET("/:member_id", h.Get)       // GET /api/v1/alliances/:alliance_id/members/:member_id
		members.PUT("/:member_id", h.Update)    // PUT /api/v1/alliances/:alliance_id/members/:member_id
		members.DELETE("/:member_id", h.Delete) // DELETE /api/v1/alliances/:alliance_id/members/:member_id
	}
}
