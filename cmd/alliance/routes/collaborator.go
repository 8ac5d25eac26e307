package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterCollaboratorRoutes registers collaborator and invite routes
func RegisterCollaboratorRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewCollaboratorHandler(c)

	collabs := e.Group("/api/v1/alliances/:alliance_id/collaborators")
	{
		collabs.GET("", h.List)                                // GET /api/v1/alliances/:alliance_id/collaborators
		collabs.POST("/invites", h.Invite)                     // POST /api/v1/alliances/:alliance_id/collaborators/invites
		collabs.GET("/invites", h.ListInvites)                 // GET /api/v1/alliances/:alliance_id/collaborators/invites
		collabs.POST("/invites/:invite_id/accept", h.Accept)   // POST /api/v1/alliances/:alliance_id/collaborators/invites/:invite_id/accept
		collabs.POST("/invites/:invite_id/decline", h.Decline) // POST /api/v1/alliances/:alliance_id/collaborators/invites/:invite_id/decline
		collabs.DELETE("/:user_id", h.Remove)                  // DELETE /api/v1/alliances/:alliance_id/collaborators/:user_id
	}
}
