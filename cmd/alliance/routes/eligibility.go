package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterEligibilityRoutes registers the copper mine eligibility reads
func RegisterEligibilityRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewEligibilityHandler(c)

	seasons := e.Group("/api/v1/alliances/:alliance_id/seasons/:season_id")
	{
		seasons.GET("/eligibility", h.Roster)                       // GET /api/v1/alliances/:alliance_id/seasons/:season_id/eligibility
		seasons.GET("/members/:member_id/eligibility", h.ForMember) // GET /api/v1/alliances/:alliance_id/seasons/:season_id/members/:member_id/eligibility
	}
}
