package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterLedgerRoutes registers contribution and donation ledger routes
func RegisterLedgerRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewLedgerHandler(c)

	contribs := e.Group("/api/v1/alliances/:alliance_id/seasons/:season_id/contributions")
	{
		contribs.POST("", h.RecordContribution)              // POST /api/v1/alliances/:alliance_id/seasons/:season_id/contributions
		contribs.GET("", h.ListContributions)                // GET /api/v1/alliances/:alliance_id/seasons/:season_id/contributions
		contribs.DELETE("/:entry_id", h.DeleteContribution)  // DELETE /api/v1/alliances/:alliance_id/seasons/:season_id/contributions/:entry_id
	}

	donations := e.Group("/api/v1/alliances/:alliance_id/seasons/:season_id/donations")
	{
		donations.POST("", h.RecordDonation)             // POST /api/v1/alliances/:alliance_id/seasons/:season_id/donations
		donations.GET("", h.ListDonations)               // GET /api/v1/alliances/:alliance_id/seasons/:season_id/donations
		donations.DELETE("/:entry_id", h.DeleteDonation) // DELETE /api/v1/alliances/:alliance_id/seasons/:season_id/donations/:entry_id
	}
}
