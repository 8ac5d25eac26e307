package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterAnalyticsRoutes registers the subscription-gated analytics reads
// and the live timeline feed
func RegisterAnalyticsRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAnalyticsHandler(c)
	lh := handlers.NewLiveHandler(c)

	alliances := e.Group("/api/v1/alliances/:alliance_id")
	{
		alliances.GET("/seasons/:season_id/analytics/contribution-boxplot", h.ContributionBoxplot) // GET /api/v1/alliances/:alliance_id/seasons/:season_id/analytics/contribution-boxplot
		alliances.GET("/timeline", h.Timeline)                                                     // GET /api/v1/alliances/:alliance_id/timeline
		alliances.GET("/timeline/live", lh.Stream)                                                 // GET /api/v1/alliances/:alliance_id/timeline/live
	}
}
