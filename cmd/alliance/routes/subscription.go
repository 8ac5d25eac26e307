package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterSubscriptionRoutes registers subscription plan routes
func RegisterSubscriptionRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewSubscriptionHandler(c)

	subs := e.Group("/api/v1/alliances/:alliance_id/subscription")
	{
		subs.GET("", h.Get) // GET /api/v1/alliances/:alliance_id/subscription
		subs.PUT("", h.Set) // PUT /api/v1/alliances/:alliance_id/subscription
	}
}
