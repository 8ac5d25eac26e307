package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/handlers"
)

// RegisterRuleRoutes registers mine rule CRUD routes
func RegisterRuleRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewRuleHandler(c)

	rules := e.Group("/api/v1/alliances/:alliance_id/mine-rules")
	{
		rules.POST("", h.Create)            // POST /api/v1/alliances/:alliance_id/mine-rules
		rules.GET("", h.List)               // GET /api/v1/alliances/:alliance_id/mine-rules
		rules.GET("/:rule_id", h.Get)       // GET /api/v1/alliances/:alliance_id/mine-rules/:rule_id
		rules.PUT("/:rule_id", h.Update)    // PUT /api/v1/alliances/:alliance_id/mine-rules/:rule_id
		rules.DELETE("/:rule_id", h.Delete) // DELETE /api/v1/alliances/:alliance_id/mine-rules/:rule_id
	}
}
