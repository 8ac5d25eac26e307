package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/live"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/filter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard fronts this through the gateway; origin policy
		// lives there
		return true
	},
}

// LiveHandler upgrades timeline subscribers to WebSocket connections
type LiveHandler struct {
	components *bootstrap.Components
	access     *service.AccessService
	filter     *filter.Evaluator
	hub        *live.Hub
}

// NewLiveHandler creates a new live feed handler
func NewLiveHandler(c *container.Container) *LiveHandler {
	return &LiveHandler{
		components: c.Components,
		access:     c.AccessService,
		filter:     c.FilterEvaluator,
		hub:        c.Hub,
	}
}

// Stream subscribes the caller to the alliance's live timeline. Access and
// the optional filter expression are checked before the upgrade so failures
// stay plain HTTP errors.
// GET /api/v1/alliances/:alliance_id/timeline/live
func (h *LiveHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	if _, err := h.access.Require(ctx, allianceID, userID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	expr := c.QueryParam("filter")
	if expr != "" {
		if err := h.filter.Check(expr); err != nil {
			return writeError(c, h.components.Logger, err)
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own error response
		h.components.Logger.Warn("websocket upgrade failed",
			"alliance_id", allianceID,
			"error", err,
		)
		return nil
	}

	client := live.NewClient(h.hub, conn, allianceID, expr)
	h.hub.Register(client)

	h.components.Logger.Info("live client connected",
		"alliance_id", allianceID,
		"user", userID,
		"filtered", expr != "",
	)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
