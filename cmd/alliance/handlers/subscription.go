package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// SubscriptionHandler handles subscription requests
type SubscriptionHandler struct {
	components    *bootstrap.Components
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(c *container.Container) *SubscriptionHandler {
	return &SubscriptionHandler{
		components:    c.Components,
		subscriptions: c.SubscriptionService,
	}
}

// Get retrieves the alliance's subscription
// GET /api/v1/alliances/:alliance_id/subscription
func (h *SubscriptionHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	sub, err := h.subscriptions.Get(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, sub)
}

// Set changes the subscription plan
// PUT /api/v1/alliances/:alliance_id/subscription
func (h *SubscriptionHandler) Set(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	var req struct {
		Plan      models.Plan `json:"plan"`
		ExpiresAt *time.Time  `json:"expires_at"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("setting subscription",
		"alliance_id", allianceID,
		"plan", req.Plan,
		"user", userID,
	)

	sub, err := h.subscriptions.Set(ctx, userID, allianceID, req.Plan, req.ExpiresAt)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, sub)
}
