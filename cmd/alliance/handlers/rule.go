package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// RuleHandler handles mine rule requests
type RuleHandler struct {
	components *bootstrap.Components
	rules      *service.RuleService
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(c *container.Container) *RuleHandler {
	return &RuleHandler{
		components: c.Components,
		rules:      c.RuleService,
	}
}

// Create adds a rule
// POST /api/v1/alliances/:alliance_id/mine-rules
func (h *RuleHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	var req service.RuleInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("creating rule",
		"alliance_id", allianceID,
		"tier", req.Tier,
		"user", userID,
	)

	rule, err := h.rules.Create(ctx, userID, allianceID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, rule)
}

// List lists the rules ordered by tier
// GET /api/v1/alliances/:alliance_id/mine-rules
func (h *RuleHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	rules, err := h.rules.List(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// Get retrieves one rule
// GET /api/v1/alliances/:alliance_id/mine-rules/:rule_id
func (h *RuleHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	ruleID, err := pathUUID(c, "rule_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	rule, err := h.rules.Get(ctx, userID, allianceID, ruleID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, rule)
}

// Update rewrites a rule
// PUT /api/v1/alliances/:alliance_id/mine-rules/:rule_id
func (h *RuleHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	ruleID, err := pathUUID(c, "rule_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	var req service.RuleInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("updating rule",
		"alliance_id", allianceID,
		"rule_id", ruleID,
		"user", userID,
	)

	rule, err := h.rules.Update(ctx, userID, allianceID, ruleID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, rule)
}

// Delete removes a rule
// DELETE /api/v1/alliances/:alliance_id/mine-rules/:rule_id
func (h *RuleHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	ruleID, err := pathUUID(c, "rule_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	h.components.Logger.Info("deleting rule",
		"alliance_id", allianceID,
		"rule_id", ruleID,
		"user", userID,
	)

	if err := h.rules.Delete(ctx, userID, allianceID, ruleID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
