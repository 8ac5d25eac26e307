package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// EligibilityHandler answers mine application eligibility questions
type EligibilityHandler struct {
	components  *bootstrap.Components
	eligibility *service.EligibilityService
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(c *container.Container) *EligibilityHandler {
	return &EligibilityHandler{
		components:  c.Components,
		eligibility: c.EligibilityService,
	}
}

// ForMember computes the verdict for one member
// GET /api/v1/alliances/:alliance_id/seasons/:season_id/members/:member_id/eligibility
func (h *EligibilityHandler) ForMember(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	seasonID, err := pathUUID(c, "season_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	memberID, err := pathUUID(c, "member_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	verdict, err := h.eligibility.For(ctx, userID, allianceID, seasonID, memberID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, verdict)
}

// Roster computes verdicts for the whole roster in one pass
// GET /api/v1/alliances/:alliance_id/seasons/:season_id/eligibility
func (h *EligibilityHandler) Roster(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	seasonID, err := pathUUID(c, "season_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	verdicts, err := h.eligibility.Roster(ctx, userID, allianceID, seasonID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"verdicts": verdicts,
		"count":    len(verdicts),
	})
}
