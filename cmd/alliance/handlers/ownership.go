package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// OwnershipHandler handles mine ownership requests
type OwnershipHandler struct {
	components *bootstrap.Components
	ownerships *service.OwnershipService
}

// NewOwnershipHandler creates a new ownership handler
func NewOwnershipHandler(c *container.Container) *OwnershipHandler {
	return &OwnershipHandler{
		components: c.Components,
		ownerships: c.OwnershipService,
	}
}

// Grant records a new mine grant
// POST /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships
func (h *OwnershipHandler) Grant(c echo.Context) error {
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

	var req service.GrantInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("granting mine",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"member_id", req.MemberID,
		"user", userID,
	)

	own, err := h.ownerships.Grant(ctx, userID, allianceID, seasonID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, own)
}

// List lists the season's ownerships
// GET /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships
func (h *OwnershipHandler) List(c echo.Context) error {
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

	owns, err := h.ownerships.List(ctx, userID, allianceID, seasonID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ownerships": owns,
		"count":      len(owns),
	})
}

// Revoke deletes an ownership
// DELETE /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships/:ownership_id
func (h *OwnershipHandler) Revoke(c echo.Context) error {
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

	ownershipID, err := pathUUID(c, "ownership_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	h.components.Logger.Info("revoking mine",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"ownership_id", ownershipID,
		"user", userID,
	)

	if err := h.ownerships.Revoke(ctx, userID, allianceID, seasonID, ownershipID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Transfer reassigns a mine to another member
// POST /api/v1/alliances/:alliance_id/seasons/:season_id/ownerships/:ownership_id/transfer
func (h *OwnershipHandler) Transfer(c echo.Context) error {
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

	ownershipID, err := pathUUID(c, "ownership_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	var req struct {
		ToMemberID string `json:"to_member_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	toMemberID, err := parseUUIDField(req.ToMemberID, "to_member_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	h.components.Logger.Info("transferring mine",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"ownership_id", ownershipID,
		"to_member_id", toMemberID,
		"user", userID,
	)

	own, err := h.ownerships.Transfer(ctx, userID, allianceID, seasonID, ownershipID, toMemberID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, own)
}
