package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// CollaboratorHandler handles collaborator and invite requests
type CollaboratorHandler struct {
	components    *bootstrap.Components
	collaborators *service.CollaboratorService
}

// NewCollaboratorHandler creates a new collaborator handler
func NewCollaboratorHandler(c *container.Container) *CollaboratorHandler {
	return &CollaboratorHandler{
		components:    c.Components,
		collaborators: c.CollaboratorService,
	}
}

// List lists the collaborators of an alliance
// GET /api/v1/alliances/:alliance_id/collaborators
func (h *CollaboratorHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	collabs, err := h.collaborators.List(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"collaborators": collabs,
		"count":         len(collabs),
	})
}

// Invite invites a user to collaborate
// POST /api/v1/alliances/:alliance_id/collaborators/invites
func (h *CollaboratorHandler) Invite(c echo.Context) error {
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
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("creating invite",
		"alliance_id", allianceID,
		"invitee", req.UserID,
		"user", userID,
	)

	invite, err := h.collaborators.Invite(ctx, userID, allianceID, req.UserID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, invite)
}

// ListInvites lists the invites of an alliance
// GET /api/v1/alliances/:alliance_id/collaborators/invites
func (h *CollaboratorHandler) ListInvites(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	invites, err := h.collaborators.ListInvites(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"invites": invites,
		"count":   len(invites),
	})
}

// Accept accepts an invite addressed to the caller
// POST /api/v1/alliances/:alliance_id/collaborators/invites/:invite_id/accept
func (h *CollaboratorHandler) Accept(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	inviteID, err := pathUUID(c, "invite_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	collab, err := h.collaborators.Accept(ctx, userID, allianceID, inviteID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, collab)
}

// Decline declines an invite addressed to the caller
// POST /api/v1/alliances/:alliance_id/collaborators/invites/:invite_id/decline
func (h *CollaboratorHandler) Decline(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	inviteID, err := pathUUID(c, "invite_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	if err := h.collaborators.Decline(ctx, userID, allianceID, inviteID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Remove removes a collaborator
// DELETE /api/v1/alliances/:alliance_id/collaborators/:user_id
func (h *CollaboratorHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	targetUserID := c.Param("user_id")
	if targetUserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "user_id is required",
		})
	}

	h.components.Logger.Info("removing collaborator",
		"alliance_id", allianceID,
		"target", targetUserID,
		"user", userID,
	)

	if err := h.collaborators.Remove(ctx, userID, allianceID, targetUserID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
