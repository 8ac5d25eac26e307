package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// MemberHandler handles game member roster requests
type MemberHandler struct {
	components *bootstrap.Components
	members    *service.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(c *container.Container) *MemberHandler {
	return &MemberHandler{
		components: c.Components,
		members:    c.MemberService,
	}
}

// Create adds a member to the roster
// POST /api/v1/alliances/:alliance_id/members
func (h *MemberHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	var req service.MemberInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	member, err := h.members.Create(ctx, userID, allianceID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, member)
}

// List lists the roster
// GET /api/v1/alliances/:alliance_id/members
func (h *MemberHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	members, err := h.members.List(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"members": members,
		"count":   len(members),
	})
}

// Get retrieves one member
// GET /api/v1/alliances/:alliance_id/members/:member_id
func (h *MemberHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	memberID, err := pathUUID(c, "member_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	member, err := h.members.Get(ctx, userID, allianceID, memberID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, member)
}

// Update replaces a member's fields, merit included
// PUT /api/v1/alliances/:alliance_id/members/:member_id
func (h *MemberHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	memberID, err := pathUUID(c, "member_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	var req service.MemberInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	member, err := h.members.Update(ctx, userID, allianceID, memberID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, member)
}

// Delete removes a member
// DELETE /api/v1/alliances/:alliance_id/members/:member_id
func (h *MemberHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	memberID, err := pathUUID(c, "member_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	if err := h.members.Delete(ctx, userID, allianceID, memberID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
