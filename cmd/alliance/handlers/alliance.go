package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// AllianceHandler handles alliance-related requests
type AllianceHandler struct {
	components *bootstrap.Components
	alliances  *service.AllianceService
}

// NewAllianceHandler creates a new alliance handler
func NewAllianceHandler(c *container.Container) *AllianceHandler {
	return &AllianceHandler{
		components: c.Components,
		alliances:  c.AllianceService,
	}
}

// Create creates a new alliance owned by the caller
// POST /api/v1/alliances
func (h *AllianceHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name       string `json:"name"`
		GameServer string `json:"game_server"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("creating alliance", "user", userID, "name", req.Name)

	alliance, err := h.alliances.Create(ctx, userID, req.Name, req.GameServer)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, alliance)
}

// List lists the caller's alliances
// GET /api/v1/alliances
func (h *AllianceHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	alliances, err := h.alliances.List(ctx, userID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alliances": alliances,
		"count":     len(alliances),
	})
}

// Get retrieves one alliance
// GET /api/v1/alliances/:alliance_id
func (h *AllianceHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	alliance, err := h.alliances.Get(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, alliance)
}

// PatchSettings applies an RFC 7386 merge patch to the settings document
// PATCH /api/v1/alliances/:alliance_id/settings
func (h *AllianceHandler) PatchSettings(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	patch, err := io.ReadAll(c.Request().Body)
	if err != nil || len(patch) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "request body must be a JSON merge patch",
		})
	}

	h.components.Logger.Info("patching settings", "alliance_id", allianceID, "user", userID)

	alliance, err := h.alliances.PatchSettings(ctx, userID, allianceID, patch)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, alliance)
}

// Delete removes an alliance
// DELETE /api/v1/alliances/:alliance_id
func (h *AllianceHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	h.components.Logger.Info("deleting alliance", "alliance_id", allianceID, "user", userID)

	if err := h.alliances.Delete(ctx, userID, allianceID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
