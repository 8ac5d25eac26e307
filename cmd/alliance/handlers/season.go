package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// SeasonHandler handles season requests
type SeasonHandler struct {
	components *bootstrap.Components
	seasons    *service.SeasonService
}

// NewSeasonHandler creates a new season handler
func NewSeasonHandler(c *container.Container) *SeasonHandler {
	return &SeasonHandler{
		components: c.Components,
		seasons:    c.SeasonService,
	}
}

// Create starts a new season
// POST /api/v1/alliances/:alliance_id/seasons
func (h *SeasonHandler) Create(c echo.Context) error {
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
		Name     string    `json:"name"`
		StartsAt time.Time `json:"starts_at"`
		EndsAt   time.Time `json:"ends_at"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	h.components.Logger.Info("starting season",
		"alliance_id", allianceID,
		"name", req.Name,
		"user", userID,
	)

	season, err := h.seasons.Create(ctx, userID, allianceID, req.Name, req.StartsAt, req.EndsAt)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, season)
}

// List lists the seasons of an alliance
// GET /api/v1/alliances/:alliance_id/seasons
func (h *SeasonHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	seasons, err := h.seasons.List(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"seasons": seasons,
		"count":   len(seasons),
	})
}

// GetActive retrieves the active season
// GET /api/v1/alliances/:alliance_id/seasons/active
func (h *SeasonHandler) GetActive(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	season, err := h.seasons.GetActive(ctx, userID, allianceID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, season)
}

// Get retrieves one season
// GET /api/v1/alliances/:alliance_id/seasons/:season_id
func (h *SeasonHandler) Get(c echo.Context) error {
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

	season, err := h.seasons.Get(ctx, userID, allianceID, seasonID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, season)
}

// Close ends a season early
// POST /api/v1/alliances/:alliance_id/seasons/:season_id/close
func (h *SeasonHandler) Close(c echo.Context) error {
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

	h.components.Logger.Info("closing season",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"user", userID,
	)

	season, err := h.seasons.Close(ctx, userID, allianceID, seasonID)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, season)
}
