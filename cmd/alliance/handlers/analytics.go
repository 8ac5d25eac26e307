package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// AnalyticsHandler handles the subscription-gated analytics reads
type AnalyticsHandler struct {
	components *bootstrap.Components
	analytics  *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(c *container.Container) *AnalyticsHandler {
	return &AnalyticsHandler{
		components: c.Components,
		analytics:  c.AnalyticsService,
	}
}

// ContributionBoxplot returns per-group five-number summaries of member
// contribution totals
// GET /api/v1/alliances/:alliance_id/seasons/:season_id/analytics/contribution-boxplot
func (h *AnalyticsHandler) ContributionBoxplot(c echo.Context) error {
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

	summaries, err := h.analytics.ContributionBoxplot(ctx, userID, allianceID, seasonID, c.QueryParam("kind"))
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"groups": summaries,
		"count":  len(summaries),
	})
}

// Timeline returns the persisted event timeline, optionally narrowed by a
// CEL filter expression
// GET /api/v1/alliances/:alliance_id/timeline
func (h *AnalyticsHandler) Timeline(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	allianceID, err := pathUUID(c, "alliance_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	req := service.TimelineRequest{
		Kind:   c.QueryParam("kind"),
		Filter: c.QueryParam("filter"),
	}

	if raw := c.QueryParam("season_id"); raw != "" {
		seasonID, err := parseUUIDField(raw, "season_id")
		if err != nil {
			return writeError(c, h.components.Logger, err)
		}
		req.SeasonID = &seasonID
	}

	if raw := c.QueryParam("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return writeError(c, h.components.Logger,
				apperr.Validation(apperr.CodeInvalidRequest, "before must be an RFC 3339 timestamp"))
		}
		req.Before = &before
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return writeError(c, h.components.Logger,
				apperr.Validation(apperr.CodeInvalidRequest, "limit must be a non-negative integer"))
		}
		req.Limit = limit
	}

	events, err := h.analytics.Timeline(ctx, userID, allianceID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
