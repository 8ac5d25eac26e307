package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
)

// LedgerHandler handles contribution and donation ledger requests
type LedgerHandler struct {
	components *bootstrap.Components
	ledgers    *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(c *container.Container) *LedgerHandler {
	return &LedgerHandler{
		components: c.Components,
		ledgers:    c.LedgerService,
	}
}

// ledgerFilter reads the shared list query parameters
func ledgerFilter(c echo.Context) service.LedgerFilter {
	filter := service.LedgerFilter{
		Kind: c.QueryParam("kind"),
	}

	if raw := c.QueryParam("member_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.MemberID = &id
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}

	return filter
}

// RecordContribution appends a contribution entry
// POST /api/v1/alliances/:alliance_id/seasons/:season_id/contributions
func (h *LedgerHandler) RecordContribution(c echo.Context) error {
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

	var req service.LedgerInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	con, err := h.ledgers.RecordContribution(ctx, userID, allianceID, seasonID, req)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, con)
}

// ListContributions lists contribution entries
// GET /api/v1/alliances/:alliance_id/seasons/:season_id/contributions
func (h *LedgerHandler) ListContributions(c echo.Context) error {
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

	cons, err := h.ledgers.ListContributions(ctx, userID, allianceID, seasonID, ledgerFilter(c))
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"contributions": cons,
		"count":         len(cons),
	})
}

// DeleteContribution removes a contribution entry
// DELETE /api/v1/alliances/:alliance_id/seasons/:season_id/contributions/:contribution_id
func (h *LedgerHandler) DeleteContribution(c echo.Context) error {
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

	contributionID, err := pathUUID(c, "contribution_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	if err := h.ledgers.DeleteContribution(ctx, userID, allianceID, seasonID, contributionID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RecordDonation appends a donation entry. The body's kind field names the
// donated resource.
// POST /api/v1/alliances/:alliance_id/seasons/:season_id/donations
func (h *LedgerHandler) RecordDonation(c echo.Context) error {
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

	var req struct {
		MemberID uuid.UUID `json:"member_id"`
		Amount   int64     `json:"amount"`
		Resource string    `json:"resource"`
		Note     *string   `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	don, err := h.ledgers.RecordDonation(ctx, userID, allianceID, seasonID, service.LedgerInput{
		MemberID: req.MemberID,
		Amount:   req.Amount,
		Kind:     req.Resource,
		Note:     req.Note,
	})
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, don)
}

// ListDonations lists donation entries
// GET /api/v1/alliances/:alliance_id/seasons/:season_id/donations
func (h *LedgerHandler) ListDonations(c echo.Context) error {
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

	filter := ledgerFilter(c)
	if resource := c.QueryParam("resource"); resource != "" {
		filter.Kind = resource
	}

	dons, err := h.ledgers.ListDonations(ctx, userID, allianceID, seasonID, filter)
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"donations": dons,
		"count":     len(dons),
	})
}

// DeleteDonation removes a donation entry
// DELETE /api/v1/alliances/:alliance_id/seasons/:season_id/donations/:donation_id
func (h *LedgerHandler) DeleteDonation(c echo.Context) error {
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

	donationID, err := pathUUID(c, "donation_id")
	if err != nil {
		return writeError(c, h.components.Logger, err)
	}

	if err := h.ledgers.DeleteDonation(ctx, userID, allianceID, seasonID, donationID); err != nil {
		return writeError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
