package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/config"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/ratelimit"
)

// PlanResolver returns the subscription plan a request is billed against
type PlanResolver interface {
	Current(ctx context.Context, allianceID uuid.UUID) (*models.Subscription, error)
}

// InternalTokenHeader bypasses rate limits for service-to-service calls
const InternalTokenHeader = "X-Internal-Token"

// RateLimit limits mutating requests per user. Inside an alliance the limit
// follows the alliance's subscription plan; requests outside any alliance
// (creating one, listing) get the free-plan limit. Reads are never limited.
func RateLimit(limiter *ratelimit.RateLimiter, plans PlanResolver, cfg config.RateLimitConfig, internalToken string, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !mutating(c.Request().Method) {
				return next(c)
			}

			if internalToken != "" && c.Request().Header.Get(InternalTokenHeader) == internalToken {
				return next(c)
			}

			userID := GetUserID(c)
			if userID == "" {
				// Unauthenticated mutations fail later anyway
				return next(c)
			}

			ctx := c.Request().Context()

			// Service-wide ceiling first
			global, err := limiter.CheckGlobalLimit(ctx, cfg.GlobalLimit, cfg.WindowSec)
			if err != nil {
				// A broken limiter must not take writes down with it
				log.Warn("global rate limit check failed, allowing", "error", err)
				return next(c)
			}
			if !global.Allowed {
				return tooManyRequests(c, global)
			}

			plan := models.PlanFree
			allianceID, parseErr := uuid.Parse(c.Param("alliance_id"))
			if parseErr == nil {
				if sub, err := plans.Current(ctx, allianceID); err == nil {
					plan = sub.Plan
				}
				result, err := limiter.CheckPlanLimit(ctx, userID, allianceID.String(), plan)
				if err != nil {
					log.Warn("plan rate limit check failed, allowing", "user", userID, "error", err)
					return next(c)
				}
				if !result.Allowed {
					return tooManyRequests(c, result)
				}
				return next(c)
			}

			result, err := limiter.CheckUserLimit(ctx, userID, ratelimit.GetLimitForPlan(plan), ratelimit.GetWindowForPlan(plan))
			if err != nil {
				log.Warn("user rate limit check failed, allowing", "user", userID, "error", err)
				return next(c)
			}
			if !result.Allowed {
				return tooManyRequests(c, result)
			}

			return next(c)
		}
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func tooManyRequests(c echo.Context, result *ratelimit.Result) error {
	return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
		"error": map[string]interface{}{
			"code":        apperr.CodeRateLimited,
			"message":     "rate limit exceeded",
			"retry_after": result.RetryAfterSeconds,
			"limit":       result.Limit,
		},
	})
}
