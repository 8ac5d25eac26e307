package ratelimit

import "github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"

// PlanConfig defines write rate limits for each subscription plan
type PlanConfig struct {
	Plan          models.Plan
	Limit         int64  // Requests allowed per window
	WindowSeconds int    // Time window in seconds
	Description   string // Human-readable description
}

// Default plan configurations
var DefaultPlanConfigs = map[models.Plan]PlanConfig{
	models.PlanFree: {
		Plan:          models.PlanFree,
		Limit:         30,
		WindowSeconds: 60,
		Description:   "Free plan - 30 writes/minute",
	},
	models.PlanStandard: {
		Plan:          models.PlanStandard,
		Limit:         120,
		WindowSeconds: 60,
		Description:   "Standard plan - 120 writes/minute",
	},
	models.PlanPremium: {
		Plan:          models.PlanPremium,
		Limit:         600,
		WindowSeconds: 60,
		Description:   "Premium plan - 600 writes/minute",
	},
}

// GlobalConfig contains global service-wide limits
type GlobalConfig struct {
	Limit         int64 // Total requests per window (all users)
	WindowSeconds int   // Time window
}

// Default global configuration
var DefaultGlobalConfig = GlobalConfig{
	Limit:         1000,
	WindowSeconds: 60,
}

// GetLimitForPlan returns the rate limit for a given plan
func GetLimitForPlan(plan models.Plan) int64 {
	if config, exists := DefaultPlanConfigs[plan]; exists {
		return config.Limit
	}
	// Fallback to most restrictive plan
	return DefaultPlanConfigs[models.PlanFree].Limit
}

// GetWindowForPlan returns the time window for a given plan
func GetWindowForPlan(plan models.Plan) int {
	if config, exists := DefaultPlanConfigs[plan]; exists {
		return config.WindowSeconds
	}
	return DefaultPlanConfigs[models.PlanFree].WindowSeconds
}

// GetAllPlans returns all configured plans for documentation/API responses
func GetAllPlans() []PlanConfig {
	return []PlanConfig{
		DefaultPlanConfigs[models.PlanFree],
		DefaultPlanConfigs[models.PlanStandard],
		DefaultPlanConfigs[models.PlanPremium],
	}
}
