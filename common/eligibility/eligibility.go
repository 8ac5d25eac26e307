// Package eligibility computes copper mine application verdicts.
//
// The calculator is pure: it sees only the rule set, the season's ownership
// rows and the member's merit, and returns the same verdict for the same
// inputs every time. Loading those inputs, caching them and deciding whether
// they exist at all is the service layer's job, so "season not found" stays
// distinguishable from "not eligible".
package eligibility

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// Compute returns the verdict for one member.
//
// A member holding N mines is evaluated against the rule for tier N+1: the
// verdict is positive when such a rule exists and the member's merit meets
// its threshold. When no rule defines tier N+1, the member cannot acquire
// another mine and the Next* fields are null.
func Compute(memberID uuid.UUID, merit int64, rules []models.MineRule, ownerships []models.MineOwnership) models.EligibilityVerdict {
	verdict := models.EligibilityVerdict{
		MemberID:     memberID,
		CurrentCount: countOwned(memberID, ownerships),
	}

	nextTier := verdict.CurrentCount + 1
	rule, ok := ruleForTier(rules, nextTier)
	if !ok {
		// Tier progression exhausted or not configured
		return verdict
	}

	verdict.NextTier = &rule.Tier
	verdict.NextRequiredMerit = &rule.RequiredMerit
	verdict.NextAllowedLevel = &rule.AllowedLevel
	verdict.CanApply = merit >= rule.RequiredMerit

	return verdict
}

// ComputeAll returns verdicts for a whole roster against one rule set and
// one season's ownerships, in roster order.
func ComputeAll(members []models.Member, rules []models.MineRule, ownerships []models.MineOwnership) []models.EligibilityVerdict {
	sorted := sortedRules(rules)

	verdicts := make([]models.EligibilityVerdict, 0, len(members))
	for _, m := range members {
		verdicts = append(verdicts, Compute(m.MemberID, m.Merit, sorted, ownerships))
	}
	return verdicts
}

// countOwned counts the member's ownership rows. The count is always derived
// here, never read from a stored counter.
func countOwned(memberID uuid.UUID, ownerships []models.MineOwnership) int {
	count := 0
	for _, o := range ownerships {
		if o.MemberID == memberID {
			count++
		}
	}
	return count
}

// ruleForTier finds the rule gating the given tier. Rules arrive in any
// order; duplicate tiers are a configuration error and the first one after a
// stable ascending sort wins.
func ruleForTier(rules []models.MineRule, tier int) (models.MineRule, bool) {
	for _, r := range sortedRules(rules) {
		if r.Tier == tier {
			return r, true
		}
		if r.Tier > tier {
			break
		}
	}
	return models.MineRule{}, false
}

// sortedRules returns the rules stably sorted ascending by tier, without
// mutating the input.
func sortedRules(rules []models.MineRule) []models.MineRule {
	if len(rules) < 2 {
		return rules
	}
	sorted := make([]models.MineRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tier < sorted[j].Tier
	})
	return sorted
}
