package eligibility

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

func rule(tier int, merit int64) models.MineRule {
	return models.MineRule{
		RuleID:        uuid.New(),
		Tier:          tier,
		RequiredMerit: merit,
		AllowedLevel:  models.LevelEither,
	}
}

func owned(memberID uuid.UUID, n int) []models.MineOwnership {
	out := make([]models.MineOwnership, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.MineOwnership{
			OwnershipID: uuid.New(),
			MemberID:    memberID,
			X:           i,
			Y:           i,
			Level:       9,
		})
	}
	return out
}

func TestComputeProgression(t *testing.T) {
	memberID := uuid.New()
	rules := []models.MineRule{rule(1, 50000), rule(2, 100000)}

	tests := []struct {
		name      string
		merit     int64
		ownedN    int
		wantTier  int
		wantMerit int64
		wantApply bool
	}{
		{"no mines, enough merit for first", 60000, 0, 1, 50000, true},
		{"no mines, not enough merit", 40000, 0, 1, 50000, false},
		{"one mine, below second threshold", 80000, 1, 2, 100000, false},
		{"one mine, at second threshold", 100000, 1, 2, 100000, true},
		{"exactly at first threshold", 50000, 0, 1, 50000, true},
		{"one below first threshold", 49999, 0, 1, 50000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Compute(memberID, tt.merit, rules, owned(memberID, tt.ownedN))

			if v.CurrentCount != tt.ownedN {
				t.Errorf("CurrentCount = %d, want %d", v.CurrentCount, tt.ownedN)
			}
			if v.NextTier == nil || *v.NextTier != tt.wantTier {
				t.Errorf("NextTier = %v, want %d", v.NextTier, tt.wantTier)
			}
			if v.NextRequiredMerit == nil || *v.NextRequiredMerit != tt.wantMerit {
				t.Errorf("NextRequiredMerit = %v, want %d", v.NextRequiredMerit, tt.wantMerit)
			}
			if v.CanApply != tt.wantApply {
				t.Errorf("CanApply = %v, want %v", v.CanApply, tt.wantApply)
			}
		})
	}
}

func TestComputeExhaustedTiers(t *testing.T) {
	memberID := uuid.New()
	rules := []models.MineRule{rule(1, 50000), rule(2, 100000)}

	// Member already holds every tier the alliance defined.
	v := Compute(memberID, 1000000, rules, owned(memberID, 2))

	if v.CurrentCount != 2 {
		t.Errorf("CurrentCount = %d, want 2", v.CurrentCount)
	}
	if v.CanApply {
		t.Error("CanApply = true, want false when no next tier exists")
	}
	if v.NextTier != nil || v.NextRequiredMerit != nil || v.NextAllowedLevel != nil {
		t.Errorf("next tier fields should all be nil, got tier=%v merit=%v level=%v",
			v.NextTier, v.NextRequiredMerit, v.NextAllowedLevel)
	}
}

func TestComputeNonContiguousTiers(t *testing.T) {
	memberID := uuid.New()
	// Tier 2 is missing: a member holding one mine has no rule to apply under.
	rules := []models.MineRule{rule(1, 50000), rule(3, 200000)}

	v := Compute(memberID, 500000, rules, owned(memberID, 1))

	if v.CanApply {
		t.Error("CanApply = true, want false when the next tier is undefined")
	}
	if v.NextTier != nil {
		t.Errorf("NextTier = %v, want nil", v.NextTier)
	}
}

func TestComputeDuplicateTierFirstWins(t *testing.T) {
	memberID := uuid.New()
	first := rule(1, 50000)
	second := rule(1, 70000)

	v := Compute(memberID, 60000, []models.MineRule{first, second}, nil)

	if v.NextRequiredMerit == nil || *v.NextRequiredMerit != 50000 {
		t.Fatalf("NextRequiredMerit = %v, want first duplicate's 50000", v.NextRequiredMerit)
	}
	if !v.CanApply {
		t.Error("CanApply = false, want true against the first duplicate's threshold")
	}
}

func TestComputeUnsortedRules(t *testing.T) {
	memberID := uuid.New()
	rules := []models.MineRule{rule(3, 200000), rule(1, 50000), rule(2, 100000)}

	v := Compute(memberID, 120000, rules, owned(memberID, 1))

	if v.NextTier == nil || *v.NextTier != 2 {
		t.Fatalf("NextTier = %v, want 2", v.NextTier)
	}
	if !v.CanApply {
		t.Error("CanApply = false, want true with merit 120000 against threshold 100000")
	}
}

func TestComputeCountsOnlyTargetMember(t *testing.T) {
	memberID := uuid.New()
	other := uuid.New()

	ownerships := append(owned(other, 3), owned(memberID, 1)...)
	rules := []models.MineRule{rule(1, 10), rule(2, 20)}

	v := Compute(memberID, 100, rules, ownerships)

	if v.CurrentCount != 1 {
		t.Errorf("CurrentCount = %d, want 1 (other members' mines must not count)", v.CurrentCount)
	}
	if v.NextTier == nil || *v.NextTier != 2 {
		t.Errorf("NextTier = %v, want 2", v.NextTier)
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	memberID := uuid.New()

	v := Compute(memberID, 99999, nil, nil)

	if v.CurrentCount != 0 {
		t.Errorf("CurrentCount = %d, want 0", v.CurrentCount)
	}
	if v.CanApply {
		t.Error("CanApply = true, want false with no rules configured")
	}
	if v.NextTier != nil {
		t.Errorf("NextTier = %v, want nil", v.NextTier)
	}
}

func TestComputeIdempotent(t *testing.T) {
	memberID := uuid.New()
	rules := []models.MineRule{rule(2, 100000), rule(1, 50000)}
	ownerships := owned(memberID, 1)

	first := Compute(memberID, 80000, rules, ownerships)
	second := Compute(memberID, 80000, rules, ownerships)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("verdicts differ across identical calls: %+v vs %+v", first, second)
	}
}

func TestComputeDoesNotMutateRules(t *testing.T) {
	memberID := uuid.New()
	rules := []models.MineRule{rule(3, 300), rule(1, 100), rule(2, 200)}

	Compute(memberID, 500, rules, nil)

	if rules[0].Tier != 3 || rules[1].Tier != 1 || rules[2].Tier != 2 {
		t.Error("Compute must not reorder the caller's rule slice")
	}
}

func TestComputeAllRosterOrder(t *testing.T) {
	veteran := models.Member{MemberID: uuid.New(), Name: "veteran", Merit: 150000}
	recruit := models.Member{MemberID: uuid.New(), Name: "recruit", Merit: 10000}
	rules := []models.MineRule{rule(1, 50000), rule(2, 100000)}
	ownerships := owned(veteran.MemberID, 1)

	verdicts := ComputeAll([]models.Member{veteran, recruit}, rules, ownerships)

	if len(verdicts) != 2 {
		t.Fatalf("got %d verdicts, want 2", len(verdicts))
	}
	if verdicts[0].MemberID != veteran.MemberID {
		t.Error("verdicts must come back in roster order")
	}
	if !verdicts[0].CanApply {
		t.Error("veteran with 150000 merit should pass tier 2's 100000 threshold")
	}
	if verdicts[1].CanApply {
		t.Error("recruit with 10000 merit should fail tier 1's 50000 threshold")
	}
	if verdicts[1].NextTier == nil || *verdicts[1].NextTier != 1 {
		t.Errorf("recruit NextTier = %v, want 1", verdicts[1].NextTier)
	}
}

func TestComputeLevelRestrictionSurfaces(t *testing.T) {
	memberID := uuid.New()
	r := rule(1, 1000)
	r.AllowedLevel = models.LevelTenOnly

	v := Compute(memberID, 2000, []models.MineRule{r}, nil)

	if v.NextAllowedLevel == nil || *v.NextAllowedLevel != models.LevelTenOnly {
		t.Errorf("NextAllowedLevel = %v, want %q", v.NextAllowedLevel, models.LevelTenOnly)
	}
}

// BenchmarkComputeAll_FullRoster sizes the hot path of the roster
// eligibility endpoint: 200 members, 10 tiers, mines spread unevenly.
func BenchmarkComputeAll_FullRoster(b *testing.B) {
	rules := make([]models.MineRule, 0, 10)
	for tier := 1; tier <= 10; tier++ {
		rules = append(rules, rule(tier, int64(tier)*50000))
	}

	members := make([]models.Member, 0, 200)
	ownerships := make([]models.MineOwnership, 0, 400)
	for i := 0; i < 200; i++ {
		m := models.Member{MemberID: uuid.New(), Name: "member", Merit: int64(i) * 3000}
		members = append(members, m)
		ownerships = append(ownerships, owned(m.MemberID, i%4)...)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeAll(members, rules, ownerships)
	}
}
