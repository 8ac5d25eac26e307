package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/cache"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

func testCollectionCache(t *testing.T) (*CollectionCache, cache.Cache) {
	t.Helper()
	log := logger.New("error", "json")
	mem := cache.NewMemoryCache(log)
	return NewCollectionCache(mem, time.Minute, log), mem
}

func TestCollectionCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cc, _ := testCollectionCache(t)

	allianceID := uuid.New()
	key := rulesKey(allianceID)
	rules := []*models.MineRule{
		{RuleID: uuid.New(), AllianceID: allianceID, Tier: 1, RequiredMerit: 50000, AllowedLevel: models.LevelEither},
		{RuleID: uuid.New(), AllianceID: allianceID, Tier: 2, RequiredMerit: 120000, AllowedLevel: models.LevelTenOnly},
	}

	var cold []*models.MineRule
	if cc.get(ctx, key, &cold) {
		t.Fatal("expected miss on empty cache")
	}

	cc.put(ctx, key, rules)

	var warm []*models.MineRule
	if !cc.get(ctx, key, &warm) {
		t.Fatal("expected hit after put")
	}
	if len(warm) != 2 {
		t.Fatalf("cached %d rules, want 2", len(warm))
	}
	if warm[0].Tier != 1 || warm[1].RequiredMerit != 120000 {
		t.Errorf("cached rules lost fields: %+v", warm)
	}
}

func TestCollectionCacheDropInvalidates(t *testing.T) {
	ctx := context.Background()
	cc, _ := testCollectionCache(t)

	allianceID := uuid.New()
	seasonID := uuid.New()
	cc.put(ctx, rulesKey(allianceID), []*models.MineRule{{Tier: 1}})
	cc.put(ctx, ownershipsKey(seasonID), []*models.MineOwnership{{Level: 9}})

	if err := cc.drop(ctx, rulesKey(allianceID), ownershipsKey(seasonID)); err != nil {
		t.Fatalf("drop: %v", err)
	}

	var rules []*models.MineRule
	if cc.get(ctx, rulesKey(allianceID), &rules) {
		t.Error("rules still cached after drop")
	}
	var owns []*models.MineOwnership
	if cc.get(ctx, ownershipsKey(seasonID), &owns) {
		t.Error("ownerships still cached after drop")
	}
}

func TestCollectionCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	cc, mem := testCollectionCache(t)

	key := membersKey(uuid.New())
	if err := mem.Set(ctx, key, []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	var members []*models.Member
	if cc.get(ctx, key, &members) {
		t.Fatal("corrupt entry reported as hit")
	}

	// A bad entry is evicted so it cannot shadow the repository forever.
	if _, found, _ := mem.Get(ctx, key); found {
		t.Error("corrupt entry survived the failed read")
	}
}

func TestCollectionCacheKeysAreDisjoint(t *testing.T) {
	id := uuid.New()
	keys := map[string]bool{
		rulesKey(id):        true,
		ownershipsKey(id):   true,
		membersKey(id):      true,
		subscriptionKey(id): true,
	}
	if len(keys) != 4 {
		t.Fatalf("key helpers collide for the same id: %v", keys)
	}
}
