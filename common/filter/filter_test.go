package filter

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

func event(kind string, attrs map[string]interface{}) *models.AllianceEvent {
	return &models.AllianceEvent{
		AllianceID: uuid.New(),
		Kind:       kind,
		Actor:      "user-1",
		MemberName: "zhang fei",
		Attrs:      attrs,
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMatchOnKind(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	granted := event(models.EventOwnershipGranted, nil)
	revoked := event(models.EventOwnershipRevoked, nil)

	expr := `event.kind == "ownership.granted"`

	if ok, err := e.Match(expr, granted); err != nil || !ok {
		t.Errorf("Match(granted) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := e.Match(expr, revoked); err != nil || ok {
		t.Errorf("Match(revoked) = %v, %v; want false, nil", ok, err)
	}
}

func TestMatchOnAttrs(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	ten := event(models.EventOwnershipGranted, map[string]interface{}{"level": 10})
	nine := event(models.EventOwnershipGranted, map[string]interface{}{"level": 9})

	expr := `attrs.level == 10`

	if ok, _ := e.Match(expr, ten); !ok {
		t.Error("level 10 event should match attrs.level == 10")
	}
	if ok, _ := e.Match(expr, nine); ok {
		t.Error("level 9 event should not match attrs.level == 10")
	}
}

func TestMatchCompoundExpression(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	ev := event(models.EventOwnershipGranted, map[string]interface{}{"level": 10})

	ok, err := e.Match(`event.kind.startsWith("ownership.") && attrs.level >= 10`, ev)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !ok {
		t.Error("compound expression should match")
	}
}

func TestInvalidExpressionIsValidationError(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	_, err = e.Match(`event.kind ==`, event("member.joined", nil))
	if err == nil {
		t.Fatal("expected error for unparseable expression")
	}
	if apperr.CodeOf(err) != apperr.CodeInvalidFilter {
		t.Errorf("CodeOf = %q, want %q", apperr.CodeOf(err), apperr.CodeInvalidFilter)
	}
}

func TestNonBooleanExpressionRejected(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	_, err = e.Match(`event.kind`, event("member.joined", nil))
	if err == nil {
		t.Fatal("expected error for non-boolean expression")
	}
	if apperr.CodeOf(err) != apperr.CodeInvalidFilter {
		t.Errorf("CodeOf = %q, want %q", apperr.CodeOf(err), apperr.CodeInvalidFilter)
	}
}

func TestProgramCacheReuse(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	expr := `event.actor == "user-1"`
	ev := event("member.joined", nil)

	for i := 0; i < 3; i++ {
		if _, err := e.Match(expr, ev); err != nil {
			t.Fatalf("Match iteration %d: %v", i, err)
		}
	}

	if e.CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1 after repeated evaluation of one expression", e.CacheSize())
	}
}

func TestCheckValidatesWithoutEvent(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	if err := e.Check(`event.kind == "rule.created"`); err != nil {
		t.Errorf("Check(valid) = %v, want nil", err)
	}
	if err := e.Check(`&&&`); err == nil {
		t.Error("Check(garbage) = nil, want error")
	}
}
