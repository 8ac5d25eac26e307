package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation(CodeInvalidRequest, "bad input"), http.StatusBadRequest},
		{"permission", Permission(CodePermissionDenied, "not allowed"), http.StatusForbidden},
		{"not found", NotFound(CodeAllianceNotFound, "no such alliance"), http.StatusNotFound},
		{"conflict", Conflict(CodeDuplicateTier, "tier exists"), http.StatusConflict},
		{"unavailable", Unavailable(CodeInternal, "backend down"), http.StatusServiceUnavailable},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCodeOfSurvivesWrapping(t *testing.T) {
	inner := Conflict(CodeInviteAlreadyPending, "invite already pending")
	wrapped := fmt.Errorf("inviting collaborator: %w", inner)

	if got := CodeOf(wrapped); got != CodeInviteAlreadyPending {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeInviteAlreadyPending)
	}
	if got := KindOf(wrapped); got != KindConflict {
		t.Errorf("KindOf(wrapped) = %v, want KindConflict", got)
	}
}

func TestConflictCodesAreDistinct(t *testing.T) {
	// The two invite 409s must be distinguishable without message parsing.
	pending := Conflict(CodeInviteAlreadyPending, "invite already pending")
	member := Conflict(CodeAlreadyMember, "user is already a collaborator")

	if CodeOf(pending) == CodeOf(member) {
		t.Fatal("invite conflict codes must differ")
	}
	if HTTPStatus(pending) != HTTPStatus(member) {
		t.Fatal("both invite conflicts should map to the same status")
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	if MessageOf(err) != "internal error" {
		t.Errorf("MessageOf() = %q, want generic message", MessageOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable via errors.Is for logging")
	}
}

func TestWrapKeepsClassification(t *testing.T) {
	base := NotFound(CodeSeasonNotFound, "no such season")
	withCause := base.Wrap(errors.New("no rows in result set"))

	if KindOf(withCause) != KindNotFound {
		t.Errorf("KindOf() = %v, want KindNotFound", KindOf(withCause))
	}
	if CodeOf(withCause) != CodeSeasonNotFound {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(withCause), CodeSeasonNotFound)
	}
}
