package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindConflict
	KindUnavailable
)

// Stable machine-readable codes. Clients branch on these, never on message
// text, which is free to change.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidLevel         = "invalid_level"
	CodeInvalidTier          = "invalid_tier"
	CodeInvalidPlan          = "invalid_plan"
	CodeInvalidFilter        = "invalid_filter"
	CodePermissionDenied     = "permission_denied"
	CodeSubscriptionRequired = "subscription_required"
	CodeAllianceNotFound     = "alliance_not_found"
	CodeSeasonNotFound       = "season_not_found"
	CodeMemberNotFound       = "member_not_found"
	CodeRuleNotFound         = "rule_not_found"
	CodeOwnershipNotFound    = "ownership_not_found"
	CodeInviteNotFound       = "invite_not_found"
	CodeCollaboratorNotFound = "collaborator_not_found"
	CodeEntryNotFound        = "entry_not_found"
	CodeDuplicateTier        = "duplicate_tier"
	CodeDuplicateSlug        = "duplicate_slug"
	CodeCoordinateTaken      = "coordinate_taken"
	CodeRuleReferenced       = "rule_referenced"
	CodeInviteAlreadyPending = "invite_already_pending"
	CodeAlreadyMember        = "already_member"
	CodeInviteClosed         = "invite_closed"
	CodeSeasonClosed         = "season_closed"
	CodeOwnerImmutable       = "owner_immutable"
	CodeRateLimited          = "rate_limited"
	CodeInternal             = "internal_error"
)

// Error is a classified service error carrying a stable code
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a 400-class error
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Permission creates a 403-class error
func Permission(code, message string) *Error {
	return &Error{Kind: KindPermission, Code: code, Message: message}
}

// NotFound creates a 404-class error
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Conflict creates a 409-class error
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Unavailable creates a 503-class error
func Unavailable(code, message string) *Error {
	return &Error{Kind: KindUnavailable, Code: code, Message: message}
}

// Internal wraps an unexpected error. The cause is kept for logs; clients see
// only the generic code.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal error", Err: err}
}

// Wrap attaches a cause to a classified error
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// CodeOf extracts the stable code from any error
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// KindOf extracts the kind from any error
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf extracts the client-facing message from any error
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

// HTTPStatus maps an error to its HTTP status
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
