package services

import "fmt"

// The service layer surfaces a closed set of error kinds. Handlers map each
// kind to an HTTP status and a stable error code; anything outside this set
// is treated as an unexpected failure and never leaks internals.

// ForbiddenError means the user has no membership on the timeline or the
// membership ranks below the required role.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// ConflictError covers name collisions, optimistic-lock mismatches and
// invalid status transitions.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError means the referenced entity does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// LastAdminError means the operation would have left a non-empty timeline
// without any Admin. The mutation was rejected before any write.
type LastAdminError struct {
	Message string
}

func (e *LastAdminError) Error() string { return e.Message }

// ValidationError means the input failed a domain check (bad role name,
// malformed date range, short password).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invitation error codes.
const (
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvitationExpired   = "INVITATION_EXPIRED"
	CodeInvitationCancelled = "INVITATION_CANCELLED"
	CodeEmailMismatch       = "EMAIL_MISMATCH"
	CodeAlreadyMember       = "ALREADY_MEMBER"
	CodeEmailSendFailed     = "EMAIL_SEND_FAILED"
	CodeValidationError     = "VALIDATION_ERROR"
)

// InvitationError carries one of the invitation sub-codes above.
type InvitationError struct {
	Code    string
	Message string
}

func (e *InvitationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
