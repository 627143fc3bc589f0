// Package apperr defines the error taxonomy shared by stores, the
// reconciler and HTTP handlers.
//
// Each sentinel belongs to exactly one Kind. Callers wrap sentinels with
// fmt.Errorf("...: %w", ErrX) and classify with KindOf, which walks the
// wrap chain using errors.Is.
package apperr

import "errors"

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindUnknown       Kind = iota
	KindValidation         // malformed input; never retried
	KindNotFound           // referenced record does not exist
	KindConflict           // already done; safe to ignore or retry
	KindAuthorization      // missing or invalid credentials
	KindForbidden          // authenticated but not allowed
	KindPrecondition       // rejected by a business rule; no state written
	KindUpstream           // gateway or store unavailable; retryable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindPrecondition:
		return "precondition"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

// Error is a sentinel with a stable machine-readable code.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// Validation
var (
	ErrInvalidIdentifier = newErr(KindValidation, "invalid_identifier", "invalid identifier")
	ErrMissingField      = newErr(KindValidation, "missing_field", "missing required field")
	ErrInvalidField      = newErr(KindValidation, "invalid_field", "invalid field value")
	ErrInvalidMetadata   = newErr(KindValidation, "invalid_metadata", "transaction metadata is missing clubId or clubName")
)

// Not found
var ErrNotFound = newErr(KindNotFound, "not_found", "not found")

// Conflict
var (
	ErrAlreadyMember         = newErr(KindConflict, "already_member", "user already has an active membership for this club")
	ErrDuplicateRegistration = newErr(KindConflict, "duplicate_registration", "user is already registered for this event")
	ErrDuplicateTransaction  = newErr(KindConflict, "duplicate_transaction", "transaction already reconciled")
	ErrDuplicateEmail        = newErr(KindConflict, "duplicate_email", "User already exist")
)

// Authorization
var (
	ErrUnauthenticated = newErr(KindAuthorization, "unauthorized", "unauthorized access")
	ErrForbidden       = newErr(KindForbidden, "forbidden", "forbidden access")
)

// Precondition
var (
	ErrClubNotApproved    = newErr(KindPrecondition, "club_not_approved", "club is not approved")
	ErrMembershipRequired = newErr(KindPrecondition, "membership_required", "an active membership is required to register")
	ErrPaymentRequired    = newErr(KindPrecondition, "payment_required", "this club charges a membership fee; use checkout")
	ErrNoFeeRequired      = newErr(KindPrecondition, "no_fee_required", "this club is free to join")
)

// Upstream
var (
	ErrGatewayUnavailable = newErr(KindUpstream, "gateway_unavailable", "payment gateway unavailable")
	ErrStoreUnavailable   = newErr(KindUpstream, "store_unavailable", "store unavailable")
)

// KindOf returns the Kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return KindUnknown
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsRetryable reports whether the caller may retry the same request.
func IsRetryable(err error) bool {
	return KindOf(err) == KindUpstream
}
