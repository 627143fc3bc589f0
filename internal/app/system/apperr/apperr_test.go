package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("boom"), KindUnknown},
		{"sentinel", ErrAlreadyMember, KindConflict},
		{"wrapped once", fmt.Errorf("join: %w", ErrMembershipRequired), KindPrecondition},
		{"wrapped twice", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrInvalidIdentifier)), KindValidation},
		{"double wrap keeps first", fmt.Errorf("%w: %w", ErrGatewayUnavailable, errors.New("timeout")), KindUpstream},
		{"not found", fmt.Errorf("club x: %w", ErrNotFound), KindNotFound},
		{"forbidden", ErrForbidden, KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("retrieve: %w", ErrGatewayUnavailable)) {
		t.Error("gateway unavailable should be retryable")
	}
	if IsRetryable(ErrInvalidMetadata) {
		t.Error("invalid metadata should not be retryable")
	}
	if IsRetryable(ErrDuplicateTransaction) {
		t.Error("duplicate transaction should not be retryable")
	}
}

func TestErrorsIsMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("register: %w", ErrDuplicateRegistration)
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Error("errors.Is should match the wrapped sentinel")
	}
	if errors.Is(err, ErrAlreadyMember) {
		t.Error("errors.Is should not match a different sentinel")
	}
	if e := As(err); e == nil || e.Code != "duplicate_registration" {
		t.Errorf("As() = %v, want code duplicate_registration", e)
	}
}
