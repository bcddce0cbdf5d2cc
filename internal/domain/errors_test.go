package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrCapacityExceeded, KindValidation},
		{fmt.Errorf("items[0]: %w", ErrInvalidQuantity), KindValidation},
		{&SlotConflictError{ReservationID: 9}, KindConflict},
		{ErrDuplicateTableNumber, KindConflict},
		{fmt.Errorf("order X is completed: %w", ErrOrderClosed), KindState},
		{ErrTableInUse, KindState},
		{ErrOrderNotFound, KindNotFound},
		{NewInfrastructureError("insert order", errors.New("connection refused")), KindInfrastructure},
		{errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestInfrastructureErrorIsRetryable(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInfrastructureError("commit reservation", cause)

	if !errors.Is(err, cause) {
		t.Errorf("cause not unwrapped")
	}
	if !Retryable(err) {
		t.Errorf("infrastructure error should be retryable")
	}
	if Retryable(ErrSlotConflict) {
		t.Errorf("conflict must not be retried blindly")
	}
}
