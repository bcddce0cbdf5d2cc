package domain

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrCapacityExceeded     = errors.New("party size exceeds table capacity")
	ErrInvalidTimeRange     = errors.New("reservation end must be after start")
	ErrInvalidPartySize     = errors.New("party size must be at least 1")
	ErrInvalidCapacity      = errors.New("table capacity must be at least 1")
	ErrInvalidTableNumber   = errors.New("table number must be at least 1")
	ErrInvalidShape         = errors.New("invalid table shape")
	ErrInvalidTableStatus   = errors.New("invalid table status")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("item quantity must be at least 1")
	ErrInvalidPrice         = errors.New("item price must not be negative")
	ErrAmountTooLarge       = errors.New("order amount is too large")
	ErrInvalidItemName      = errors.New("item name is required")
	ErrInvalidOrderType     = errors.New("invalid order type")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidPayment       = errors.New("invalid payment status")
	ErrInvalidTaxRate       = errors.New("tax rate must not be negative")
	ErrInvalidTimelineEvent = errors.New("timeline event requires order id and status")
)

// Conflict errors
var (
	ErrSlotConflict         = errors.New("table is already booked for that time")
	ErrDuplicateTableNumber = errors.New("table number already exists")
)

// State errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderClosed       = errors.New("order is closed")
	ErrReservationClosed = errors.New("reservation is closed")
	ErrOrderLocked       = errors.New("order items can only change while the order is created")
	ErrTableInUse        = errors.New("table has active reservations")
	ErrTableInactive     = errors.New("table is inactive")
)

// Lookup errors
var (
	ErrTableNotFound       = errors.New("table not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderItemNotFound   = errors.New("order item not found")
)

var ErrInfrastructure = errors.New("storage unavailable")

// SlotConflictError carries the reservation that blocks the requested slot.
type SlotConflictError struct {
	ReservationID int64
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%s (reservation %d)", ErrSlotConflict.Error(), e.ReservationID)
}

func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}

// InfrastructureError wraps a storage or broker failure. Callers may retry these.
type InfrastructureError struct {
	Op  string
	Err error
}

func NewInfrastructureError(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrInfrastructure.Error(), e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func (e *InfrastructureError) Is(target error) bool {
	return target == ErrInfrastructure
}

type ErrorKind string

const (
	KindUnknown        ErrorKind = "unknown"
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindState          ErrorKind = "state"
	KindNotFound       ErrorKind = "not_found"
	KindInfrastructure ErrorKind = "infrastructure"
)

var errorKinds = []struct {
	kind ErrorKind
	errs []error
}{
	{KindConflict, []error{ErrSlotConflict, ErrDuplicateTableNumber}},
	{KindState, []error{ErrInvalidTransition, ErrOrderClosed, ErrReservationClosed, ErrOrderLocked, ErrTableInUse, ErrTableInactive}},
	{KindNotFound, []error{ErrTableNotFound, ErrReservationNotFound, ErrOrderNotFound, ErrOrderItemNotFound}},
	{KindInfrastructure, []error{ErrInfrastructure}},
	{KindValidation, []error{
		ErrCapacityExceeded, ErrInvalidTimeRange, ErrInvalidPartySize, ErrInvalidCapacity,
		ErrInvalidTableNumber, ErrInvalidShape, ErrInvalidTableStatus, ErrEmptyOrder,
		ErrInvalidQuantity, ErrInvalidPrice, ErrInvalidItemName, ErrInvalidOrderType,
		ErrInvalidStatus, ErrInvalidPayment, ErrInvalidTaxRate, ErrInvalidTimelineEvent,
		ErrAmountTooLarge,
	}},
}

// KindOf classifies err into one of the error kinds.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, group := range errorKinds {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.kind
			}
		}
	}
	return KindUnknown
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return KindOf(err) == KindInfrastructure
}
