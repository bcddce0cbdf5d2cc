package domain

import (
	"fmt"
	"time"
)

type Customer struct {
	Name  string
	Phone string
	Email string
}

// Reservation holds a table for a party over a slot
type Reservation struct {
	ID        int64
	CompanyID int64
	TableID   int64
	Customer  Customer
	PartySize int
	Date      time.Time
	Start     ClockTime
	End       ClockTime
	Status    ReservationStatus
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Reservation) Slot() Slot {
	return Slot{Date: r.Date, Start: r.Start, End: r.End}
}

// NewReservation validates the request against the table and the table's
// existing reservations and returns a confirmed reservation.
// The caller must hold whatever lock makes existing authoritative.
func NewReservation(table *Table, slot Slot, partySize int, customer Customer, source string, existing []*Reservation) (*Reservation, error) {
	if !table.Active {
		return nil, ErrTableInactive
	}
	if partySize < 1 {
		return nil, ErrInvalidPartySize
	}
	if partySize > table.Capacity {
		return nil, ErrCapacityExceeded
	}
	if slot.End <= slot.Start {
		return nil, ErrInvalidTimeRange
	}
	if conflict := FindConflict(existing, table.ID, slot); conflict != nil {
		return nil, &SlotConflictError{ReservationID: conflict.ID}
	}

	if source == "" {
		source = "staff"
	}
	now := time.Now().UTC()
	return &Reservation{
		CompanyID: table.CompanyID,
		TableID:   table.ID,
		Customer:  customer,
		PartySize: partySize,
		Date:      slot.Date,
		Start:     slot.Start,
		End:       slot.End,
		Status:    ReservationConfirmed,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FindConflict returns the first holding reservation of tableID overlapping slot.
func FindConflict(reservations []*Reservation, tableID int64, slot Slot) *Reservation {
	for _, r := range reservations {
		if r.TableID != tableID || !r.Status.Holding() {
			continue
		}
		if r.Slot().Overlaps(slot) {
			return r
		}
	}
	return nil
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationConfirmed: {ReservationSeated, ReservationCancelled, ReservationNoShow},
	ReservationSeated:    {ReservationCompleted},
}

// CanTransitionTo checks if the reservation can move to the new status
func (r *Reservation) CanTransitionTo(newStatus ReservationStatus) bool {
	for _, s := range reservationTransitions[r.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo moves the reservation along its state machine
func (r *Reservation) TransitionTo(newStatus ReservationStatus) error {
	if r.Status.Terminal() {
		return fmt.Errorf("reservation %d is %s: %w", r.ID, r.Status, ErrReservationClosed)
	}
	if !newStatus.Valid() {
		return ErrInvalidStatus
	}
	if !r.CanTransitionTo(newStatus) {
		return fmt.Errorf("%s -> %s: %w", r.Status, newStatus, ErrInvalidTransition)
	}

	r.Status = newStatus
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// TableStatusAfter returns the advisory table status implied by a reservation
// entering status, or false when the table should be left alone.
func TableStatusAfter(status ReservationStatus) (TableStatus, bool) {
	switch status {
	case ReservationSeated:
		return TableOccupied, true
	case ReservationCompleted:
		return TableAvailable, true
	}
	return "", false
}
