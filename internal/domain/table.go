package domain

import (
	"iter"
	"time"
)

// Table represents a dining table owned by a company
type Table struct {
	ID        int64
	CompanyID int64
	Number    int
	Capacity  int
	Location  string
	Shape     TableShape
	Status    TableStatus
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTable creates an active, available table after validating its attributes
func NewTable(companyID int64, number, capacity int, location string, shape TableShape) (*Table, error) {
	if number < 1 {
		return nil, ErrInvalidTableNumber
	}
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if shape == "" {
		shape = ShapeRectangle
	}
	if !shape.Valid() {
		return nil, ErrInvalidShape
	}

	now := time.Now().UTC()
	return &Table{
		CompanyID: companyID,
		Number:    number,
		Capacity:  capacity,
		Location:  location,
		Shape:     shape,
		Status:    TableAvailable,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (t *Table) SetStatus(status TableStatus) error {
	if !status.Valid() {
		return ErrInvalidTableStatus
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Deactivate fails with ErrTableInUse while any holding reservation of the
// table has not ended yet at now.
func (t *Table) Deactivate(reservations []*Reservation, now time.Time) error {
	for _, r := range reservations {
		if r.TableID == t.ID && r.Status.Holding() && r.Slot().EndsAfter(now) {
			return ErrTableInUse
		}
	}
	t.Active = false
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Seats reports whether the table can host partySize guests.
func (t *Table) Seats(partySize int) bool {
	return t.Active && t.Capacity >= partySize
}

// AvailableTables lazily yields the tables that seat partySize and have no
// holding reservation overlapping slot. The sequence can be ranged over any
// number of times and always yields the same tables in the same order.
func AvailableTables(tables []*Table, reservations []*Reservation, slot Slot, partySize int) iter.Seq[*Table] {
	return func(yield func(*Table) bool) {
		for _, t := range tables {
			if !t.Seats(partySize) {
				continue
			}
			if FindConflict(reservations, t.ID, slot) != nil {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}
