package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		capacity int
		shape    TableShape
		wantErr  error
	}{
		{"defaults to rectangle", 1, 4, "", nil},
		{"zero number", 0, 4, ShapeSquare, ErrInvalidTableNumber},
		{"zero capacity", 1, 0, ShapeSquare, ErrInvalidCapacity},
		{"unknown shape", 1, 4, TableShape("hexagon"), ErrInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(1, tt.number, tt.capacity, "terrace", tt.shape)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (table.Shape != ShapeRectangle || !table.Active || table.Status != TableAvailable) {
				t.Errorf("unexpected table %+v", table)
			}
		})
	}
}

func TestTableDeactivate(t *testing.T) {
	table := testTable(3, 6)
	res := bookedReservation(t, 1, table, "18:00", "20:00", ReservationConfirmed)

	before := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if err := table.Deactivate([]*Reservation{res}, before); !errors.Is(err, ErrTableInUse) {
		t.Fatalf("err = %v, want ErrTableInUse", err)
	}
	if !table.Active {
		t.Fatalf("table deactivated despite failure")
	}

	after := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	if err := table.Deactivate([]*Reservation{res}, after); err != nil {
		t.Fatalf("past reservation blocks deactivation: %v", err)
	}
	if table.Active {
		t.Errorf("table still active")
	}
}

func TestAvailableTables(t *testing.T) {
	small := testTable(1, 2)
	medium := testTable(2, 4)
	large := testTable(3, 6)
	closed := testTable(4, 8)
	closed.Active = false

	busy := bookedReservation(t, 1, medium, "18:00", "20:00", ReservationSeated)
	slot := busy.Slot()

	seq := AvailableTables([]*Table{small, medium, large, closed}, []*Reservation{busy}, slot, 3)

	collect := func() []int64 {
		var ids []int64
		for table := range seq {
			ids = append(ids, table.ID)
		}
		return ids
	}

	first := collect()
	if len(first) != 1 || first[0] != large.ID {
		t.Fatalf("available = %v, want [%d]", first, large.ID)
	}
	second := collect()
	if len(second) != len(first) || second[0] != first[0] {
		t.Errorf("sequence is not restartable: %v then %v", first, second)
	}

	// Stopping early must not panic.
	for range AvailableTables([]*Table{small, large}, nil, slot, 1) {
		break
	}
}
