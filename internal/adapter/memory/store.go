// Package memory keeps every entity in process memory behind one mutex.
// It backs the "memory" store mode and the service tests; each callback-style
// repository method runs under the lock, which gives the same all-or-nothing
// behaviour as a postgres transaction.
package memory

import (
	"sort"
	"sync"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type Store struct {
	mu sync.Mutex

	tables       map[int64]domain.Table
	reservations map[int64]domain.Reservation
	orders       map[int64]domain.Order
	timeline     map[int64][]domain.OrderTimelineEvent

	nextTableID       int64
	nextReservationID int64
	nextOrderID       int64
	nextItemID        int64
	nextEventID       int64
}

func NewStore() *Store {
	return &Store{
		tables:       make(map[int64]domain.Table),
		reservations: make(map[int64]domain.Reservation),
		orders:       make(map[int64]domain.Order),
		timeline:     make(map[int64][]domain.OrderTimelineEvent),
	}
}

func (s *Store) Tables() interfaces.TableRepository { return &tableRepository{s: s} }

func (s *Store) Reservations() interfaces.ReservationRepository {
	return &reservationRepository{s: s}
}

func (s *Store) Orders() interfaces.OrderRepository { return &orderRepository{s: s} }

func (s *Store) Timeline() interfaces.TimelineRepository { return &timelineRepository{s: s} }

// holdingLocked returns copies of the holding reservations
// matching keep, sorted by start.
func (s *Store) holdingLocked(keep func(domain.Reservation) bool) []*domain.Reservation {
	var out []*domain.Reservation
	for _, r := range s.reservations {
		if r.Status.Holding() && keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) appendEventsLocked(orderID int64, events []*domain.OrderTimelineEvent) {
	for _, e := range events {
		s.nextEventID++
		e.ID = s.nextEventID
		e.OrderID = orderID
		s.timeline[orderID] = append(s.timeline[orderID], *e)
	}
}

func copyOrder(o domain.Order) *domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o
}
