package memory

import (
	"context"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type orderRepository struct {
	s *Store
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	order.Code = domain.OrderCode(order.ID, order.CreatedAt)
	r.assignItemIDsLocked(order)

	r.s.appendEventsLocked(order.ID, order.PendingEvents())
	r.s.orders[order.ID] = *copyOrder(*order)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *orderRepository) Update(ctx context.Context, id int64, apply func(*domain.Order) error) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	order := copyOrder(stored)
	if err := apply(order); err != nil {
		return nil, err
	}

	r.assignItemIDsLocked(order)
	r.s.appendEventsLocked(order.ID, order.PendingEvents())
	r.s.orders[id] = *copyOrder(*order)
	return order, nil
}

func (r *orderRepository) assignItemIDsLocked(order *domain.Order) {
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if order.Items[i].ID == 0 {
			r.s.nextItemID++
			order.Items[i].ID = r.s.nextItemID
		}
	}
}

type timelineRepository struct {
	s *Store
}

func (r *timelineRepository) Append(ctx context.Context, event *domain.OrderTimelineEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[event.OrderID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.s.appendEventsLocked(event.OrderID, []*domain.OrderTimelineEvent{event})
	return nil
}

// ListForOrder returns events in insertion order, which is timestamp order
// because every append happens under the store lock.
func (r *timelineRepository) ListForOrder(ctx context.Context, orderID int64) ([]*domain.OrderTimelineEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[orderID]; !ok {
		return nil, domain.ErrOrderNotFound
	}
	events := r.s.timeline[orderID]
	out := make([]*domain.OrderTimelineEvent, len(events))
	for i := range events {
		e := events[i]
		out[i] = &e
	}
	return out, nil
}
