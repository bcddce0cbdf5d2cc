package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

// Repository interfaces (adapter/postgres, adapter/memory).
// Every mutating call is all-or-nothing: when the callback or the store fails
// nothing is written.

type TableRepository interface {
	Create(ctx context.Context, table *domain.Table) error
	FindByID(ctx context.Context, id int64) (*domain.Table, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*domain.Table, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TableStatus) (*domain.Table, error)
	// Deactivate locks the table, loads its holding reservations dated on or
	// after from and lets apply decide before the table is saved.
	Deactivate(ctx context.Context, id int64, from time.Time, apply func(*domain.Table, []*domain.Reservation) error) (*domain.Table, error)
}

type ReservationRepository interface {
	// CreateWithNoOverlap locks the table, loads its holding reservations on
	// date and inserts whatever build returns, as one atomic unit.
	CreateWithNoOverlap(ctx context.Context, tableID int64, date time.Time, build func(*domain.Table, []*domain.Reservation) (*domain.Reservation, error)) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListByTableAndDate(ctx context.Context, tableID int64, date time.Time) ([]*domain.Reservation, error)
	ListHoldingByCompanyAndDate(ctx context.Context, companyID int64, date time.Time) ([]*domain.Reservation, error)
	Update(ctx context.Context, id int64, apply func(*domain.Reservation) error) (*domain.Reservation, error)
}

type OrderRepository interface {
	// Create assigns ids and the order code and stores the order, its items
	// and its pending timeline events.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	// Update locks the order, applies the mutation and persists items, totals
	// and pending timeline events together.
	Update(ctx context.Context, id int64, apply func(*domain.Order) error) (*domain.Order, error)
}

type TimelineRepository interface {
	Append(ctx context.Context, event *domain.OrderTimelineEvent) error
	ListForOrder(ctx context.Context, orderID int64) ([]*domain.OrderTimelineEvent, error)
}
