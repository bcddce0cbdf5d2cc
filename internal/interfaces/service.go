package interfaces

import (
	"context"
	"iter"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

// Commands
type RegisterTableCommand struct {
	CompanyID int64
	Number    int
	Capacity  int
	Location  string
	Shape     domain.TableShape
}

type RequestReservationCommand struct {
	TableID   int64
	Date      time.Time
	Start     domain.ClockTime
	End       domain.ClockTime
	PartySize int
	Customer  domain.Customer
	Source    string
}

type AvailabilityQuery struct {
	CompanyID int64
	Date      time.Time
	Start     domain.ClockTime
	End       domain.ClockTime
	PartySize int
}

type CreateOrderCommand struct {
	CompanyID     int64
	CustomerID    *int64
	OrderType     domain.OrderType
	Items         []CreateOrderItemCommand
	PaymentMethod string
	Actor         *int64
}

type CreateOrderItemCommand struct {
	MenuItemID *int64
	Name       string
	Quantity   int
	Price      int64
}

type TransitionOrderCommand struct {
	OrderID int64
	Status  domain.Status
	Actor   *int64
	Notes   *string
}

// Service interfaces (business logic)
type RegistryService interface {
	RegisterTable(ctx context.Context, cmd RegisterTableCommand) (*domain.Table, error)
	SetStatus(ctx context.Context, tableID int64, status domain.TableStatus) (*domain.Table, error)
	Deactivate(ctx context.Context, tableID int64) (*domain.Table, error)
	GetTable(ctx context.Context, tableID int64) (*domain.Table, error)
	ListTables(ctx context.Context, companyID int64) ([]*domain.Table, error)
}

type ReservationService interface {
	RequestReservation(ctx context.Context, cmd RequestReservationCommand) (*domain.Reservation, error)
	Transition(ctx context.Context, reservationID int64, status domain.ReservationStatus) (*domain.Reservation, error)
	FindAvailableTables(ctx context.Context, q AvailabilityQuery) (iter.Seq[*domain.Table], error)
	GetReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error)
	ListForTable(ctx context.Context, tableID int64, date time.Time) ([]*domain.Reservation, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	AddItem(ctx context.Context, orderID int64, item CreateOrderItemCommand) (*domain.Order, error)
	RemoveItem(ctx context.Context, orderID, itemID int64) (*domain.Order, error)
	TransitionStatus(ctx context.Context, cmd TransitionOrderCommand) (*domain.Order, error)
	UpdatePayment(ctx context.Context, orderID int64, method string, status domain.PaymentStatus) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
}

type TimelineService interface {
	Append(ctx context.Context, orderID int64, status domain.Status, actor *int64, notes *string) (*domain.OrderTimelineEvent, error)
	ListForOrder(ctx context.Context, orderID int64) ([]*domain.OrderTimelineEvent, error)
}
