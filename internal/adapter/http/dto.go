package http

import (
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type TableResponse struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Number    int       `json:"table_number"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location,omitempty"`
	Shape     string    `json:"shape"`
	Status    string    `json:"status"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newTableResponse(t *domain.Table) TableResponse {
	return TableResponse{
		ID:        t.ID,
		CompanyID: t.CompanyID,
		Number:    t.Number,
		Capacity:  t.Capacity,
		Location:  t.Location,
		Shape:     string(t.Shape),
		Status:    string(t.Status),
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type CustomerPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type ReservationResponse struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	TableID   int64           `json:"table_id"`
	Customer  CustomerPayload `json:"customer"`
	PartySize int             `json:"party_size"`
	Date      string          `json:"date"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Status    string          `json:"status"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newReservationResponse(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		TableID:   r.TableID,
		Customer: CustomerPayload{
			Name:  r.Customer.Name,
			Phone: r.Customer.Phone,
			Email: r.Customer.Email,
		},
		PartySize: r.PartySize,
		Date:      r.Date.Format(domain.DateLayout),
		Start:     r.Start.String(),
		End:       r.End.String(),
		Status:    string(r.Status),
		Source:    r.Source,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type OrderItemPayload struct {
	ID         int64  `json:"id,omitempty"`
	MenuItemID *int64 `json:"menu_item_id,omitempty"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	Subtotal   int64  `json:"subtotal,omitempty"`
}

type OrderResponse struct {
	ID            int64              `json:"id"`
	Code          string             `json:"code"`
	CompanyID     int64              `json:"company_id"`
	CustomerID    *int64             `json:"customer_id,omitempty"`
	OrderType     string             `json:"order_type"`
	Status        string             `json:"status"`
	Items         []OrderItemPayload `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	Tax           int64              `json:"tax"`
	TaxRate       string             `json:"tax_rate"`
	DeliveryFee   int64              `json:"delivery_fee"`
	Total         int64              `json:"total"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemPayload, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemPayload{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Subtotal:   item.Subtotal,
		}
	}
	return OrderResponse{
		ID:            o.ID,
		Code:          o.Code,
		CompanyID:     o.CompanyID,
		CustomerID:    o.CustomerID,
		OrderType:     string(o.Type),
		Status:        string(o.Status),
		Items:         items,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		TaxRate:       o.TaxRate.String(),
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		CompletedAt:   o.CompletedAt,
	}
}

type TimelineEventResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy *int64    `json:"changed_by,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

func newTimelineEventResponse(e *domain.OrderTimelineEvent) TimelineEventResponse {
	return TimelineEventResponse{
		ID:        e.ID,
		OrderID:   e.OrderID,
		Status:    string(e.Status),
		ChangedBy: e.Actor,
		Notes:     e.Notes,
		ChangedAt: e.CreatedAt,
	}
}
