package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a restaurant order entity. Money fields are minor
// currency units.
type Order struct {
	ID            int64
	Code          string
	CompanyID     int64
	CustomerID    *int64
	Type          OrderType
	Status        Status
	Items         []OrderItem
	Subtotal      int64
	Tax           int64
	DeliveryFee   int64
	Total         int64
	TaxRate       decimal.Decimal
	PaymentMethod string
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time

	events []*OrderTimelineEvent
}

// OrderItem represents an item in an order. Name and Price are captured when
// the item is added and never follow later menu changes.
type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID *int64
	Name       string
	Price      int64
	Quantity   int
	Subtotal   int64
}

// OrderTimelineEvent is one entry of the append-only status history of an order
type OrderTimelineEvent struct {
	ID        int64
	OrderID   int64
	Status    Status
	Actor     *int64
	Notes     *string
	CreatedAt time.Time
}

// DeliveryFeePolicy returns the delivery fee charged for an order type.
type DeliveryFeePolicy func(OrderType) int64

// FlatDeliveryFee charges fee on delivery orders and nothing otherwise.
func FlatDeliveryFee(fee int64) DeliveryFeePolicy {
	return func(t OrderType) int64 {
		if t == OrderTypeDelivery {
			return fee
		}
		return 0
	}
}

// OrderCode renders the human readable code of the seq-th order.
func OrderCode(seq int64, at time.Time) string {
	return fmt.Sprintf("ORD_%s_%06d", at.UTC().Format("20060102"), seq)
}

// MaxAmount is the largest money value, in minor units, an order may carry.
const MaxAmount int64 = 1<<53 - 1

// ComputeTax rounds subtotal*rate half-up to whole minor units.
func ComputeTax(subtotal int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()
}

// checkAmounts fails with ErrAmountTooLarge when the total of items, tax and
// fee would not fit in MaxAmount.
func checkAmounts(items []OrderItem, taxRate decimal.Decimal, deliveryFee int64) error {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromInt(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	total := subtotal.
		Add(subtotal.Mul(taxRate).Round(0)).
		Add(decimal.NewFromInt(deliveryFee))
	if total.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return ErrAmountTooLarge
	}
	return nil
}

func NewOrderItem(menuItemID *int64, name string, price int64, quantity int) (OrderItem, error) {
	item := OrderItem{
		MenuItemID: menuItemID,
		Name:       name,
		Price:      price,
		Quantity:   quantity,
	}
	if err := item.Validate(); err != nil {
		return OrderItem{}, err
	}
	item.Subtotal = item.Price * int64(item.Quantity)
	return item, nil
}

func (i OrderItem) Validate() error {
	if i.Name == "" {
		return ErrInvalidItemName
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if i.Price < 0 {
		return ErrInvalidPrice
	}
	if i.Price > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// NewOrder creates a new order with totals computed from items and the
// initial timeline event pending
func NewOrder(companyID int64, customerID *int64, orderType OrderType, items []OrderItem, taxRate decimal.Decimal, fees DeliveryFeePolicy, paymentMethod string, actor *int64) (*Order, error) {
	if !orderType.Valid() {
		return nil, ErrInvalidOrderType
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if taxRate.IsNegative() {
		return nil, ErrInvalidTaxRate
	}

	lines := make([]OrderItem, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		lines[i] = item
	}

	var fee int64
	if fees != nil {
		fee = fees(orderType)
	}
	if err := checkAmounts(lines, taxRate, fee); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &Order{
		CompanyID:     companyID,
		CustomerID:    customerID,
		Type:          orderType,
		Status:        StatusCreated,
		Items:         lines,
		TaxRate:       taxRate,
		PaymentMethod: paymentMethod,
		PaymentStatus: PaymentPending,
		DeliveryFee:   fee,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	order.Recalculate()
	order.record(StatusCreated, actor, nil, now)

	return order, nil
}

// Recalculate derives every total from the line items.
func (o *Order) Recalculate() {
	var subtotal int64
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].Price * int64(o.Items[i].Quantity)
		subtotal += o.Items[i].Subtotal
	}
	o.Subtotal = subtotal
	o.Tax = ComputeTax(subtotal, o.TaxRate)
	o.Total = o.Subtotal + o.Tax + o.DeliveryFee
}

// Consistent reports whether the stored totals match the line items.
func (o *Order) Consistent() bool {
	var subtotal int64
	for _, item := range o.Items {
		if item.Subtotal != item.Price*int64(item.Quantity) {
			return false
		}
		subtotal += item.Subtotal
	}
	return o.Subtotal == subtotal &&
		o.Tax == ComputeTax(subtotal, o.TaxRate) &&
		o.Total == o.Subtotal+o.Tax+o.DeliveryFee
}

func (o *Order) AddItem(item OrderItem) error {
	if o.Status != StatusCreated {
		return ErrOrderLocked
	}
	if err := item.Validate(); err != nil {
		return err
	}
	n := len(o.Items)
	if err := checkAmounts(append(o.Items[:n:n], item), o.TaxRate, o.DeliveryFee); err != nil {
		return err
	}

	item.ID = 0
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.Recalculate()
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveItem drops a persisted line item. The last item cannot be removed.
func (o *Order) RemoveItem(itemID int64) error {
	if o.Status != StatusCreated {
		return ErrOrderLocked
	}

	idx := -1
	for i, item := range o.Items {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrOrderItemNotFound
	}
	if len(o.Items) == 1 {
		return ErrEmptyOrder
	}

	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.Recalculate()
	o.UpdatedAt = time.Now().UTC()
	return nil
}

var orderTransitions = map[Status][]Status{
	StatusCreated:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo checks if the order can transition to the new status
func (o *Order) CanTransitionTo(newStatus Status) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the order to a new status and records the
// timeline event for it
func (o *Order) TransitionTo(newStatus Status, actor *int64, notes *string) error {
	if o.Status.Terminal() {
		return fmt.Errorf("order %s is %s: %w", o.Code, o.Status, ErrOrderClosed)
	}
	if !newStatus.Valid() {
		return ErrInvalidStatus
	}
	if !o.CanTransitionTo(newStatus) {
		return fmt.Errorf("%s -> %s: %w", o.Status, newStatus, ErrInvalidTransition)
	}

	now := time.Now().UTC()
	o.Status = newStatus
	o.UpdatedAt = now
	if newStatus == StatusCompleted {
		o.CompletedAt = &now
	}
	o.record(newStatus, actor, notes, now)
	return nil
}

func (o *Order) SetPayment(method string, status PaymentStatus) error {
	if !status.Valid() {
		return ErrInvalidPayment
	}
	if o.Status == StatusCancelled {
		return fmt.Errorf("order %s is cancelled: %w", o.Code, ErrOrderClosed)
	}
	if method != "" {
		o.PaymentMethod = method
	}
	o.PaymentStatus = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (o *Order) record(status Status, actor *int64, notes *string, at time.Time) {
	o.events = append(o.events, &OrderTimelineEvent{
		OrderID:   o.ID,
		Status:    status,
		Actor:     actor,
		Notes:     notes,
		CreatedAt: at,
	})
}

// PendingEvents returns the timeline events recorded since the order was
// loaded and forgets them. Stores persist them with the order.
func (o *Order) PendingEvents() []*OrderTimelineEvent {
	events := o.events
	o.events = nil
	for _, e := range events {
		e.OrderID = o.ID
	}
	return events
}

func NewTimelineEvent(orderID int64, status Status, actor *int64, notes *string) (*OrderTimelineEvent, error) {
	if orderID <= 0 || status == "" {
		return nil, ErrInvalidTimelineEvent
	}
	return &OrderTimelineEvent{
		OrderID:   orderID,
		Status:    status,
		Actor:     actor,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}, nil
}
