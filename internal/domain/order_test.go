package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func tenPercent() decimal.Decimal { return decimal.RequireFromString("0.10") }

func dineInOrder(t *testing.T) *Order {
	t.Helper()
	items := []OrderItem{
		{Name: "Margherita", Price: 899, Quantity: 2},
		{Name: "Lemonade", Price: 299, Quantity: 1},
	}
	o, err := NewOrder(1, nil, OrderTypeDineIn, items, tenPercent(), FlatDeliveryFee(499), "cash", nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return o
}

func TestNewOrderTotals(t *testing.T) {
	o := dineInOrder(t)

	if o.Subtotal != 2097 {
		t.Errorf("Subtotal = %d, want 2097", o.Subtotal)
	}
	if o.Tax != 210 {
		t.Errorf("Tax = %d, want 210", o.Tax)
	}
	if o.DeliveryFee != 0 {
		t.Errorf("DeliveryFee = %d, want 0 for dine in", o.DeliveryFee)
	}
	if o.Total != 2307 {
		t.Errorf("Total = %d, want 2307", o.Total)
	}
	if o.Status != StatusCreated || o.PaymentStatus != PaymentPending {
		t.Errorf("unexpected initial state %s/%s", o.Status, o.PaymentStatus)
	}

	events := o.PendingEvents()
	if len(events) != 1 || events[0].Status != StatusCreated {
		t.Fatalf("want one created event, got %+v", events)
	}
	if len(o.PendingEvents()) != 0 {
		t.Errorf("PendingEvents must drain")
	}
}

func TestNewOrderDeliveryFee(t *testing.T) {
	items := []OrderItem{{Name: "Calzone", Price: 1000, Quantity: 1}}
	o, err := NewOrder(1, nil, OrderTypeDelivery, items, tenPercent(), FlatDeliveryFee(499), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if o.DeliveryFee != 499 || o.Total != 1000+100+499 {
		t.Errorf("fee=%d total=%d", o.DeliveryFee, o.Total)
	}
	if !o.Consistent() {
		t.Errorf("order is not consistent")
	}
}

func TestNewOrderValidation(t *testing.T) {
	valid := []OrderItem{{Name: "Soup", Price: 500, Quantity: 1}}

	tests := []struct {
		name      string
		orderType OrderType
		items     []OrderItem
		rate      decimal.Decimal
		wantErr   error
	}{
		{"no items", OrderTypeTakeaway, nil, tenPercent(), ErrEmptyOrder},
		{"zero quantity", OrderTypeTakeaway, []OrderItem{{Name: "Soup", Price: 500, Quantity: 0}}, tenPercent(), ErrInvalidQuantity},
		{"negative price", OrderTypeTakeaway, []OrderItem{{Name: "Soup", Price: -1, Quantity: 1}}, tenPercent(), ErrInvalidPrice},
		{"missing name", OrderTypeTakeaway, []OrderItem{{Price: 500, Quantity: 1}}, tenPercent(), ErrInvalidItemName},
		{"unknown type", OrderType("drive_through"), valid, tenPercent(), ErrInvalidOrderType},
		{"negative tax", OrderTypeTakeaway, valid, decimal.RequireFromString("-0.01"), ErrInvalidTaxRate},
		{"huge price", OrderTypeTakeaway, []OrderItem{{Name: "Caviar", Price: 5_000_000_000_000_000_000, Quantity: 2}}, tenPercent(), ErrAmountTooLarge},
		{"huge line total", OrderTypeTakeaway, []OrderItem{{Name: "Caviar", Price: MaxAmount, Quantity: 2}}, decimal.Zero, ErrAmountTooLarge},
		{"huge subtotal", OrderTypeTakeaway, []OrderItem{
			{Name: "Caviar", Price: MaxAmount/2 + 1, Quantity: 1},
			{Name: "Truffle", Price: MaxAmount/2 + 1, Quantity: 1},
		}, decimal.Zero, ErrAmountTooLarge},
		{"tax pushes total over", OrderTypeTakeaway, []OrderItem{{Name: "Caviar", Price: MaxAmount, Quantity: 1}}, tenPercent(), ErrAmountTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(1, nil, tt.orderType, tt.items, tt.rate, nil, "", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if KindOf(err) != KindValidation {
				t.Errorf("kind = %s, want validation", KindOf(err))
			}
		})
	}
}

func TestAddItemRejectsOverflowingTotal(t *testing.T) {
	o := dineInOrder(t)
	before := o.Total

	err := o.AddItem(OrderItem{Name: "Gold leaf", Price: MaxAmount / 2, Quantity: 3})
	if !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("err = %v, want ErrAmountTooLarge", err)
	}
	if len(o.Items) != 2 || o.Total != before || !o.Consistent() {
		t.Errorf("order changed on rejected item: %+v", o)
	}
}

func TestComputeTaxRoundsHalfUp(t *testing.T) {
	tests := []struct {
		subtotal int64
		rate     string
		want     int64
	}{
		{2097, "0.10", 210},
		{2095, "0.10", 210},
		{2094, "0.10", 209},
		{1, "0.5", 1},
		{0, "0.2", 0},
		{1999, "0.0825", 165},
	}
	for _, tt := range tests {
		if got := ComputeTax(tt.subtotal, decimal.RequireFromString(tt.rate)); got != tt.want {
			t.Errorf("ComputeTax(%d, %s) = %d, want %d", tt.subtotal, tt.rate, got, tt.want)
		}
	}
}

func TestOrderItemsWhileCreated(t *testing.T) {
	o := dineInOrder(t)
	o.Items[0].ID = 1
	o.Items[1].ID = 2

	item, err := NewOrderItem(nil, "Tiramisu", 650, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.AddItem(item); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if o.Subtotal != 2097+1300 || !o.Consistent() {
		t.Errorf("after add: subtotal=%d consistent=%v", o.Subtotal, o.Consistent())
	}

	if err := o.RemoveItem(1); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if o.Subtotal != 299+1300 || !o.Consistent() {
		t.Errorf("after remove: subtotal=%d consistent=%v", o.Subtotal, o.Consistent())
	}

	if err := o.RemoveItem(99); !errors.Is(err, ErrOrderItemNotFound) {
		t.Errorf("remove unknown: err = %v", err)
	}
}

func TestRemoveLastItemKeepsOrderNonEmpty(t *testing.T) {
	o, err := NewOrder(1, nil, OrderTypeTakeaway, []OrderItem{{ID: 7, Name: "Soup", Price: 500, Quantity: 1}}, tenPercent(), nil, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.RemoveItem(7); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("err = %v, want ErrEmptyOrder", err)
	}
	if len(o.Items) != 1 {
		t.Errorf("item was removed on failure")
	}
}

func TestAddItemLockedAfterCreated(t *testing.T) {
	o := dineInOrder(t)
	if err := o.TransitionTo(StatusInProgress, nil, nil); err != nil {
		t.Fatal(err)
	}
	before := *o

	err := o.AddItem(OrderItem{Name: "Espresso", Price: 250, Quantity: 1})
	if !errors.Is(err, ErrOrderLocked) {
		t.Fatalf("err = %v, want ErrOrderLocked", err)
	}
	if o.Subtotal != before.Subtotal || o.Tax != before.Tax || o.Total != before.Total || len(o.Items) != len(before.Items) {
		t.Errorf("totals changed on locked order")
	}
	if err := o.RemoveItem(o.Items[0].ID); !errors.Is(err, ErrOrderLocked) {
		t.Errorf("remove on locked order: err = %v", err)
	}
}

func TestOrderTransitions(t *testing.T) {
	actor := int64(42)
	notes := "oven is free"

	o := dineInOrder(t)
	o.PendingEvents()

	if err := o.TransitionTo(StatusInProgress, &actor, &notes); err != nil {
		t.Fatalf("created -> in_progress: %v", err)
	}
	if err := o.TransitionTo(StatusCompleted, &actor, nil); err != nil {
		t.Fatalf("in_progress -> completed: %v", err)
	}
	if o.CompletedAt == nil {
		t.Errorf("CompletedAt not set")
	}

	events := o.PendingEvents()
	if len(events) != 2 {
		t.Fatalf("want 2 events, got %d", len(events))
	}
	if events[0].Status != StatusInProgress || *events[0].Actor != actor || *events[0].Notes != notes {
		t.Errorf("unexpected first event %+v", events[0])
	}

	err := o.TransitionTo(StatusInProgress, &actor, nil)
	if !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("completed -> in_progress: err = %v, want ErrOrderClosed", err)
	}
	if o.Status != StatusCompleted || len(o.PendingEvents()) != 0 {
		t.Errorf("closed order changed state")
	}
}

func TestOrderTransitionEdges(t *testing.T) {
	tests := []struct {
		name    string
		path    []Status
		to      Status
		wantErr error
	}{
		{"created to cancelled", nil, StatusCancelled, nil},
		{"in progress to cancelled", []Status{StatusInProgress}, StatusCancelled, nil},
		{"created to completed", nil, StatusCompleted, ErrInvalidTransition},
		{"created to created", nil, StatusCreated, ErrInvalidTransition},
		{"cancelled is closed", []Status{StatusCancelled}, StatusInProgress, ErrOrderClosed},
		{"unknown status", nil, Status("burnt"), ErrInvalidStatus},
		{"unknown status on closed order", []Status{StatusCancelled}, Status("burnt"), ErrOrderClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := dineInOrder(t)
			for _, s := range tt.path {
				if err := o.TransitionTo(s, nil, nil); err != nil {
					t.Fatal(err)
				}
			}
			if err := o.TransitionTo(tt.to, nil, nil); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetPayment(t *testing.T) {
	o := dineInOrder(t)
	if err := o.SetPayment("card", PaymentPaid); err != nil {
		t.Fatal(err)
	}
	if o.PaymentMethod != "card" || o.PaymentStatus != PaymentPaid {
		t.Errorf("payment = %s/%s", o.PaymentMethod, o.PaymentStatus)
	}
	if err := o.SetPayment("", PaymentStatus("refunded")); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("invalid status: err = %v", err)
	}

	if err := o.TransitionTo(StatusCancelled, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := o.SetPayment("card", PaymentFailed); !errors.Is(err, ErrOrderClosed) {
		t.Errorf("cancelled order: err = %v", err)
	}
}

func TestOrderCode(t *testing.T) {
	o := dineInOrder(t)
	got := OrderCode(42, o.CreatedAt)
	want := "ORD_" + o.CreatedAt.Format("20060102") + "_000042"
	if got != want {
		t.Errorf("OrderCode = %q, want %q", got, want)
	}
}

func TestNewTimelineEvent(t *testing.T) {
	if _, err := NewTimelineEvent(0, StatusCreated, nil, nil); !errors.Is(err, ErrInvalidTimelineEvent) {
		t.Errorf("missing order id: err = %v", err)
	}
	if _, err := NewTimelineEvent(1, "", nil, nil); !errors.Is(err, ErrInvalidTimelineEvent) {
		t.Errorf("missing status: err = %v", err)
	}
	e, err := NewTimelineEvent(1, StatusCancelled, nil, nil)
	if err != nil || e.CreatedAt.IsZero() {
		t.Errorf("event = %+v, err = %v", e, err)
	}
}
