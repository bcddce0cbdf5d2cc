package order

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/shopspring/decimal"
)

// Pricing is the single source of tax and delivery fee rules for new orders.
type Pricing struct {
	TaxRate     decimal.Decimal
	DeliveryFee domain.DeliveryFeePolicy
}

type Service struct {
	repo      interfaces.OrderRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	pricing   Pricing
}

func NewService(repo interfaces.OrderRepository, publisher interfaces.MessagePublisher, logger logger.Logger, pricing Pricing) *Service {
	if publisher == nil {
		publisher = interfaces.NopPublisher{}
	}
	if pricing.DeliveryFee == nil {
		pricing.DeliveryFee = domain.FlatDeliveryFee(0)
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		pricing:   pricing,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	requestID := logger.RequestID(ctx)

	// 1. Convert commands into domain items
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.OrderItem{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		}
	}

	// 2. Build the aggregate (validation and totals happen here)
	order, err := domain.NewOrder(cmd.CompanyID, cmd.CustomerID, cmd.OrderType, items,
		s.pricing.TaxRate, s.pricing.DeliveryFee, cmd.PaymentMethod, cmd.Actor)
	if err != nil {
		s.logger.Debug("validation_failed", "Order validation failed", requestID, map[string]interface{}{
			"company_id": cmd.CompanyID,
			"reason":     err.Error(),
		})
		return nil, err
	}

	// 3. Persist order, items and the created event in one transaction
	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", requestID, nil, err)
		return nil, err
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %s created", order.Code), requestID, map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
	})
	s.notify(ctx, order, "", cmd.Actor, nil)

	return order, nil
}

func (s *Service) AddItem(ctx context.Context, orderID int64, cmd interfaces.CreateOrderItemCommand) (*domain.Order, error) {
	item, err := domain.NewOrderItem(cmd.MenuItemID, cmd.Name, cmd.Price, cmd.Quantity)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Update(ctx, orderID, func(o *domain.Order) error {
		return o.AddItem(item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("order_item_added", fmt.Sprintf("Item added to order %s", order.Code), logger.RequestID(ctx), map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
	})
	return order, nil
}

func (s *Service) RemoveItem(ctx context.Context, orderID, itemID int64) (*domain.Order, error) {
	order, err := s.repo.Update(ctx, orderID, func(o *domain.Order) error {
		return o.RemoveItem(itemID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("order_item_removed", fmt.Sprintf("Item removed from order %s", order.Code), logger.RequestID(ctx), map[string]interface{}{
		"order_id": order.ID,
		"item_id":  itemID,
		"total":    order.Total,
	})
	return order, nil
}

func (s *Service) TransitionStatus(ctx context.Context, cmd interfaces.TransitionOrderCommand) (*domain.Order, error) {
	var oldStatus domain.Status

	order, err := s.repo.Update(ctx, cmd.OrderID, func(o *domain.Order) error {
		oldStatus = o.Status
		return o.TransitionTo(cmd.Status, cmd.Actor, cmd.Notes)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_status_changed", fmt.Sprintf("Order %s is %s", order.Code, order.Status), logger.RequestID(ctx), map[string]interface{}{
		"old_status": oldStatus,
		"new_status": order.Status,
	})
	s.notify(ctx, order, oldStatus, cmd.Actor, cmd.Notes)

	return order, nil
}

func (s *Service) UpdatePayment(ctx context.Context, orderID int64, method string, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidPayment
	}
	return s.repo.Update(ctx, orderID, func(o *domain.Order) error {
		return o.SetPayment(method, status)
	})
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

// notify publishes the status change. Delivery is best effort: the change is
// already committed and the timeline holds the durable record.
func (s *Service) notify(ctx context.Context, order *domain.Order, oldStatus domain.Status, actor *int64, notes *string) {
	msg := interfaces.StatusUpdateMessage{
		Entity:    interfaces.EntityOrder,
		EntityID:  order.ID,
		Reference: order.Code,
		CompanyID: order.CompanyID,
		OldStatus: string(oldStatus),
		NewStatus: string(order.Status),
		ChangedBy: actor,
		Notes:     notes,
		Timestamp: order.UpdatedAt,
	}
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order update", logger.RequestID(ctx), map[string]interface{}{
			"order_code": order.Code,
		}, err)
	}
}
