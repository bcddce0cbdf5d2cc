package http

import (
	"net/http"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

type CreateOrderRequest struct {
	CustomerID    *int64             `json:"customer_id,omitempty"`
	OrderType     string             `json:"order_type"`
	Items         []OrderItemPayload `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	CreatedBy     *int64             `json:"created_by,omitempty"`
}

type OrderTransitionRequest struct {
	Status    string  `json:"status"`
	ChangedBy *int64  `json:"changed_by,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type UpdatePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`
}

func itemCommand(item OrderItemPayload) interfaces.CreateOrderItemCommand {
	return interfaces.CreateOrderItemCommand{
		MenuItemID: item.MenuItemID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Price:      item.Price,
	}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	items := make([]interfaces.CreateOrderItemCommand, len(req.Items))
	for i, item := range req.Items {
		items[i] = itemCommand(item)
	}

	order, err := h.service.CreateOrder(r.Context(), interfaces.CreateOrderCommand{
		CompanyID:     companyID,
		CustomerID:    req.CustomerID,
		OrderType:     domain.OrderType(req.OrderType),
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		Actor:         req.CreatedBy,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req OrderItemPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.service.AddItem(r.Context(), orderID, itemCommand(req))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.service.RemoveItem(r.Context(), orderID, itemID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req OrderTransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.service.TransitionStatus(r.Context(), interfaces.TransitionOrderCommand{
		OrderID: orderID,
		Status:  domain.Status(req.Status),
		Actor:   req.ChangedBy,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req UpdatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.service.UpdatePayment(r.Context(), orderID, req.PaymentMethod, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(order))
}
