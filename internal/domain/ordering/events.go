package ordering

import (
	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type for order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced    = "OrderPlaced"
	EventTypeOrderProcessed = "OrderProcessed"
)

// OrderPlacedEvent is published when a new order is accepted
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	UserID     int64     `json:"user_id"`
	ItemCount  int       `json:"item_count"`
	TotalPrice string    `json:"total_price"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		UserID:          order.UserID,
		ItemCount:       order.ItemCount(),
		TotalPrice:      order.TotalPrice.String(),
	}
}

// OrderProcessedEvent is published when an order transitions to processed
type OrderProcessedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewOrderProcessedEvent creates a new OrderProcessedEvent
func NewOrderProcessedEvent(order *Order) *OrderProcessedEvent {
	return &OrderProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderProcessed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
	}
}
