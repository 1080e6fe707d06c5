package ordering

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusProcessed OrderStatus = "processed"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusNew || s == OrderStatusProcessed
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is one line of an order, captured as an immutable snapshot
// of the product at submission time rather than a reference to a live
// catalog row.
type OrderItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns unit price multiplied by quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItems is the serialized item list stored on the order row
type OrderItems []OrderItem

// Value implements driver.Valuer, serializing the items to JSON
func (items OrderItems) Value() (driver.Value, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, deserializing items from JSON
func (items *OrderItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = nil
		return nil
	default:
		return fmt.Errorf("unsupported type %T for OrderItems", value)
	}
}

// Order is a customer order. The item list and total are immutable once
// placed; the total is stored exactly as submitted and never recomputed
// against the item lines.
type Order struct {
	shared.BaseAggregateRoot
	UserID        int64           `gorm:"not null;index"`
	DisplayName   string          `gorm:"type:varchar(200)"`
	ContactHandle string          `gorm:"type:varchar(100)"`
	Items         OrderItems      `gorm:"type:text;not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'new';index"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in the `new` status
func NewOrder(userID int64, displayName, contactHandle string, items []OrderItem, totalPrice decimal.Decimal) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	for _, item := range items {
		if item.Name == "" {
			return nil, shared.NewDomainError("INVALID_ITEM", "Order item name cannot be empty")
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ITEM", "Order item quantity must be positive")
		}
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		DisplayName:       displayName,
		ContactHandle:     contactHandle,
		Items:             items,
		TotalPrice:        totalPrice,
		Status:            OrderStatusNew,
	}

	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

// MarkProcessed transitions the order to processed. The transition is
// one-way and idempotent: marking an already processed order is a no-op.
func (o *Order) MarkProcessed() {
	if o.Status == OrderStatusProcessed {
		return
	}

	o.Status = OrderStatusProcessed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderProcessedEvent(o))
}

// IsProcessed returns true if the order has been processed
func (o *Order) IsProcessed() bool {
	return o.Status == OrderStatusProcessed
}

// ItemCount returns the number of order lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}
