package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds all orders, newest first
	FindAll(ctx context.Context) ([]Order, error)

	// FindByStatus finds orders in the given status, newest first
	FindByStatus(ctx context.Context, status OrderStatus) ([]Order, error)

	// FindByUser finds orders submitted by the given user, newest first
	FindByUser(ctx context.Context, userID int64) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// MarkAllProcessed transitions every `new` order to `processed` and
	// returns how many rows changed
	MarkAllProcessed(ctx context.Context) (int64, error)

	// Count counts all orders
	Count(ctx context.Context) (int64, error)

	// CountByStatus counts orders in the given status
	CountByStatus(ctx context.Context, status OrderStatus) (int64, error)
}

// DeliveryJournal defines the interface for the notification journal
type DeliveryJournal interface {
	// Save persists a journal entry
	Save(ctx context.Context, record *DeliveryRecord) error

	// Update updates an existing journal entry
	Update(ctx context.Context, record *DeliveryRecord) error

	// FindByOrderID finds all journal entries for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]DeliveryRecord, error)

	// CountByStatus returns the number of entries per status
	CountByStatus(ctx context.Context) (map[DeliveryStatus]int64, error)
}
