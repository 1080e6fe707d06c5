package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []OrderItem {
	return []OrderItem{
		{Name: "A", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		{Name: "B", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
	}
}

func TestNewOrder(t *testing.T) {
	t.Run("creates order in new status", func(t *testing.T) {
		order, err := NewOrder(42, "Alice", "alice", testItems(), decimal.NewFromInt(250))
		require.NoError(t, err)
		require.NotNil(t, order)

		assert.Equal(t, OrderStatusNew, order.Status)
		assert.Equal(t, int64(42), order.UserID)
		assert.Equal(t, 2, order.ItemCount())
		assert.False(t, order.IsProcessed())
	})

	t.Run("stores the submitted total verbatim", func(t *testing.T) {
		// Line sum is 250, but the submitted total wins even when it
		// disagrees: the store does not recompute.
		order, err := NewOrder(42, "Alice", "alice", testItems(), decimal.NewFromInt(999))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(999).Equal(order.TotalPrice))
	})

	t.Run("publishes OrderPlaced event", func(t *testing.T) {
		order, err := NewOrder(42, "Alice", "alice", testItems(), decimal.NewFromInt(250))
		require.NoError(t, err)

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderPlaced, events[0].EventType())
	})

	t.Run("fails with empty item list", func(t *testing.T) {
		_, err := NewOrder(42, "Alice", "alice", nil, decimal.NewFromInt(250))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("fails with zero quantity item", func(t *testing.T) {
		items := []OrderItem{{Name: "A", UnitPrice: decimal.NewFromInt(100), Quantity: 0}}
		_, err := NewOrder(42, "Alice", "alice", items, decimal.NewFromInt(100))
		require.Error(t, err)
	})

	t.Run("fails with unnamed item", func(t *testing.T) {
		items := []OrderItem{{UnitPrice: decimal.NewFromInt(100), Quantity: 1}}
		_, err := NewOrder(42, "Alice", "alice", items, decimal.NewFromInt(100))
		require.Error(t, err)
	})
}

func TestOrderMarkProcessed(t *testing.T) {
	t.Run("transitions new to processed", func(t *testing.T) {
		order, err := NewOrder(42, "Alice", "alice", testItems(), decimal.NewFromInt(250))
		require.NoError(t, err)

		order.MarkProcessed()
		assert.Equal(t, OrderStatusProcessed, order.Status)
		assert.True(t, order.IsProcessed())
	})

	t.Run("is idempotent", func(t *testing.T) {
		order, err := NewOrder(42, "Alice", "alice", testItems(), decimal.NewFromInt(250))
		require.NoError(t, err)

		order.MarkProcessed()
		versionAfterFirst := order.Version

		order.MarkProcessed()
		assert.Equal(t, OrderStatusProcessed, order.Status)
		assert.Equal(t, versionAfterFirst, order.Version)
	})
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Name: "A", UnitPrice: decimal.NewFromFloat(99.5), Quantity: 3}
	assert.Equal(t, "298.5", item.LineTotal().String())
}

func TestOrderItemsSerialization(t *testing.T) {
	t.Run("round-trips through Value and Scan", func(t *testing.T) {
		items := OrderItems(testItems())

		value, err := items.Value()
		require.NoError(t, err)

		var decoded OrderItems
		require.NoError(t, decoded.Scan(value))

		require.Len(t, decoded, 2)
		assert.Equal(t, "A", decoded[0].Name)
		assert.Equal(t, 2, decoded[0].Quantity)
		assert.True(t, decimal.NewFromInt(100).Equal(decoded[0].UnitPrice))
	})

	t.Run("scans byte slices", func(t *testing.T) {
		var decoded OrderItems
		require.NoError(t, decoded.Scan([]byte(`[{"name":"A","price":"100","quantity":2}]`)))
		require.Len(t, decoded, 1)
	})

	t.Run("scans nil as empty", func(t *testing.T) {
		var decoded OrderItems
		require.NoError(t, decoded.Scan(nil))
		assert.Nil(t, decoded)
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		var decoded OrderItems
		require.Error(t, decoded.Scan(42))
	})
}

func TestDeliveryRecord(t *testing.T) {
	orderID := uuid.New()

	t.Run("starts pending", func(t *testing.T) {
		record, err := NewDeliveryRecord(orderID, "-1001234", "order text")
		require.NoError(t, err)

		assert.Equal(t, DeliveryStatusPending, record.Status)
		assert.Equal(t, 0, record.Attempts)
	})

	t.Run("fails without order id", func(t *testing.T) {
		_, err := NewDeliveryRecord(uuid.Nil, "-1001234", "order text")
		require.Error(t, err)
	})

	t.Run("fails without channel", func(t *testing.T) {
		_, err := NewDeliveryRecord(orderID, "", "order text")
		require.Error(t, err)
	})

	t.Run("MarkSent records the attempt", func(t *testing.T) {
		record, err := NewDeliveryRecord(orderID, "-1001234", "order text")
		require.NoError(t, err)

		record.MarkSent()
		assert.Equal(t, DeliveryStatusSent, record.Status)
		assert.Equal(t, 1, record.Attempts)
	})

	t.Run("MarkFailed keeps the error", func(t *testing.T) {
		record, err := NewDeliveryRecord(orderID, "-1001234", "order text")
		require.NoError(t, err)

		record.MarkFailed("chat not found")
		assert.Equal(t, DeliveryStatusFailed, record.Status)
		assert.Equal(t, "chat not found", record.LastError)
		assert.Equal(t, 1, record.Attempts)
	})
}
