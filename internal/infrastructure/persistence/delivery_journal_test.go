package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDeliveryJournal_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	journal := NewGormDeliveryJournal(db)
	order := mustOrder(t, db, 42, 9999)

	record, err := ordering.NewDeliveryRecord(order.ID, "telegram", "New order from Jane Doe")
	require.NoError(t, err)
	require.NoError(t, journal.Save(context.Background(), record))

	records, err := journal.FindByOrderID(context.Background(), order.ID)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, order.ID, records[0].OrderID)
	assert.Equal(t, ordering.DeliveryStatusPending, records[0].Status)
	assert.Equal(t, "New order from Jane Doe", records[0].Payload)
}

func TestGormDeliveryJournal_Update(t *testing.T) {
	t.Run("persists sent transition", func(t *testing.T) {
		db := newTestDB(t)
		journal := NewGormDeliveryJournal(db)
		order := mustOrder(t, db, 42, 9999)

		record, err := ordering.NewDeliveryRecord(order.ID, "telegram", "payload")
		require.NoError(t, err)
		require.NoError(t, journal.Save(context.Background(), record))

		record.MarkSent()
		require.NoError(t, journal.Update(context.Background(), record))

		records, err := journal.FindByOrderID(context.Background(), order.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, ordering.DeliveryStatusSent, records[0].Status)
	})

	t.Run("persists failure with reason", func(t *testing.T) {
		db := newTestDB(t)
		journal := NewGormDeliveryJournal(db)
		order := mustOrder(t, db, 42, 9999)

		record, err := ordering.NewDeliveryRecord(order.ID, "telegram", "payload")
		require.NoError(t, err)
		require.NoError(t, journal.Save(context.Background(), record))

		record.MarkFailed("telegram API timeout")
		require.NoError(t, journal.Update(context.Background(), record))

		records, err := journal.FindByOrderID(context.Background(), order.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, ordering.DeliveryStatusFailed, records[0].Status)
		assert.Equal(t, "telegram API timeout", records[0].LastError)
	})
}

func TestGormDeliveryJournal_FindByOrderID_Empty(t *testing.T) {
	db := newTestDB(t)
	journal := NewGormDeliveryJournal(db)

	records, err := journal.FindByOrderID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGormDeliveryJournal_CountByStatus(t *testing.T) {
	db := newTestDB(t)
	journal := NewGormDeliveryJournal(db)
	order := mustOrder(t, db, 42, 9999)

	pending, err := ordering.NewDeliveryRecord(order.ID, "telegram", "one")
	require.NoError(t, err)
	require.NoError(t, journal.Save(context.Background(), pending))

	sent, err := ordering.NewDeliveryRecord(order.ID, "telegram", "two")
	require.NoError(t, err)
	sent.MarkSent()
	require.NoError(t, journal.Save(context.Background(), sent))

	failed, err := ordering.NewDeliveryRecord(order.ID, "telegram", "three")
	require.NoError(t, err)
	failed.MarkFailed("boom")
	require.NoError(t, journal.Save(context.Background(), failed))

	counts, err := journal.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[ordering.DeliveryStatusPending])
	assert.Equal(t, int64(1), counts[ordering.DeliveryStatusSent])
	assert.Equal(t, int64(1), counts[ordering.DeliveryStatusFailed])
}
