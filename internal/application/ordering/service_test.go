package ordering

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopbot/backend/internal/domain/ordering"
)

// MockOrderRepository is a mock implementation of ordering.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]ordering.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status ordering.OrderStatus) ([]ordering.Order, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID int64) ([]ordering.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkAllProcessed(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status ordering.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockDeliveryJournal is a mock implementation of ordering.DeliveryJournal
type MockDeliveryJournal struct {
	mock.Mock
}

func (m *MockDeliveryJournal) Save(ctx context.Context, record *ordering.DeliveryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDeliveryJournal) Update(ctx context.Context, record *ordering.DeliveryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDeliveryJournal) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ordering.DeliveryRecord, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]ordering.DeliveryRecord), args.Error(1)
}

func (m *MockDeliveryJournal) CountByStatus(ctx context.Context) (map[ordering.DeliveryStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[ordering.DeliveryStatus]int64), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func newTestOrderingService() (*Service, *MockOrderRepository, *MockDeliveryJournal, *MockNotifier) {
	orders := new(MockOrderRepository)
	journal := new(MockDeliveryJournal)
	notifier := new(MockNotifier)
	service := NewService(orders, journal, notifier, NewNotificationRenderer("en"))
	return service, orders, journal, notifier
}

func validPayload() *OrderPayload {
	return &OrderPayload{
		Type: PayloadTypeOrder,
		Items: []PayloadItem{
			{Name: "Air Max", Price: decimal.NewFromInt(100), Quantity: 2},
			{Name: "Cap", Price: decimal.NewFromInt(50), Quantity: 1},
		},
		TotalPrice:    decimal.NewFromInt(250),
		UserID:        42,
		DisplayName:   "Jane Doe",
		ContactHandle: "@janedoe",
	}
}

func TestService_Intake(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the order and notifies the channel", func(t *testing.T) {
		service, orders, journal, notifier := newTestOrderingService()

		orders.On("Save", ctx, mock.AnythingOfType("*ordering.Order")).Return(nil)
		journal.On("Save", ctx, mock.AnythingOfType("*ordering.DeliveryRecord")).Return(nil)
		notifier.On("Notify", ctx, mock.AnythingOfType("string")).Return(nil)
		journal.On("Update", ctx, mock.MatchedBy(func(r *ordering.DeliveryRecord) bool {
			return r.Status == ordering.DeliveryStatusSent
		})).Return(nil)

		result, err := service.Intake(ctx, validPayload(), FallbackIdentity{})

		require.NoError(t, err)
		assert.True(t, result.Notified)
		assert.NoError(t, result.NotifyErr)
		require.NotNil(t, result.Order)
		assert.Equal(t, int64(42), result.Order.UserID)
		assert.Equal(t, "Jane Doe", result.Order.DisplayName)
		assert.Equal(t, ordering.OrderStatusNew, result.Order.Status)
		assert.Len(t, result.Order.Items, 2)
		journal.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("stores the submitted total verbatim", func(t *testing.T) {
		service, orders, journal, notifier := newTestOrderingService()

		orders.On("Save", ctx, mock.AnythingOfType("*ordering.Order")).Return(nil)
		journal.On("Save", ctx, mock.Anything).Return(nil)
		journal.On("Update", ctx, mock.Anything).Return(nil)
		notifier.On("Notify", ctx, mock.Anything).Return(nil)

		payload := validPayload()
		payload.TotalPrice = decimal.NewFromInt(999)

		result, err := service.Intake(ctx, payload, FallbackIdentity{})

		require.NoError(t, err)
		assert.True(t, result.Order.TotalPrice.Equal(decimal.NewFromInt(999)))
	})

	t.Run("falls back to the transport sender identity", func(t *testing.T) {
		service, orders, journal, notifier := newTestOrderingService()

		orders.On("Save", ctx, mock.Anything).Return(nil)
		journal.On("Save", ctx, mock.Anything).Return(nil)
		journal.On("Update", ctx, mock.Anything).Return(nil)
		notifier.On("Notify", ctx, mock.Anything).Return(nil)

		payload := validPayload()
		payload.UserID = 0
		payload.DisplayName = ""
		payload.ContactHandle = ""

		fallback := FallbackIdentity{UserID: 77, DisplayName: "John Smith", ContactHandle: "@jsmith"}
		result, err := service.Intake(ctx, payload, fallback)

		require.NoError(t, err)
		assert.Equal(t, int64(77), result.Order.UserID)
		assert.Equal(t, "John Smith", result.Order.DisplayName)
		assert.Equal(t, "@jsmith", result.Order.ContactHandle)
	})

	t.Run("rejects empty item list without persisting", func(t *testing.T) {
		service, orders, _, notifier := newTestOrderingService()

		payload := validPayload()
		payload.Items = nil

		_, err := service.Intake(ctx, payload, FallbackIdentity{})

		require.Error(t, err)
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("rejects unrecognized payload type without persisting", func(t *testing.T) {
		service, orders, _, _ := newTestOrderingService()

		payload := validPayload()
		payload.Type = "refund"

		_, err := service.Intake(ctx, payload, FallbackIdentity{})

		require.Error(t, err)
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("delivery failure keeps the order and journals it", func(t *testing.T) {
		service, orders, journal, notifier := newTestOrderingService()

		orders.On("Save", ctx, mock.Anything).Return(nil)
		journal.On("Save", ctx, mock.MatchedBy(func(r *ordering.DeliveryRecord) bool {
			return r.Status == ordering.DeliveryStatusPending
		})).Return(nil)
		notifier.On("Notify", ctx, mock.Anything).Return(assert.AnError)
		journal.On("Update", ctx, mock.MatchedBy(func(r *ordering.DeliveryRecord) bool {
			return r.Status == ordering.DeliveryStatusFailed && r.LastError != ""
		})).Return(nil)

		result, err := service.Intake(ctx, validPayload(), FallbackIdentity{})

		require.NoError(t, err)
		require.NotNil(t, result.Order)
		assert.False(t, result.Notified)
		assert.ErrorIs(t, result.NotifyErr, assert.AnError)
		journal.AssertExpectations(t)
	})

	t.Run("journal failure does not block delivery", func(t *testing.T) {
		service, orders, journal, notifier := newTestOrderingService()

		orders.On("Save", ctx, mock.Anything).Return(nil)
		journal.On("Save", ctx, mock.Anything).Return(assert.AnError)
		notifier.On("Notify", ctx, mock.Anything).Return(nil)

		result, err := service.Intake(ctx, validPayload(), FallbackIdentity{})

		require.NoError(t, err)
		assert.True(t, result.Notified)
		journal.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("persistence failure surfaces and skips notification", func(t *testing.T) {
		service, orders, _, notifier := newTestOrderingService()

		orders.On("Save", ctx, mock.Anything).Return(assert.AnError)

		_, err := service.Intake(ctx, validPayload(), FallbackIdentity{})

		assert.ErrorIs(t, err, assert.AnError)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})
}

func TestService_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	newOrder := func(t *testing.T) *ordering.Order {
		order, err := ordering.NewOrder(42, "Jane Doe", "@janedoe", ordering.OrderItems{
			{Name: "Air Max", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		}, decimal.NewFromInt(100))
		require.NoError(t, err)
		return order
	}

	t.Run("transitions new order to processed", func(t *testing.T) {
		service, orders, _, _ := newTestOrderingService()
		order := newOrder(t)

		orders.On("FindByID", ctx, order.ID).Return(order, nil)
		orders.On("Save", ctx, order).Return(nil)

		got, err := service.MarkProcessed(ctx, order.ID)

		require.NoError(t, err)
		assert.True(t, got.IsProcessed())
		orders.AssertExpectations(t)
	})

	t.Run("marking a processed order is a no-op", func(t *testing.T) {
		service, orders, _, _ := newTestOrderingService()
		order := newOrder(t)
		order.MarkProcessed()

		orders.On("FindByID", ctx, order.ID).Return(order, nil)

		got, err := service.MarkProcessed(ctx, order.ID)

		require.NoError(t, err)
		assert.True(t, got.IsProcessed())
		orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_Listings(t *testing.T) {
	ctx := context.Background()

	t.Run("ListNew filters by status", func(t *testing.T) {
		service, orders, _, _ := newTestOrderingService()
		orders.On("FindByStatus", ctx, ordering.OrderStatusNew).Return([]ordering.Order{}, nil)

		_, err := service.ListNew(ctx)

		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("ListByUser scopes to the requester", func(t *testing.T) {
		service, orders, _, _ := newTestOrderingService()
		orders.On("FindByUser", ctx, int64(42)).Return([]ordering.Order{}, nil)

		_, err := service.ListByUser(ctx, 42)

		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("MarkAllProcessed reports affected count", func(t *testing.T) {
		service, orders, _, _ := newTestOrderingService()
		orders.On("MarkAllProcessed", ctx).Return(int64(3), nil)

		count, err := service.MarkAllProcessed(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
