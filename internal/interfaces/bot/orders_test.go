package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderingapp "github.com/shopbot/backend/internal/application/ordering"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

func mustOrder(t *testing.T, userID int64, name string, total string) *ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder(userID, name, "@"+name, []ordering.OrderItem{
		{Name: "Air X", UnitPrice: decimal.RequireFromString(total), Quantity: 1},
	}, decimal.RequireFromString(total))
	require.NoError(t, err)
	return order
}

func webAppMessage(payload string) *telegram.Message {
	msg := customerMessage("")
	msg.Text = ""
	msg.WebAppData = &telegram.WebAppData{Data: payload}
	return msg
}

func TestOrderScreens(t *testing.T) {
	ctx := context.Background()

	t.Run("new orders list carries one done button per order", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		first := mustOrder(t, 7, "Eve", "129.99")
		second := mustOrder(t, 8, "Bob", "15.50")
		fix.orders.On("ListNew", mock.Anything).Return([]ordering.Order{*first, *second}, nil)

		require.NoError(t, fix.router.handleCallback(ctx, adminCallback(cbOrdersNew)))

		edit := fix.messenger.lastEdit(t)
		assert.Contains(t, edit.Text, "New orders")
		assert.Contains(t, edit.Text, "Eve")
		rows := edit.ReplyMarkup.InlineKeyboard
		require.Len(t, rows, 4)
		assert.Equal(t, cbPrefixOrderDone+first.ID.String(), rows[0][0].CallbackData)
		assert.Equal(t, cbPrefixOrderDone+second.ID.String(), rows[1][0].CallbackData)
		assert.Equal(t, cbOrdersDoneAll, rows[2][0].CallbackData)
		assert.Equal(t, cbOrdersMenu, rows[3][0].CallbackData)
	})

	t.Run("empty new orders view has only the back button", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		fix.orders.On("ListNew", mock.Anything).Return([]ordering.Order{}, nil)

		require.NoError(t, fix.router.handleCallback(ctx, adminCallback(cbOrdersNew)))

		edit := fix.messenger.lastEdit(t)
		assert.Contains(t, edit.Text, "Nothing here yet")
		require.Len(t, edit.ReplyMarkup.InlineKeyboard, 1)
		assert.Equal(t, cbOrdersMenu, edit.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
	})

	t.Run("all orders view shows status badges", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		fresh := mustOrder(t, 7, "Eve", "129.99")
		done := mustOrder(t, 8, "Bob", "15.50")
		done.MarkProcessed()
		fix.orders.On("ListAll", mock.Anything).Return([]ordering.Order{*fresh, *done}, nil)

		require.NoError(t, fix.router.handleCallback(ctx, adminCallback(cbOrdersAll)))

		text := fix.messenger.lastEdit(t).Text
		assert.Contains(t, text, "🆕")
		assert.Contains(t, text, "✅")
	})

	t.Run("marking one order re-renders the queue", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		order := mustOrder(t, 7, "Eve", "129.99")
		fix.orders.On("MarkProcessed", mock.Anything, order.ID).Return(order, nil)
		fix.orders.On("ListNew", mock.Anything).Return([]ordering.Order{}, nil)

		require.NoError(t, fix.router.handleCallback(ctx, adminCallback(cbPrefixOrderDone+order.ID.String())))

		assert.Contains(t, fix.messenger.lastEdit(t).Text, "Nothing here yet")
		assert.Contains(t, fix.messenger.lastAnswer(t), shortID(order.ID))
	})

	t.Run("marking an order twice only answers", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		id := uuid.New()
		fix.orders.On("MarkProcessed", mock.Anything, id).Return(nil, shared.ErrNotFound)

		require.NoError(t, fix.router.handleCallback(ctx, adminCallback(cbPrefixOrderDone+id.String())))

		assert.Contains(t, fix.messenger.lastAnswer(t), "expired")
		assert.Empty(t, fix.messenger.edits)
	})

	t.Run("mark all reports the processed count", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		fix.orders.On("MarkAllProcessed", mock.Anything).Return(int64(5), nil)
		fix.orders.On("ListNew", mock.Anything).Return([]ordering.Order{}, nil)

		require.NoError(t, fix.router.handleCallback(ctx, adminCallback(cbOrdersDoneAll)))

		assert.Contains(t, fix.messenger.lastAnswer(t), "5")
	})
}

func TestWebAppCheckout(t *testing.T) {
	ctx := context.Background()
	validPayload := `{"type":"order","items":[{"name":"Air X","price":"129.99","quantity":2}],"total_price":"259.98"}`

	t.Run("persists the submission and confirms synchronously", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		order := mustOrder(t, customerUserID, "Eve", "259.98")
		fix.orders.On("Intake", mock.Anything,
			mock.MatchedBy(func(p *orderingapp.OrderPayload) bool {
				return len(p.Items) == 1 &&
					p.Items[0].Quantity == 2 &&
					p.TotalPrice.Equal(decimal.RequireFromString("259.98"))
			}),
			mock.MatchedBy(func(f orderingapp.FallbackIdentity) bool {
				return f.UserID == customerUserID && f.DisplayName == "Eve"
			}),
		).Return(&orderingapp.IntakeResult{Order: order, Notified: true}, nil)

		require.NoError(t, fix.router.handleMessage(ctx, webAppMessage(validPayload)))

		sent := fix.messenger.lastSent(t)
		assert.Contains(t, sent.Text, "Order #"+shortID(order.ID))
		assert.Contains(t, sent.Text, "259.98")
		assert.Contains(t, sent.Text, "Items: <b>1</b>")
		assert.Contains(t, sent.Text, "5-15 minutes")
	})

	t.Run("confirms even when the channel notification failed", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		order := mustOrder(t, customerUserID, "Eve", "259.98")
		fix.orders.On("Intake", mock.Anything, mock.Anything, mock.Anything).
			Return(&orderingapp.IntakeResult{Order: order, Notified: false, NotifyErr: errors.New("channel gone")}, nil)

		require.NoError(t, fix.router.handleMessage(ctx, webAppMessage(validPayload)))

		assert.Contains(t, fix.messenger.lastSent(t).Text, "confirmed")
	})

	t.Run("malformed JSON is rejected before the service", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()

		require.NoError(t, fix.router.handleMessage(ctx, webAppMessage(`{"type":"order",`)))

		assert.Contains(t, fix.messenger.lastSent(t).Text, "Malformed order payload")
		fix.orders.AssertNotCalled(t, "Intake", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("an empty cart is rejected before the service", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()

		require.NoError(t, fix.router.handleMessage(ctx, webAppMessage(`{"type":"order","items":[],"total_price":"0"}`)))

		assert.Contains(t, fix.messenger.lastSent(t).Text, "at least one item")
		fix.orders.AssertNotCalled(t, "Intake", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a storage failure reports and propagates", func(t *testing.T) {
		fix := newRouterFixture(t)
		fix.messenger.allowAll()
		fix.orders.On("Intake", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		err := fix.router.handleMessage(ctx, webAppMessage(validPayload))

		require.Error(t, err)
		assert.Contains(t, fix.messenger.lastSent(t).Text, "Could not process the order")
	})
}
