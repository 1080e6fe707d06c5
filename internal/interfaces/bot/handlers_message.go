package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	orderingapp "github.com/shopbot/backend/internal/application/ordering"
	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

// command extracts the bot command from a message text, tolerating the
// "/cmd@BotName" addressing form. Returns "" for non-command text.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}

func (r *Router) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil {
		return nil
	}
	if msg.WebAppData != nil {
		return r.handleWebAppOrder(ctx, msg)
	}

	switch command(msg.Text) {
	case "start":
		return r.handleStart(ctx, msg)
	case "getid":
		return r.handleGetID(ctx, msg)
	case "orders":
		return r.handleOrdersCommand(ctx, msg)
	case "cancel":
		return r.handleCancel(ctx, msg)
	}

	session, err := r.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, conversation.ErrNoSession) {
			// free text outside any dialog is ignored
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if !r.auth.IsAdmin(msg.From.ID) {
		r.clearSession(ctx, msg.From.ID)
		return r.reply(ctx, msg.Chat.ID, r.render.AccessDenied(), nil)
	}

	switch state := session.(type) {
	case *conversation.AddCategorySession:
		return r.advanceAddCategory(ctx, msg, state)
	case *conversation.AddProductSession:
		return r.advanceAddProduct(ctx, msg, state)
	default:
		// the reset dialog advances only through its buttons
		return nil
	}
}

func (r *Router) handleStart(ctx context.Context, msg *telegram.Message) error {
	r.clearSession(ctx, msg.From.ID)
	isAdmin := r.auth.IsAdmin(msg.From.ID)
	return r.reply(ctx, msg.Chat.ID, r.render.Welcome(msg.From.FirstName), mainMenuKeyboard(r.webAppURL, isAdmin))
}

func (r *Router) handleGetID(ctx context.Context, msg *telegram.Message) error {
	return r.reply(ctx, msg.Chat.ID, r.render.ChatInfo(msg.Chat), nil)
}

// handleOrdersCommand lists orders: the admin gets the orders menu, any
// other identity gets a listing scoped to their own orders
func (r *Router) handleOrdersCommand(ctx context.Context, msg *telegram.Message) error {
	if r.auth.IsAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, r.render.OrdersMenu(), ordersMenuKeyboard())
	}

	orders, err := r.orders.ListByUser(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("failed to list user orders: %w", err)
	}
	return r.reply(ctx, msg.Chat.ID, r.render.OrdersList("Your orders", orders, true), nil)
}

func (r *Router) handleCancel(ctx context.Context, msg *telegram.Message) error {
	r.clearSession(ctx, msg.From.ID)
	isAdmin := r.auth.IsAdmin(msg.From.ID)
	return r.reply(ctx, msg.Chat.ID, r.render.MainMenu(), mainMenuKeyboard(r.webAppURL, isAdmin))
}

// handleWebAppOrder accepts an order payload submitted through the shop
// web app. The submitter always gets a synchronous confirmation once the
// order is persisted, whatever happens to the channel notification.
func (r *Router) handleWebAppOrder(ctx context.Context, msg *telegram.Message) error {
	payload, err := orderingapp.ParseOrderPayload([]byte(msg.WebAppData.Data))
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return r.reply(ctx, msg.Chat.ID, r.render.OrderRejected(domainErr.Message), nil)
		}
		if replyErr := r.reply(ctx, msg.Chat.ID, r.render.OrderProcessingFailed(), nil); replyErr != nil {
			return replyErr
		}
		return fmt.Errorf("failed to parse web-app payload: %w", err)
	}

	result, err := r.orders.Intake(ctx, payload, orderingapp.FallbackIdentity{
		UserID:        msg.From.ID,
		DisplayName:   msg.From.DisplayName(),
		ContactHandle: msg.From.ContactHandle(),
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return r.reply(ctx, msg.Chat.ID, r.render.OrderRejected(domainErr.Message), nil)
		}
		if replyErr := r.reply(ctx, msg.Chat.ID, r.render.OrderProcessingFailed(), nil); replyErr != nil {
			return replyErr
		}
		return fmt.Errorf("failed to process order: %w", err)
	}

	return r.reply(ctx, msg.Chat.ID, r.render.OrderConfirmation(result.Order), nil)
}
