package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

const (
	parseModeHTML = "HTML"

	defaultPollRetryDelay = 3 * time.Second
)

// Deps bundles everything the conversational router drives
type Deps struct {
	Messenger     Messenger
	Poller        Poller
	Authorizer    Authorizer
	Sessions      conversation.Store
	Catalog       CatalogService
	Orders        OrderService
	Maintenance   MaintenanceService
	PhotoIngester catalogapp.PhotoIngester
	PhotoResolver PhotoResolver
	WebAppURL     string
	Locale        string
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithPollRetryDelay sets the pause after a failed update poll
func WithPollRetryDelay(delay time.Duration) RouterOption {
	return func(r *Router) {
		r.retryDelay = delay
	}
}

// Router owns the long-polling loop and dispatches every inbound update
// to the matching handler. Updates are handled sequentially, so no two
// mutations ever race each other.
type Router struct {
	messenger  Messenger
	poller     Poller
	auth       Authorizer
	sessions   conversation.Store
	catalog    CatalogService
	orders     OrderService
	maint      MaintenanceService
	photos     catalogapp.PhotoIngester
	resolver   PhotoResolver
	render     *Renderer
	webAppURL  string
	retryDelay time.Duration
}

// NewRouter creates the conversational router
func NewRouter(deps Deps, opts ...RouterOption) (*Router, error) {
	switch {
	case deps.Messenger == nil:
		return nil, errors.New("messenger is required")
	case deps.Poller == nil:
		return nil, errors.New("poller is required")
	case deps.Authorizer == nil:
		return nil, errors.New("authorizer is required")
	case deps.Sessions == nil:
		return nil, errors.New("session store is required")
	case deps.Catalog == nil:
		return nil, errors.New("catalog service is required")
	case deps.Orders == nil:
		return nil, errors.New("order service is required")
	case deps.Maintenance == nil:
		return nil, errors.New("maintenance service is required")
	case deps.PhotoIngester == nil:
		return nil, errors.New("photo ingester is required")
	case deps.PhotoResolver == nil:
		return nil, errors.New("photo resolver is required")
	}

	router := &Router{
		messenger:  deps.Messenger,
		poller:     deps.Poller,
		auth:       deps.Authorizer,
		sessions:   deps.Sessions,
		catalog:    deps.Catalog,
		orders:     deps.Orders,
		maint:      deps.Maintenance,
		photos:     deps.PhotoIngester,
		resolver:   deps.PhotoResolver,
		render:     NewRenderer(deps.Locale),
		webAppURL:  deps.WebAppURL,
		retryDelay: defaultPollRetryDelay,
	}

	for _, opt := range opts {
		opt(router)
	}

	return router, nil
}

// Run polls for updates until the context is cancelled. Poll failures
// are logged and retried after a short pause; handler failures never
// stop the loop.
func (r *Router) Run(ctx context.Context) error {
	logger.L(ctx).Info("bot update loop started")

	var offset int64
	for {
		updates, err := r.poller.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L(ctx).Error("failed to fetch updates", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			r.dispatch(ctx, update)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// dispatch routes one update to its handler, absorbing panics and
// logging errors so a single bad update cannot take the loop down
func (r *Router) dispatch(ctx context.Context, update telegram.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.L(ctx).Error("update handler panicked",
				zap.Int64("update_id", update.UpdateID),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = r.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		err = r.handleMessage(ctx, update.Message)
	}
	if err != nil {
		logger.L(ctx).Error("update handling failed",
			zap.Int64("update_id", update.UpdateID),
			zap.Error(err),
		)
	}
}

// reply sends a new HTML-formatted message to a chat
func (r *Router) reply(ctx context.Context, chatID int64, text string, markup any) error {
	params := telegram.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := r.messenger.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// editOrSend rewrites the message a callback came from, falling back to
// a fresh message when the original is not addressable
func (r *Router) editOrSend(ctx context.Context, cb *telegram.CallbackQuery, text string, markup *telegram.InlineKeyboardMarkup) error {
	if cb.Message == nil {
		var anyMarkup any
		if markup != nil {
			anyMarkup = markup
		}
		return r.reply(ctx, cb.From.ID, text, anyMarkup)
	}
	_, err := r.messenger.EditMessageText(ctx, telegram.EditMessageTextParams{
		ChatID:      cb.Message.Chat.ID,
		MessageID:   cb.Message.MessageID,
		Text:        text,
		ParseMode:   parseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// answer acknowledges a callback query, optionally with a toast text
func (r *Router) answer(ctx context.Context, cb *telegram.CallbackQuery, text string) error {
	if err := r.messenger.AnswerCallbackQuery(ctx, cb.ID, text); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// clearSession drops the user's session; a missing session is fine
func (r *Router) clearSession(ctx context.Context, userID int64) {
	if err := r.sessions.Clear(ctx, userID); err != nil {
		logger.L(ctx).Warn("failed to clear session", zap.Int64("user_id", userID), zap.Error(err))
	}
}
