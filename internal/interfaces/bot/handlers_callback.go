package bot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

func (r *Router) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	data := cb.Data

	if data == cbMainMenu {
		return r.showMainMenu(ctx, cb)
	}

	// everything past this point is the administrative surface
	if !r.auth.IsAdmin(cb.From.ID) {
		return r.answer(ctx, cb, r.render.AccessDenied())
	}

	switch data {
	case cbAdminPanel:
		return r.showAdminPanel(ctx, cb)
	case cbAddCategory:
		return r.startAddCategory(ctx, cb)
	case cbAddCategoryRoot:
		return r.chooseRootCategory(ctx, cb)
	case cbAddCategorySub:
		return r.chooseSubcategory(ctx, cb)
	case cbAddProduct:
		return r.startAddProduct(ctx, cb)
	case cbSkipPhoto:
		return r.skipProductPhoto(ctx, cb)
	case cbManageCategories:
		return r.showManageCategories(ctx, cb)
	case cbManageProducts:
		return r.showManageProducts(ctx, cb)
	case cbOrdersMenu:
		return r.showOrdersMenu(ctx, cb)
	case cbOrdersNew:
		return r.showNewOrders(ctx, cb)
	case cbOrdersAll:
		return r.showAllOrders(ctx, cb)
	case cbOrdersDoneAll:
		return r.markAllOrdersDone(ctx, cb)
	case cbClearAll:
		return r.askClearAll(ctx, cb)
	case cbClearAllConfirm:
		return r.confirmClearAll(ctx, cb)
	}

	if id, ok := callbackID(data, cbPrefixParentCategory); ok {
		return r.pickCategoryParent(ctx, cb, id)
	}
	if id, ok := callbackID(data, cbPrefixProductCategory); ok {
		return r.pickProductCategory(ctx, cb, id)
	}
	if id, ok := callbackID(data, cbPrefixDeleteCategory); ok {
		return r.deleteCategory(ctx, cb, id)
	}
	if id, ok := callbackID(data, cbPrefixViewProduct); ok {
		return r.viewProduct(ctx, cb, id)
	}
	if id, ok := callbackID(data, cbPrefixToggleProduct); ok {
		return r.toggleProduct(ctx, cb, id)
	}
	if id, ok := callbackID(data, cbPrefixDeleteProduct); ok {
		return r.deleteProduct(ctx, cb, id)
	}
	if id, ok := callbackID(data, cbPrefixOrderDone); ok {
		return r.markOrderDone(ctx, cb, id)
	}

	// stale or unknown button: just stop the client spinner
	return r.answer(ctx, cb, "")
}

// showMainMenu drops any live dialog and returns to the landing screen.
// It is the cancel path for every wizard, so it needs no authorization.
func (r *Router) showMainMenu(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	isAdmin := r.auth.IsAdmin(cb.From.ID)
	if err := r.editOrSend(ctx, cb, r.render.MainMenu(), mainMenuKeyboard(r.webAppURL, isAdmin)); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// renderAdminPanel rewrites the callback's message into the panel without
// acknowledging the callback; callers answer it themselves
func (r *Router) renderAdminPanel(ctx context.Context, cb *telegram.CallbackQuery) error {
	stats, err := r.maint.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect panel statistics: %w", err)
	}
	return r.editOrSend(ctx, cb, r.render.AdminPanel(stats), adminPanelKeyboard())
}

// showAdminPanel opens the panel, cancelling any dialog in progress
func (r *Router) showAdminPanel(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	if err := r.renderAdminPanel(ctx, cb); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// expireSession recovers from a tap that arrived without its dialog:
// the stale keyboard is replaced with the panel
func (r *Router) expireSession(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	if err := r.renderAdminPanel(ctx, cb); err != nil {
		return err
	}
	return r.answer(ctx, cb, r.render.SessionExpired())
}

func (r *Router) showManageCategories(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	categories, err := r.catalog.ListAllCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		if err := r.editOrSend(ctx, cb, r.render.NoCategories(), backToPanelKeyboard()); err != nil {
			return err
		}
		return r.answer(ctx, cb, "")
	}
	if err := r.editOrSend(ctx, cb, r.render.ManageCategoriesPrompt(), manageCategoriesKeyboard(categories)); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// deleteCategory removes a category with its whole subtree and reports
// what went away
func (r *Router) deleteCategory(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	name, err := r.catalog.CategoryName(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.answer(ctx, cb, r.render.SessionExpired())
		}
		return fmt.Errorf("failed to load category: %w", err)
	}

	deletion, warn, err := r.catalog.DeleteCategory(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.answer(ctx, cb, r.render.SessionExpired())
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := r.editOrSend(ctx, cb, r.render.CategoryDeleted(name, deletion, warn), backToManageCategoriesKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

func (r *Router) showManageProducts(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	products, err := r.catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	if len(products) == 0 {
		if err := r.editOrSend(ctx, cb, r.render.NoProducts(), backToPanelKeyboard()); err != nil {
			return err
		}
		return r.answer(ctx, cb, "")
	}
	if err := r.editOrSend(ctx, cb, r.render.ManageProductsPrompt(), manageProductsKeyboard(products, r.render)); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// viewProduct sends the product card as a fresh message, with the photo
// when one can be served
func (r *Router) viewProduct(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	product, err := r.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.answer(ctx, cb, r.render.SessionExpired())
		}
		return fmt.Errorf("failed to load product: %w", err)
	}

	categoryName, err := r.catalog.CategoryName(ctx, product.CategoryID)
	if err != nil {
		categoryName = ""
	}

	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}

	caption := r.render.ProductCard(product, categoryName)
	markup := productCardKeyboard(product.ID.String())

	if photoRef := r.resolvePhotoRef(ctx, product.PhotoKey); photoRef != "" {
		_, err := r.messenger.SendPhoto(ctx, telegram.SendPhotoParams{
			ChatID:      chatID,
			Photo:       photoRef,
			Caption:     caption,
			ParseMode:   parseModeHTML,
			ReplyMarkup: markup,
		})
		if err == nil {
			return r.answer(ctx, cb, "")
		}
		// unservable reference, degrade to the text card
		logger.L(ctx).Warn("failed to send product photo",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}

	if err := r.reply(ctx, chatID, caption, markup); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// resolvePhotoRef picks the best transport reference for a stored photo:
// a resolved URL when the store can serve one, otherwise the raw key,
// which in passthrough mode is a transport file id
func (r *Router) resolvePhotoRef(ctx context.Context, photoKey string) string {
	if photoKey == "" {
		return ""
	}
	url, err := r.resolver.ResolveURL(ctx, photoKey)
	if err != nil {
		logger.L(ctx).Warn("photo URL resolution failed", zap.String("photo_key", photoKey), zap.Error(err))
		return ""
	}
	if url != "" {
		return url
	}
	return photoKey
}

func (r *Router) toggleProduct(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	inStock, warn, err := r.catalog.ToggleStock(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.answer(ctx, cb, r.render.SessionExpired())
		}
		return fmt.Errorf("failed to toggle stock: %w", err)
	}

	if warn != nil {
		chatID := cb.From.ID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		}
		if err := r.reply(ctx, chatID, r.render.publishWarningNote(warn), nil); err != nil {
			return err
		}
	}

	if inStock {
		return r.answer(ctx, cb, "✅ Now in stock")
	}
	return r.answer(ctx, cb, "🚫 Now out of stock")
}

func (r *Router) deleteProduct(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	warn, err := r.catalog.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.answer(ctx, cb, r.render.SessionExpired())
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if warn != nil {
		chatID := cb.From.ID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		}
		if err := r.reply(ctx, chatID, r.render.publishWarningNote(warn), nil); err != nil {
			return err
		}
	}

	return r.answer(ctx, cb, "🗑 Product deleted")
}

func (r *Router) showOrdersMenu(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	if err := r.editOrSend(ctx, cb, r.render.OrdersMenu(), ordersMenuKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// renderNewOrders rewrites the view without acknowledging the callback
func (r *Router) renderNewOrders(ctx context.Context, cb *telegram.CallbackQuery) error {
	orders, err := r.orders.ListNew(ctx)
	if err != nil {
		return fmt.Errorf("failed to list new orders: %w", err)
	}
	return r.editOrSend(ctx, cb, r.render.OrdersList("New orders", orders, false), newOrdersKeyboard(orders, r.render))
}

func (r *Router) showNewOrders(ctx context.Context, cb *telegram.CallbackQuery) error {
	if err := r.renderNewOrders(ctx, cb); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

func (r *Router) showAllOrders(ctx context.Context, cb *telegram.CallbackQuery) error {
	orders, err := r.orders.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.OrdersList("All orders", orders, true), ordersBackKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// markOrderDone processes one order, then refreshes the new-orders view
func (r *Router) markOrderDone(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	order, err := r.orders.MarkProcessed(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.answer(ctx, cb, r.render.SessionExpired())
		}
		return fmt.Errorf("failed to mark order processed: %w", err)
	}
	if err := r.renderNewOrders(ctx, cb); err != nil {
		return err
	}
	return r.answer(ctx, cb, fmt.Sprintf("✅ Order #%s processed", shortID(order.ID)))
}

func (r *Router) markAllOrdersDone(ctx context.Context, cb *telegram.CallbackQuery) error {
	count, err := r.orders.MarkAllProcessed(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark orders processed: %w", err)
	}
	if err := r.renderNewOrders(ctx, cb); err != nil {
		return err
	}
	return r.answer(ctx, cb, fmt.Sprintf("✅ Processed %d orders", count))
}

// askClearAll opens the destructive-reset confirmation. The pending
// confirmation is held as a session, so a stray confirm tap later, or
// from an old message, does nothing.
func (r *Router) askClearAll(ctx context.Context, cb *telegram.CallbackQuery) error {
	if err := r.sessions.Put(ctx, cb.From.ID, &conversation.ResetSession{}); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.ResetConfirmPrompt(), confirmResetKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

func (r *Router) confirmClearAll(ctx context.Context, cb *telegram.CallbackQuery) error {
	session, err := r.sessions.Get(ctx, cb.From.ID)
	if err != nil || session.Flow() != conversation.FlowReset {
		return r.expireSession(ctx, cb)
	}
	r.clearSession(ctx, cb.From.ID)

	result, warn, err := r.maint.Reset(ctx)
	if err != nil {
		if answerErr := r.answer(ctx, cb, r.render.SomethingWentWrong()); answerErr != nil {
			return answerErr
		}
		return fmt.Errorf("failed to reset data: %w", err)
	}

	if err := r.editOrSend(ctx, cb, r.render.ResetReport(result, warn), backToPanelKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}
