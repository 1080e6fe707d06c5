package bot

import (
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

func buttonRow(buttons ...telegram.InlineKeyboardButton) []telegram.InlineKeyboardButton {
	return buttons
}

func callbackButton(text, data string) telegram.InlineKeyboardButton {
	return telegram.InlineKeyboardButton{Text: text, CallbackData: data}
}

// mainMenuKeyboard is the landing keyboard: the shop web app for
// everyone, plus the admin panel entry for the administrator
func mainMenuKeyboard(webAppURL string, isAdmin bool) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, 2)
	if webAppURL != "" {
		rows = append(rows, buttonRow(telegram.InlineKeyboardButton{
			Text:   "🛒 Open shop",
			WebApp: &telegram.WebAppInfo{URL: webAppURL},
		}))
	}
	if isAdmin {
		rows = append(rows, buttonRow(callbackButton("⚙️ Admin panel", cbAdminPanel)))
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func adminPanelKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("➕ Add category", cbAddCategory)),
		buttonRow(callbackButton("➕ Add product", cbAddProduct)),
		buttonRow(callbackButton("📋 Manage categories", cbManageCategories)),
		buttonRow(callbackButton("📦 Manage products", cbManageProducts)),
		buttonRow(callbackButton("🧾 Orders", cbOrdersMenu)),
		buttonRow(callbackButton("🗑 Clear all data", cbClearAll)),
		buttonRow(callbackButton("🏠 Main menu", cbMainMenu)),
	}}
}

func categoryTypeKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("📁 Root category", cbAddCategoryRoot)),
		buttonRow(callbackButton("📂 Subcategory", cbAddCategorySub)),
		buttonRow(callbackButton("🔙 Back", cbAdminPanel)),
	}}
}

// categoryPickKeyboard renders one button per category, its id packed
// into the callback data behind the given prefix
func categoryPickKeyboard(categories []catalog.Category, prefix string) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(categories)+1)
	for _, category := range categories {
		rows = append(rows, buttonRow(callbackButton(category.Name, prefix+category.ID.String())))
	}
	rows = append(rows, buttonRow(callbackButton("🔙 Back", cbAdminPanel)))
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// manageCategoriesKeyboard lists roots with their subcategories indented
// underneath. Tapping a row deletes that category and its subtree.
func manageCategoriesKeyboard(categories []catalog.Category) *telegram.InlineKeyboardMarkup {
	children := make(map[string][]catalog.Category)
	roots := make([]catalog.Category, 0, len(categories))
	for _, category := range categories {
		if category.ParentID == nil {
			roots = append(roots, category)
			continue
		}
		key := category.ParentID.String()
		children[key] = append(children[key], category)
	}

	rows := make([][]telegram.InlineKeyboardButton, 0, len(categories)+1)
	for _, root := range roots {
		rows = append(rows, buttonRow(callbackButton("📁 "+root.Name, cbPrefixDeleteCategory+root.ID.String())))
		for _, child := range children[root.ID.String()] {
			rows = append(rows, buttonRow(callbackButton("└ "+child.Name, cbPrefixDeleteCategory+child.ID.String())))
		}
	}
	rows = append(rows, buttonRow(callbackButton("🔙 Back", cbAdminPanel)))
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func manageProductsKeyboard(products []catalog.Product, render *Renderer) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(products)+1)
	for _, product := range products {
		rows = append(rows, buttonRow(callbackButton(render.ProductLabel(&product), cbPrefixViewProduct+product.ID.String())))
	}
	rows = append(rows, buttonRow(callbackButton("🔙 Back", cbAdminPanel)))
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// productCardKeyboard carries the per-product actions. The card may be a
// photo message, which cannot be edited into a text menu, so it has no
// back button; the product list stays in the chat above it.
func productCardKeyboard(id string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(
			callbackButton("🔄 Toggle stock", cbPrefixToggleProduct+id),
			callbackButton("🗑 Delete", cbPrefixDeleteProduct+id),
		),
	}}
}

func cancelKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("❌ Cancel", cbAdminPanel)),
	}}
}

func skipPhotoKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("⏭ Skip photo", cbSkipPhoto)),
		buttonRow(callbackButton("❌ Cancel", cbAdminPanel)),
	}}
}

func backToPanelKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("⚙️ Admin panel", cbAdminPanel)),
	}}
}

func backToManageCategoriesKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("📋 Categories", cbManageCategories)),
		buttonRow(callbackButton("⚙️ Admin panel", cbAdminPanel)),
	}}
}

func ordersMenuKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("🆕 New orders", cbOrdersNew)),
		buttonRow(callbackButton("📋 All orders", cbOrdersAll)),
		buttonRow(callbackButton("✅ Mark all processed", cbOrdersDoneAll)),
		buttonRow(callbackButton("🔙 Back", cbAdminPanel)),
	}}
}

// newOrdersKeyboard offers one mark-processed button per listed order
func newOrdersKeyboard(orders []ordering.Order, render *Renderer) *telegram.InlineKeyboardMarkup {
	shown := orders
	if len(shown) > maxOrdersShown {
		shown = shown[:maxOrdersShown]
	}
	rows := make([][]telegram.InlineKeyboardButton, 0, len(shown)+2)
	for _, order := range shown {
		label := "✅ #" + shortID(order.ID) + " — " + render.Amount(order.TotalPrice)
		rows = append(rows, buttonRow(callbackButton(label, cbPrefixOrderDone+order.ID.String())))
	}
	if len(orders) > 0 {
		rows = append(rows, buttonRow(callbackButton("✅ Mark all processed", cbOrdersDoneAll)))
	}
	rows = append(rows, buttonRow(callbackButton("🔙 Back", cbOrdersMenu)))
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func ordersBackKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("🔙 Back", cbOrdersMenu)),
	}}
}

func confirmResetKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		buttonRow(callbackButton("⛔ Yes, delete everything", cbClearAllConfirm)),
		buttonRow(callbackButton("🔙 Back", cbAdminPanel)),
	}}
}
