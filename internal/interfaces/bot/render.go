package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/application/maintenance"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

// maxOrdersShown caps order listings so they stay inside the transport's
// message size limit
const maxOrdersShown = 20

const listTimestampLayout = "02.01.2006 15:04:05"

// Renderer builds every user-visible text of the conversational surface.
// Messages use HTML formatting; all interpolated user data is escaped.
// Amounts are rendered with the configured locale's number formatting.
type Renderer struct {
	printer *message.Printer
}

// NewRenderer creates a renderer for the given BCP 47 language tag,
// falling back to English when the tag does not parse
func NewRenderer(locale string) *Renderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Renderer{printer: message.NewPrinter(tag)}
}

// Amount formats a money amount with locale-aware digit grouping
func (r *Renderer) Amount(amount decimal.Decimal) string {
	return r.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(2)))
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func esc(s string) string {
	return html.EscapeString(s)
}

func (r *Renderer) Welcome(firstName string) string {
	var b strings.Builder
	b.WriteString("🎉 <b>Welcome to the shop!</b>\n\n")
	if firstName != "" {
		fmt.Fprintf(&b, "Hi, %s! 👋\n\n", esc(firstName))
	}
	b.WriteString("🛒 <b>Here you can:</b>\n")
	b.WriteString("• Browse the full catalog\n")
	b.WriteString("• Collect a cart in the mini app\n")
	b.WriteString("• Check out in a couple of taps\n\n")
	b.WriteString("Tap the button below to open the shop! 👇")
	return b.String()
}

func (r *Renderer) MainMenu() string {
	return "🏠 <b>Main menu</b>\n\nChoose an action:"
}

func (r *Renderer) AdminPanel(stats *maintenance.Stats) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Admin panel</b>\n\n")
	b.WriteString("📊 <b>Statistics:</b>\n")
	fmt.Fprintf(&b, "📁 Categories: %d\n", stats.Categories)
	fmt.Fprintf(&b, "🛒 Products: %d (%d in stock)\n", stats.Products, stats.ProductsInStock)
	fmt.Fprintf(&b, "🧾 Orders: %d new / %d total\n", stats.OrdersNew, stats.OrdersTotal)
	fmt.Fprintf(&b, "✉️ Pending deliveries: %d\n\n", stats.PendingDeliveries)
	b.WriteString("Choose an action:")
	return b.String()
}

func (r *Renderer) ChatInfo(chat telegram.Chat) string {
	title := chat.Title
	if title == "" {
		title = "private chat"
	}
	var b strings.Builder
	b.WriteString("📊 <b>Chat info:</b>\n")
	fmt.Fprintf(&b, "🆔 ID: <code>%d</code>\n", chat.ID)
	fmt.Fprintf(&b, "📝 Type: %s\n", esc(chat.Type))
	fmt.Fprintf(&b, "🏷 Title: %s\n\n", esc(title))
	b.WriteString("Use this ID as the order channel in the configuration.")
	return b.String()
}

func (r *Renderer) AccessDenied() string {
	return "❌ You do not have access to this."
}

func (r *Renderer) SessionExpired() string {
	return "This dialog has expired, start again from the panel."
}

// publishWarningNote is appended to a mutation confirmation when the
// storefront snapshot could not be republished
func (r *Renderer) publishWarningNote(warn *catalogapp.PublishWarning) string {
	if warn == nil {
		return ""
	}
	return "\n\n⚠️ The change is saved, but publishing the storefront failed. The web catalog may be stale until the next successful publish."
}

func (r *Renderer) CategoryTypePrompt() string {
	return "➕ <b>New category</b>\n\nWhat kind of category is it?"
}

func (r *Renderer) CategoryParentPrompt() string {
	return "📂 <b>New subcategory</b>\n\nPick the parent category:"
}

func (r *Renderer) CategoryNamePrompt() string {
	return "✍️ Send the category name (at least 2 characters):"
}

func (r *Renderer) PickFromListPrompt() string {
	return "Please pick an option from the buttons above."
}

func (r *Renderer) TryAgain(reason string) string {
	return "❌ " + esc(reason) + "\nTry again:"
}

// StartOver is used when a dialog cannot continue, e.g. its category
// was deleted underneath it
func (r *Renderer) StartOver(reason string) string {
	return "❌ " + esc(reason) + "\n\nStart again from the panel."
}

func (r *Renderer) CategoryCreated(category *catalog.Category, warn *catalogapp.PublishWarning) string {
	kind := "Category"
	if category.ParentID != nil {
		kind = "Subcategory"
	}
	return fmt.Sprintf("✅ %s <b>%s</b> created!", kind, esc(category.Name)) + r.publishWarningNote(warn)
}

func (r *Renderer) CategoryDeleted(name string, deletion *catalog.SubtreeDeletion, warn *catalogapp.PublishWarning) string {
	return fmt.Sprintf(
		"🗑 Deleted <b>%s</b>: %d categories and %d products removed.",
		esc(name), len(deletion.CategoryIDs), deletion.ProductsRemoved,
	) + r.publishWarningNote(warn)
}

func (r *Renderer) ManageCategoriesPrompt() string {
	return "📋 <b>Manage categories</b>\n\nTap a category to delete it together with its subcategories and products:"
}

func (r *Renderer) NoCategories() string {
	return "There are no categories yet. Add one first."
}

func (r *Renderer) ProductCategoryPrompt() string {
	return "➕ <b>New product</b>\n\nPick the category for the product:"
}

func (r *Renderer) ProductNamePrompt() string {
	return fmt.Sprintf("✍️ Send the product name (at least %d characters):", catalog.MinProductNameLen)
}

func (r *Renderer) ProductDescriptionPrompt(name string) string {
	return fmt.Sprintf("📝 <b>%s</b>\n\nNow send the description (at least %d characters):", esc(name), catalog.MinDescriptionLen)
}

func (r *Renderer) ProductPricePrompt() string {
	return "💰 Send the price (a positive number, comma or dot as decimal separator):"
}

func (r *Renderer) ProductPhotoPrompt() string {
	return "📷 Send a product photo, or skip this step:"
}

func (r *Renderer) PhotoSaveFailed() string {
	return "❌ Could not save the photo. Send another one, or skip this step."
}

func (r *Renderer) ProductCreated(product *catalog.Product, warn *catalogapp.PublishWarning) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Product <b>%s</b> created!\n\n", esc(product.Name))
	fmt.Fprintf(&b, "💰 Price: %s\n", r.Amount(product.Price))
	if product.PhotoKey == "" {
		b.WriteString("📷 No photo")
	} else {
		b.WriteString("📷 Photo attached")
	}
	return b.String() + r.publishWarningNote(warn)
}

// ProductLabel is the compact one-line form used on keyboard buttons
func (r *Renderer) ProductLabel(product *catalog.Product) string {
	marker := "✅"
	if !product.InStock {
		marker = "🚫"
	}
	return marker + " " + product.Name + " — " + r.Amount(product.Price)
}

func (r *Renderer) ProductCard(product *catalog.Product, categoryName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", esc(product.Name))
	fmt.Fprintf(&b, "%s\n\n", esc(product.Description))
	fmt.Fprintf(&b, "💰 Price: %s\n", r.Amount(product.Price))
	if categoryName != "" {
		fmt.Fprintf(&b, "📁 Category: %s\n", esc(categoryName))
	}
	if product.InStock {
		b.WriteString("✅ In stock")
	} else {
		b.WriteString("🚫 Out of stock")
	}
	return b.String()
}

func (r *Renderer) ManageProductsPrompt() string {
	return "📦 <b>Manage products</b>\n\nTap a product to see its card and actions:"
}

func (r *Renderer) NoProducts() string {
	return "There are no products yet. Add one first."
}

func (r *Renderer) OrdersMenu() string {
	return "🧾 <b>Orders</b>\n\nChoose a view:"
}

// OrdersList renders a numbered order listing, newest first as handed
// in, capped at maxOrdersShown entries
func (r *Renderer) OrdersList(title string, orders []ordering.Order, withStatus bool) string {
	if len(orders) == 0 {
		return fmt.Sprintf("🧾 <b>%s</b>\n\nNothing here yet.", esc(title))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 <b>%s</b>\n\n", esc(title))
	shown := orders
	if len(shown) > maxOrdersShown {
		shown = shown[:maxOrdersShown]
	}
	for i, order := range shown {
		fmt.Fprintf(&b, "%d. <b>#%s</b> • %s • %s",
			i+1, shortID(order.ID), esc(order.DisplayName), r.Amount(order.TotalPrice))
		if withStatus {
			badge := "🆕"
			if order.Status == ordering.OrderStatusProcessed {
				badge = "✅"
			}
			b.WriteString(" • " + badge)
		}
		b.WriteString("\n   " + order.CreatedAt.Format(listTimestampLayout) + "\n")
	}
	if len(orders) > len(shown) {
		fmt.Fprintf(&b, "\n… and %d more", len(orders)-len(shown))
	}
	return b.String()
}

// OrderConfirmation is the synchronous reply to the order submitter,
// sent regardless of the notification delivery outcome
func (r *Renderer) OrderConfirmation(order *ordering.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>Order #%s confirmed!</b>\n\n", shortID(order.ID))
	fmt.Fprintf(&b, "💰 Total: <b>%s</b>\n", r.Amount(order.TotalPrice))
	fmt.Fprintf(&b, "📦 Items: <b>%d</b>\n\n", len(order.Items))
	b.WriteString("📞 You will be contacted within 5-15 minutes!")
	return b.String()
}

func (r *Renderer) OrderRejected(reason string) string {
	return "❌ " + esc(reason)
}

func (r *Renderer) OrderProcessingFailed() string {
	return "❌ Could not process the order. Please try again."
}

func (r *Renderer) ResetConfirmPrompt() string {
	var b strings.Builder
	b.WriteString("⚠️ <b>Delete all data?</b>\n\n")
	b.WriteString("This permanently removes every category, product, order and delivery journal entry, and publishes an empty storefront.\n\n")
	b.WriteString("This cannot be undone.")
	return b.String()
}

func (r *Renderer) ResetReport(result *maintenance.PurgeResult, warn *catalogapp.PublishWarning) string {
	var b strings.Builder
	b.WriteString("🗑 <b>All data cleared</b>\n\n")
	fmt.Fprintf(&b, "📁 Categories: %d\n", result.Categories)
	fmt.Fprintf(&b, "🛒 Products: %d\n", result.Products)
	fmt.Fprintf(&b, "🧾 Orders: %d\n", result.Orders)
	fmt.Fprintf(&b, "✉️ Journal entries: %d", result.DeliveryRecords)
	return b.String() + r.publishWarningNote(warn)
}

func (r *Renderer) SomethingWentWrong() string {
	return "❌ Something went wrong. Please try again."
}
