package ordering

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/shopbot/backend/internal/domain/ordering"
)

// timestampLayout matches the notification format the channel readers are
// used to
const timestampLayout = "02.01.2006 15:04:05"

// NotificationRenderer renders an order into the human-readable message
// delivered to the notification channel. Numbers follow the configured
// locale's grouping and decimal conventions.
type NotificationRenderer struct {
	printer *message.Printer
}

// NewNotificationRenderer creates a renderer for the given BCP-47 locale
// tag. An empty or unparseable tag falls back to English.
func NewNotificationRenderer(locale string) *NotificationRenderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &NotificationRenderer{printer: message.NewPrinter(tag)}
}

// Render produces the channel notification for one order
func (r *NotificationRenderer) Render(order *ordering.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order #%s\n\n", shortOrderID(order))
	fmt.Fprintf(&b, "Customer: %s\n", order.DisplayName)
	fmt.Fprintf(&b, "ID: %d\n", order.UserID)
	if order.ContactHandle != "" {
		fmt.Fprintf(&b, "Contact: %s\n", order.ContactHandle)
	}
	b.WriteString("\n")

	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s — %d × %s = %s\n",
			i+1, item.Name, item.Quantity, r.Amount(item.UnitPrice), r.Amount(item.LineTotal()))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", r.Amount(order.TotalPrice))
	b.WriteString(order.CreatedAt.Format(timestampLayout))

	return b.String()
}

// Amount formats a monetary value per the renderer's locale
func (r *NotificationRenderer) Amount(d decimal.Decimal) string {
	return r.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

func shortOrderID(order *ordering.Order) string {
	id := order.ID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
