package catalog

import (
	"strings"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ParsePrice parses user-entered price text into a positive decimal.
// A comma is accepted as the decimal separator ("99,90" and "99.90" are
// equivalent); anything non-numeric or non-positive is rejected.
func ParsePrice(input string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	if normalized == "" {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price cannot be empty")
	}

	price, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price must be a number")
	}
	if !price.IsPositive() {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price must be a positive number")
	}

	return price, nil
}
