package ordering

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/shopbot/backend/internal/domain/shared"
)

// PayloadTypeOrder tags a checkout submission
const PayloadTypeOrder = "order"

// payloadValidator is shared across submissions; the validator caches
// struct metadata, so one instance serves them all
var payloadValidator = validator.New()

// OrderPayload is the document the storefront web app submits at checkout.
// The total is trusted verbatim; the intake does not recompute it from the
// item lines.
type OrderPayload struct {
	Type          string          `json:"type" validate:"required,eq=order"`
	Items         []PayloadItem   `json:"items" validate:"min=1"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	UserID        int64           `json:"user_id,omitempty"`
	DisplayName   string          `json:"display_name,omitempty"`
	ContactHandle string          `json:"contact_handle,omitempty"`
}

// PayloadItem is one ordered line
type PayloadItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Validate rejects payloads that must not reach the order store
func (p *OrderPayload) Validate() error {
	err := payloadValidator.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].StructField() {
		case "Type":
			return shared.NewDomainError("INVALID_PAYLOAD", "Unrecognized payload type")
		case "Items":
			return shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
		}
	}
	return shared.NewDomainError("INVALID_PAYLOAD", "Malformed order payload")
}

// ParseOrderPayload decodes and validates a raw checkout submission
func ParseOrderPayload(data []byte) (*OrderPayload, error) {
	var payload OrderPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.NewDomainError("INVALID_PAYLOAD", "Malformed order payload"), err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FallbackIdentity fills identity fields the payload leaves blank, taken
// from the transport-level sender
type FallbackIdentity struct {
	UserID        int64
	DisplayName   string
	ContactHandle string
}
