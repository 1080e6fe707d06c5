package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Validation limits for product fields
const (
	MinProductNameLen = 3
	MaxProductNameLen = 200
	MinDescriptionLen = 5
	MaxPhotoKeyLen    = 500
)

// Product represents a sellable item bound to a leaf category.
// Leafness of the category is checked at creation time only; a later
// category deletion removes the product through the cascade instead of
// repairing the reference.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PhotoKey    string          `gorm:"type:varchar(500)"` // opaque storage handle, empty when no photo
	InStock     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product. The photo key is optional.
func NewProduct(categoryID uuid.UUID, name, description string, price decimal.Decimal, photoKey string) (*Product, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY_ID", "Category ID cannot be empty")
	}

	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	if err := validatePrice(price); err != nil {
		return nil, err
	}

	if err := validatePhotoKey(photoKey); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		Name:              name,
		Description:       description,
		Price:             price,
		PhotoKey:          photoKey,
		InStock:           true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// ToggleStock flips the in-stock flag and returns the new value
func (p *Product) ToggleStock() bool {
	p.InStock = !p.InStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStockToggledEvent(p))

	return p.InStock
}

// HasPhoto returns true if the product carries a photo reference
func (p *Product) HasPhoto() bool {
	return p.PhotoKey != ""
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if len([]rune(name)) < MinProductNameLen {
		return shared.NewDomainError("INVALID_NAME", "Product name must be at least 3 characters")
	}
	if len([]rune(name)) > MaxProductNameLen {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

// validateDescription validates the product description
func validateDescription(description string) error {
	if len([]rune(description)) < MinDescriptionLen {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description must be at least 5 characters")
	}
	return nil
}

// validatePrice validates the product price
func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Product price must be a positive number")
	}
	return nil
}

// validatePhotoKey validates the photo storage key
func validatePhotoKey(key string) error {
	if key == "" {
		return nil
	}
	if len(key) > MaxPhotoKeyLen {
		return shared.NewDomainError("INVALID_PHOTO_KEY", "Photo key cannot exceed 500 characters")
	}
	if strings.Contains(key, "..") {
		return shared.NewDomainError("INVALID_PHOTO_KEY", "Photo key cannot contain path traversal sequences")
	}
	return nil
}
