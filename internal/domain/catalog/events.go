package catalog

import (
	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCategory = "Category"
	AggregateTypeProduct  = "Product"
)

// Event type constants
const (
	EventTypeCategoryCreated     = "CategoryCreated"
	EventTypeProductCreated      = "ProductCreated"
	EventTypeProductStockToggled = "ProductStockToggled"
)

// CategoryCreatedEvent is published when a new category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID  `json:"category_id"`
	Name       string     `json:"name"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
}

// NewCategoryCreatedEvent creates a new CategoryCreatedEvent
func NewCategoryCreatedEvent(category *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, category.ID),
		CategoryID:      category.ID,
		Name:            category.Name,
		ParentID:        category.ParentID,
	}
}

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID `json:"product_id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		CategoryID:      product.CategoryID,
		Name:            product.Name,
		Price:           product.Price.String(),
	}
}

// ProductStockToggledEvent is published when a product's stock flag flips
type ProductStockToggledEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	InStock   bool      `json:"in_stock"`
}

// NewProductStockToggledEvent creates a new ProductStockToggledEvent
func NewProductStockToggledEvent(product *Product) *ProductStockToggledEvent {
	return &ProductStockToggledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockToggled, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		InStock:         product.InStock,
	}
}
