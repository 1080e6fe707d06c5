package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds all products, name-ordered
	FindAll(ctx context.Context) ([]Product, error)

	// FindByCategory finds all products in a category, name-ordered
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts all products
	Count(ctx context.Context) (int64, error)

	// CountInStock counts products currently marked in stock
	CountInStock(ctx context.Context) (int64, error)
}
