package catalog

import (
	"context"

	"github.com/google/uuid"
)

// SubtreeDeletion reports what a cascading category delete removed
type SubtreeDeletion struct {
	CategoryIDs     []uuid.UUID
	ProductsRemoved int64
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindRoots finds all root categories, name-ordered
	FindRoots(ctx context.Context) ([]Category, error)

	// FindChildren finds all direct children of a category, name-ordered
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)

	// FindAll finds all categories, grouped by parent
	FindAll(ctx context.Context) ([]Category, error)

	// FindLeaves finds all categories with zero children, the only
	// valid binding targets for a product
	FindLeaves(ctx context.Context) ([]Category, error)

	// HasChildren checks if a category has any children
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// DeleteSubtree deletes a category, its descendants, and every
	// product bound to any of them in a single transaction
	DeleteSubtree(ctx context.Context, id uuid.UUID) (*SubtreeDeletion, error)

	// Count counts all categories
	Count(ctx context.Context) (int64, error)
}
