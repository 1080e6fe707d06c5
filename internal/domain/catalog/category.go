package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/shared"
)

// MinCategoryNameLen is the minimum length of a category name
const MinCategoryNameLen = 2

// MaxCategoryNameLen is the maximum length of a category name
const MaxCategoryNameLen = 100

// Category represents a node in the two-level catalog tree.
// Root categories have a nil ParentID; subcategories reference a root.
// Deeper nesting is impossible by construction: NewSubcategory only
// accepts a root parent.
type Category struct {
	shared.BaseAggregateRoot
	Name     string     `gorm:"type:varchar(100);not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewRootCategory creates a new top-level category
func NewRootCategory(name string) (*Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// NewSubcategory creates a new category under an existing root
func NewSubcategory(name string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if !parent.IsRoot() {
		return nil, shared.NewDomainError("INVALID_PARENT", "Subcategories can only be created under a root category")
	}

	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ParentID:          &parent.ID,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// normalizeCategoryName trims and validates a category name
func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < MinCategoryNameLen {
		return "", shared.NewDomainError("INVALID_NAME", "Category name must be at least 2 characters")
	}
	if len([]rune(name)) > MaxCategoryNameLen {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return name, nil
}
