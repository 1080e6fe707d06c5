package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindRoots finds all root categories, name-ordered
func (r *GormCategoryRepository) FindRoots(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindChildren finds all direct children of a category, name-ordered
func (r *GormCategoryRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindAll finds all categories with roots ahead of their subcategories
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Order("parent_id NULLS FIRST").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindLeaves finds all categories without children. Only these may carry
// products.
func (r *GormCategoryRepository) FindLeaves(ctx context.Context) ([]catalog.Category, error) {
	parents := r.db.Model(&catalog.Category{}).
		Select("parent_id").
		Where("parent_id IS NOT NULL")

	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("id NOT IN (?)", parents).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// HasChildren checks if a category has any children
func (r *GormCategoryRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where("parent_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteSubtree deletes a category, its children, and every product bound to
// any of them in a single transaction. The tree is two levels deep, so one
// child pass collects the whole subtree.
func (r *GormCategoryRepository) DeleteSubtree(ctx context.Context, id uuid.UUID) (*catalog.SubtreeDeletion, error) {
	var deletion catalog.SubtreeDeletion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root catalog.Category
		if err := tx.First(&root, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		ids := []uuid.UUID{root.ID}
		var children []catalog.Category
		if err := tx.Where("parent_id = ?", root.ID).Find(&children).Error; err != nil {
			return err
		}
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		products := tx.Where("category_id IN ?", ids).Delete(&catalog.Product{})
		if products.Error != nil {
			return products.Error
		}
		if err := tx.Where("id IN ?", ids).Delete(&catalog.Category{}).Error; err != nil {
			return err
		}

		deletion = catalog.SubtreeDeletion{
			CategoryIDs:     ids,
			ProductsRemoved: products.RowsAffected,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deletion, nil
}

// Count counts all categories
func (r *GormCategoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Category{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
