package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PublishWarning reports a snapshot publish that failed after its
// triggering mutation was already committed. The mutation stands; callers
// surface the warning instead of rolling back.
type PublishWarning struct {
	Err error
}

// AddProductInput carries the fields of a new product
type AddProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	PhotoKey    string
}

// Service handles catalog administration. Every mutation commits first,
// then synchronously republishes the storefront snapshot.
type Service struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	photos     PhotoStore
	rebuilder  Rebuilder
}

// NewService creates a new catalog Service
func NewService(
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	photos PhotoStore,
	rebuilder Rebuilder,
) *Service {
	return &Service{
		categories: categories,
		products:   products,
		photos:     photos,
		rebuilder:  rebuilder,
	}
}

// AddCategory creates a root category (nil parentID) or a subcategory
func (s *Service) AddCategory(ctx context.Context, name string, parentID *uuid.UUID) (*catalog.Category, *PublishWarning, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "add_category")
	defer span.End()

	var (
		category *catalog.Category
		err      error
	)

	if parentID == nil {
		category, err = catalog.NewRootCategory(name)
	} else {
		var parent *catalog.Category
		parent, err = s.categories.FindByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				err = shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			telemetry.RecordError(span, err)
			return nil, nil, err
		}
		category, err = catalog.NewSubcategory(name, parent)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	if err := s.categories.Save(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrCategoryID, category.ID)
	return category, s.publish(ctx), nil
}

// DeleteCategory removes a category, its subcategories, and every product
// bound to any of them
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) (*catalog.SubtreeDeletion, *PublishWarning, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "delete_category",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, id))
	defer span.End()

	deletion, err := s.categories.DeleteSubtree(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	telemetry.SetAttribute(span, "categories_removed", len(deletion.CategoryIDs))
	telemetry.SetAttribute(span, "products_removed", deletion.ProductsRemoved)
	return deletion, s.publish(ctx), nil
}

// CategoryName returns the display name of a category
func (s *Service) CategoryName(ctx context.Context, id uuid.UUID) (string, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return category.Name, nil
}

// ListRootCategories returns all root categories, name-ordered
func (s *Service) ListRootCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.FindRoots(ctx)
}

// ListSubcategories returns the direct children of a category, name-ordered
func (s *Service) ListSubcategories(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error) {
	return s.categories.FindChildren(ctx, parentID)
}

// ListAllCategories returns the whole tree, roots ahead of subcategories
func (s *Service) ListAllCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.FindAll(ctx)
}

// ListLeafCategories returns the categories a product may be bound to
func (s *Service) ListLeafCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.FindLeaves(ctx)
}

// AddProduct creates a product bound to a leaf category
func (s *Service) AddProduct(ctx context.Context, input AddProductInput) (*catalog.Product, *PublishWarning, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "add_product",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, input.CategoryID))
	defer span.End()

	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	hasChildren, err := s.categories.HasChildren(ctx, input.CategoryID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}
	if hasChildren {
		err := shared.NewDomainError("NOT_LEAF", "Products can only be added to leaf categories")
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	product, err := catalog.NewProduct(input.CategoryID, input.Name, input.Description, input.Price, input.PhotoKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrProductID, product.ID)
	return product, s.publish(ctx), nil
}

// GetProduct returns one product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}

// ListProducts returns all products, name-ordered
func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products.FindAll(ctx)
}

// ListProductsByCategory returns the products bound to a category
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	return s.products.FindByCategory(ctx, categoryID)
}

// DeleteProduct removes a product and its stored photo, if any
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) (*PublishWarning, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "delete_product",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id))
	defer span.End()

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if product.HasPhoto() {
		// Cleanup is best-effort: an orphaned object must not fail the
		// committed deletion
		if err := s.photos.Delete(ctx, product.PhotoKey); err != nil {
			logger.L(ctx).Warn("failed to delete product photo",
				zap.String("product_id", id.String()),
				zap.String("photo_key", product.PhotoKey),
				zap.Error(err),
			)
		}
	}

	return s.publish(ctx), nil
}

// ToggleStock flips a product's in-stock flag and returns the new value
func (s *Service) ToggleStock(ctx context.Context, id uuid.UUID) (bool, *PublishWarning, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "toggle_stock",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id))
	defer span.End()

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return false, nil, err
	}

	inStock := product.ToggleStock()

	if err := s.products.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return false, nil, err
	}

	telemetry.SetAttribute(span, "in_stock", inStock)
	return inStock, s.publish(ctx), nil
}

// publish republishes the snapshot after a committed mutation. Failure is
// returned as a warning, never as an operation error.
func (s *Service) publish(ctx context.Context) *PublishWarning {
	if err := s.rebuilder.Rebuild(ctx); err != nil {
		logger.L(ctx).Warn("snapshot publish failed after committed mutation", zap.Error(err))
		return &PublishWarning{Err: err}
	}
	return nil
}
