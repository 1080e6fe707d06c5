package snapshot

import (
	"context"

	"go.uber.org/zap"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

// CategoryEntry is one category row of the published storefront snapshot
type CategoryEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// ProductEntry is one product row of the published storefront snapshot.
// PhotoURL is null when the product has no photo or its URL could not be
// resolved at publish time.
type ProductEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  string  `json:"category_id"`
	InStock     bool    `json:"in_stock"`
	PhotoURL    *string `json:"photo_url"`
}

// Storefront is a full-replace view of the catalog, regenerated after
// every committed mutation
type Storefront struct {
	Categories []CategoryEntry
	Products   []ProductEntry
}

// Publisher persists a storefront snapshot somewhere consumers can read it
type Publisher interface {
	Publish(ctx context.Context, storefront *Storefront) error
}

// PhotoURLResolver turns stored photo keys into browser-usable URLs.
// An empty URL with a nil error means the backend has no URL to offer.
type PhotoURLResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

// Service rebuilds the published storefront from current store state
type Service struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	photos     PhotoURLResolver
	publisher  Publisher
}

var _ catalogapp.Rebuilder = (*Service)(nil)

// NewService creates a snapshot service
func NewService(
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	photos PhotoURLResolver,
	publisher Publisher,
) *Service {
	return &Service{
		categories: categories,
		products:   products,
		photos:     photos,
		publisher:  publisher,
	}
}

// Rebuild loads the whole catalog, renders it into snapshot entries and
// hands the result to the publisher. A photo whose URL cannot be resolved
// degrades to photo_url null; the publish still proceeds.
func (s *Service) Rebuild(ctx context.Context) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "snapshot", "rebuild")
	defer span.End()

	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	products, err := s.products.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetAttribute(span, "categories", len(categories))
	telemetry.SetAttribute(span, "products", len(products))

	storefront := &Storefront{
		Categories: make([]CategoryEntry, 0, len(categories)),
		Products:   make([]ProductEntry, 0, len(products)),
	}

	for _, category := range categories {
		entry := CategoryEntry{
			ID:   category.ID.String(),
			Name: category.Name,
		}
		if category.ParentID != nil {
			parentID := category.ParentID.String()
			entry.ParentID = &parentID
		}
		storefront.Categories = append(storefront.Categories, entry)
	}

	for _, product := range products {
		entry := ProductEntry{
			ID:          product.ID.String(),
			Name:        product.Name,
			Description: product.Description,
			Price:       product.Price.InexactFloat64(),
			CategoryID:  product.CategoryID.String(),
			InStock:     product.InStock,
		}
		if product.HasPhoto() {
			url, err := s.photos.ResolveURL(ctx, product.PhotoKey)
			switch {
			case err != nil:
				logger.L(ctx).Warn("photo URL resolution failed, publishing product without photo",
					zap.String("product_id", entry.ID),
					zap.String("photo_key", product.PhotoKey),
					zap.Error(err))
			case url != "":
				entry.PhotoURL = &url
			}
		}
		storefront.Products = append(storefront.Products, entry)
	}

	if err := s.publisher.Publish(ctx, storefront); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}
