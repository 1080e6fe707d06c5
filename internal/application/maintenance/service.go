package maintenance

import (
	"context"

	"go.uber.org/zap"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

// Stats is the admin panel snapshot of store counts
type Stats struct {
	Categories        int64
	Products          int64
	ProductsInStock   int64
	OrdersNew         int64
	OrdersTotal       int64
	PendingDeliveries int64
}

// Service aggregates panel statistics and performs the destructive full
// reset
type Service struct {
	categories catalog.CategoryRepository
	products   catalog.ProductRepository
	orders     ordering.OrderRepository
	journal    ordering.DeliveryJournal
	purger     Purger
	rebuilder  catalogapp.Rebuilder
}

// NewService creates a maintenance service
func NewService(
	categories catalog.CategoryRepository,
	products catalog.ProductRepository,
	orders ordering.OrderRepository,
	journal ordering.DeliveryJournal,
	purger Purger,
	rebuilder catalogapp.Rebuilder,
) *Service {
	return &Service{
		categories: categories,
		products:   products,
		orders:     orders,
		journal:    journal,
		purger:     purger,
		rebuilder:  rebuilder,
	}
}

// Stats collects the counts the admin panel displays
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	categories, err := s.categories.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	inStock, err := s.products.CountInStock(ctx)
	if err != nil {
		return nil, err
	}
	ordersTotal, err := s.orders.Count(ctx)
	if err != nil {
		return nil, err
	}
	ordersNew, err := s.orders.CountByStatus(ctx, ordering.OrderStatusNew)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.journal.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Categories:        categories,
		Products:          products,
		ProductsInStock:   inStock,
		OrdersNew:         ordersNew,
		OrdersTotal:       ordersTotal,
		PendingDeliveries: deliveries[ordering.DeliveryStatusPending],
	}, nil
}

// Reset wipes all shop data in one transaction and publishes the now
// empty snapshot. A failed publish does not undo the wipe; it surfaces as
// a warning like any other catalog mutation.
func (s *Service) Reset(ctx context.Context) (*PurgeResult, *catalogapp.PublishWarning, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "maintenance", "reset")
	defer span.End()

	result, err := s.purger.PurgeAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	telemetry.SetAttribute(span, "products_removed", result.Products)

	if err := s.rebuilder.Rebuild(ctx); err != nil {
		logger.L(ctx).Warn("snapshot publish failed after reset", zap.Error(err))
		return result, &catalogapp.PublishWarning{Err: err}, nil
	}
	return result, nil, nil
}
