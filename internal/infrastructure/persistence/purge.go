package persistence

import (
	"context"

	"github.com/shopbot/backend/internal/application/maintenance"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/ordering"
	"gorm.io/gorm"
)

// GormPurger implements the maintenance Purger using GORM
type GormPurger struct {
	db *gorm.DB
}

// NewGormPurger creates a new GormPurger
func NewGormPurger(db *gorm.DB) *GormPurger {
	return &GormPurger{db: db}
}

// PurgeAll deletes every category, product, order, and delivery record in a
// single transaction and reports the removed row counts
func (p *GormPurger) PurgeAll(ctx context.Context) (*maintenance.PurgeResult, error) {
	var result maintenance.PurgeResult

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deliveries := tx.Where("1 = 1").Delete(&ordering.DeliveryRecord{})
		if deliveries.Error != nil {
			return deliveries.Error
		}
		orders := tx.Where("1 = 1").Delete(&ordering.Order{})
		if orders.Error != nil {
			return orders.Error
		}
		products := tx.Where("1 = 1").Delete(&catalog.Product{})
		if products.Error != nil {
			return products.Error
		}
		categories := tx.Where("1 = 1").Delete(&catalog.Category{})
		if categories.Error != nil {
			return categories.Error
		}

		result = maintenance.PurgeResult{
			Categories:      categories.RowsAffected,
			Products:        products.RowsAffected,
			Orders:          orders.RowsAffected,
			DeliveryRecords: deliveries.RowsAffected,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ensure GormPurger implements Purger
var _ maintenance.Purger = (*GormPurger)(nil)
