package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/ordering"
	"gorm.io/gorm"
)

// GormDeliveryJournal implements DeliveryJournal using GORM
type GormDeliveryJournal struct {
	db *gorm.DB
}

// NewGormDeliveryJournal creates a new GormDeliveryJournal
func NewGormDeliveryJournal(db *gorm.DB) *GormDeliveryJournal {
	return &GormDeliveryJournal{db: db}
}

// Save persists a journal entry
func (j *GormDeliveryJournal) Save(ctx context.Context, record *ordering.DeliveryRecord) error {
	return j.db.WithContext(ctx).Create(record).Error
}

// Update updates an existing journal entry
func (j *GormDeliveryJournal) Update(ctx context.Context, record *ordering.DeliveryRecord) error {
	return j.db.WithContext(ctx).Save(record).Error
}

// FindByOrderID finds all journal entries for an order, oldest first
func (j *GormDeliveryJournal) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ordering.DeliveryRecord, error) {
	var records []ordering.DeliveryRecord
	if err := j.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountByStatus returns the number of entries per delivery status
func (j *GormDeliveryJournal) CountByStatus(ctx context.Context) (map[ordering.DeliveryStatus]int64, error) {
	var rows []struct {
		Status ordering.DeliveryStatus
		Total  int64
	}
	if err := j.db.WithContext(ctx).
		Model(&ordering.DeliveryRecord{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[ordering.DeliveryStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// Ensure GormDeliveryJournal implements DeliveryJournal
var _ ordering.DeliveryJournal = (*GormDeliveryJournal)(nil)
