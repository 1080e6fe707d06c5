package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/shared"
)

// DeliveryStatus represents the status of a notification delivery record
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

// DeliveryRecord is the durable journal entry for one outbound order
// notification. The record is written before the delivery attempt and
// updated with the outcome, so a failed or interrupted delivery is never
// silently lost. There is no automatic retry; failed records stay in the
// journal for inspection.
type DeliveryRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Channel   string         `gorm:"type:varchar(100);not null"`
	Payload   string         `gorm:"type:text;not null"`
	Status    DeliveryStatus `gorm:"type:varchar(20);not null;index"`
	Attempts  int            `gorm:"not null;default:0"`
	LastError string         `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (DeliveryRecord) TableName() string {
	return "delivery_records"
}

// NewDeliveryRecord creates a pending journal entry for an order
// notification about to be delivered to a channel
func NewDeliveryRecord(orderID uuid.UUID, channel, payload string) (*DeliveryRecord, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order ID cannot be empty")
	}
	if channel == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Delivery channel cannot be empty")
	}

	now := time.Now()
	return &DeliveryRecord{
		ID:        uuid.New(),
		OrderID:   orderID,
		Channel:   channel,
		Payload:   payload,
		Status:    DeliveryStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkSent marks the record as successfully delivered
func (r *DeliveryRecord) MarkSent() {
	r.Attempts++
	r.Status = DeliveryStatusSent
	r.UpdatedAt = time.Now()
}

// MarkFailed records a failed delivery attempt with its error
func (r *DeliveryRecord) MarkFailed(errMsg string) {
	r.Attempts++
	r.Status = DeliveryStatusFailed
	r.LastError = errMsg
	r.UpdatedAt = time.Now()
}
