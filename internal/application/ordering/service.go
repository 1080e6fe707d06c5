package ordering

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

// NotificationChannel names the delivery channel in the journal
const NotificationChannel = "telegram"

// Notifier delivers a rendered order notification to the configured
// destination channel
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// IntakeResult distinguishes "persisted and notified" from "persisted but
// notification failed". The order is committed in both cases.
type IntakeResult struct {
	Order     *ordering.Order
	Notified  bool
	NotifyErr error
}

// Service handles order intake, status transitions and listings
type Service struct {
	orders   ordering.OrderRepository
	journal  ordering.DeliveryJournal
	notifier Notifier
	renderer *NotificationRenderer
}

// NewService creates an ordering service
func NewService(
	orders ordering.OrderRepository,
	journal ordering.DeliveryJournal,
	notifier Notifier,
	renderer *NotificationRenderer,
) *Service {
	return &Service{
		orders:   orders,
		journal:  journal,
		notifier: notifier,
		renderer: renderer,
	}
}

// Intake validates and persists a checkout submission, then attempts the
// channel notification. Delivery is independent of persistence: a failed
// notification never rolls back the order, it is recorded in the journal
// and surfaced through the result.
func (s *Service) Intake(ctx context.Context, payload *OrderPayload, fallback FallbackIdentity) (*IntakeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ordering", "intake",
		telemetry.WithAttribute("items_count", len(payload.Items)))
	defer span.End()

	if err := payload.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	userID := payload.UserID
	if userID == 0 {
		userID = fallback.UserID
	}
	displayName := payload.DisplayName
	if displayName == "" {
		displayName = fallback.DisplayName
	}
	contactHandle := payload.ContactHandle
	if contactHandle == "" {
		contactHandle = fallback.ContactHandle
	}

	items := make(ordering.OrderItems, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, ordering.OrderItem{
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
	}

	order, err := ordering.NewOrder(userID, displayName, contactHandle, items, payload.TotalPrice)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, order.ID)

	result := &IntakeResult{Order: order}
	text := s.renderer.Render(order)

	// Journal the rendered message before the delivery attempt so a crash
	// mid-send still leaves a trace to act on.
	record, err := ordering.NewDeliveryRecord(order.ID, NotificationChannel, text)
	journaled := false
	if err != nil {
		logger.L(ctx).Error("failed to create delivery record",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	} else if err := s.journal.Save(ctx, record); err != nil {
		logger.L(ctx).Error("failed to journal order notification",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	} else {
		journaled = true
	}

	if err := s.notifier.Notify(ctx, text); err != nil {
		logger.L(ctx).Error("order notification delivery failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		telemetry.SetAttribute(span, "notified", false)
		result.NotifyErr = err
		if journaled {
			record.MarkFailed(err.Error())
			if err := s.journal.Update(ctx, record); err != nil {
				logger.L(ctx).Warn("failed to update delivery record",
					zap.String("order_id", order.ID.String()), zap.Error(err))
			}
		}
		return result, nil
	}

	result.Notified = true
	telemetry.SetAttribute(span, "notified", true)
	if journaled {
		record.MarkSent()
		if err := s.journal.Update(ctx, record); err != nil {
			logger.L(ctx).Warn("failed to update delivery record",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	return result, nil
}

// GetOrder fetches one order
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// MarkProcessed transitions an order to processed. Calling it on an
// already processed order is a no-op.
func (s *Service) MarkProcessed(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ordering", "mark_processed",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, id))
	defer span.End()

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if order.IsProcessed() {
		return order, nil
	}
	order.MarkProcessed()
	if err := s.orders.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return order, nil
}

// MarkAllProcessed transitions every new order to processed and reports
// how many rows changed
func (s *Service) MarkAllProcessed(ctx context.Context) (int64, error) {
	return s.orders.MarkAllProcessed(ctx)
}

// ListNew returns orders still awaiting processing, newest first
func (s *Service) ListNew(ctx context.Context) ([]ordering.Order, error) {
	return s.orders.FindByStatus(ctx, ordering.OrderStatusNew)
}

// ListAll returns all orders, newest first
func (s *Service) ListAll(ctx context.Context) ([]ordering.Order, error) {
	return s.orders.FindAll(ctx)
}

// ListByUser returns the orders a particular user submitted. Non-admin
// callers of the order listing are scoped to this.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]ordering.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}
