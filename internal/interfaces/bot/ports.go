package bot

import (
	"context"

	"github.com/google/uuid"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/application/maintenance"
	orderingapp "github.com/shopbot/backend/internal/application/ordering"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

// Messenger is the outbound surface of the messaging transport
type Messenger interface {
	SendMessage(ctx context.Context, params telegram.SendMessageParams) (*telegram.Message, error)
	EditMessageText(ctx context.Context, params telegram.EditMessageTextParams) (*telegram.Message, error)
	SendPhoto(ctx context.Context, params telegram.SendPhotoParams) (*telegram.Message, error)
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

// Poller delivers batches of inbound transport updates
type Poller interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// PhotoResolver turns a stored photo key into a URL the transport can
// serve back to the admin. An empty URL with a nil error means the key
// has no web-resolvable form.
type PhotoResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

// CatalogService is the slice of the catalog application service the
// conversation engine drives
type CatalogService interface {
	AddCategory(ctx context.Context, name string, parentID *uuid.UUID) (*catalog.Category, *catalogapp.PublishWarning, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (*catalog.SubtreeDeletion, *catalogapp.PublishWarning, error)
	CategoryName(ctx context.Context, id uuid.UUID) (string, error)
	ListRootCategories(ctx context.Context) ([]catalog.Category, error)
	ListAllCategories(ctx context.Context) ([]catalog.Category, error)
	ListLeafCategories(ctx context.Context) ([]catalog.Category, error)
	AddProduct(ctx context.Context, input catalogapp.AddProductInput) (*catalog.Product, *catalogapp.PublishWarning, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (*catalogapp.PublishWarning, error)
	ToggleStock(ctx context.Context, id uuid.UUID) (bool, *catalogapp.PublishWarning, error)
}

// OrderService is the slice of the ordering application service the
// conversation engine drives
type OrderService interface {
	Intake(ctx context.Context, payload *orderingapp.OrderPayload, fallback orderingapp.FallbackIdentity) (*orderingapp.IntakeResult, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) (*ordering.Order, error)
	MarkAllProcessed(ctx context.Context) (int64, error)
	ListNew(ctx context.Context) ([]ordering.Order, error)
	ListAll(ctx context.Context) ([]ordering.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]ordering.Order, error)
}

// MaintenanceService exposes the panel statistics and the full reset
type MaintenanceService interface {
	Stats(ctx context.Context) (*maintenance.Stats, error)
	Reset(ctx context.Context) (*maintenance.PurgeResult, *catalogapp.PublishWarning, error)
}

var (
	_ Messenger          = (*telegram.Client)(nil)
	_ Poller             = (*telegram.Client)(nil)
	_ CatalogService     = (*catalogapp.Service)(nil)
	_ OrderService       = (*orderingapp.Service)(nil)
	_ MaintenanceService = (*maintenance.Service)(nil)
)
