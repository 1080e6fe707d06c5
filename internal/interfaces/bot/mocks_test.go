package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/application/maintenance"
	orderingapp "github.com/shopbot/backend/internal/application/ordering"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/domain/ordering"
	"github.com/shopbot/backend/internal/infrastructure/session"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

const (
	adminUserID    int64 = 42
	customerUserID int64 = 7

	testWebAppURL = "https://shop.example.com/app"
)

// MockMessenger records every outbound call so tests can assert on the
// rendered conversation
type MockMessenger struct {
	mock.Mock
	sent    []telegram.SendMessageParams
	edits   []telegram.EditMessageTextParams
	photos  []telegram.SendPhotoParams
	answers []string
}

func (m *MockMessenger) SendMessage(ctx context.Context, params telegram.SendMessageParams) (*telegram.Message, error) {
	m.sent = append(m.sent, params)
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*telegram.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessenger) EditMessageText(ctx context.Context, params telegram.EditMessageTextParams) (*telegram.Message, error) {
	m.edits = append(m.edits, params)
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*telegram.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessenger) SendPhoto(ctx context.Context, params telegram.SendPhotoParams) (*telegram.Message, error) {
	m.photos = append(m.photos, params)
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*telegram.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessenger) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	m.answers = append(m.answers, text)
	args := m.Called(ctx, callbackQueryID, text)
	return args.Error(0)
}

// allowAll registers permissive expectations so tests can focus on the
// captured parameters instead of call counts
func (m *MockMessenger) allowAll() {
	m.On("SendMessage", mock.Anything, mock.Anything).Return(&telegram.Message{MessageID: 99}, nil).Maybe()
	m.On("EditMessageText", mock.Anything, mock.Anything).Return(&telegram.Message{MessageID: 99}, nil).Maybe()
	m.On("SendPhoto", mock.Anything, mock.Anything).Return(&telegram.Message{MessageID: 99}, nil).Maybe()
	m.On("AnswerCallbackQuery", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (m *MockMessenger) lastSent(t *testing.T) telegram.SendMessageParams {
	t.Helper()
	require.NotEmpty(t, m.sent, "expected at least one sent message")
	return m.sent[len(m.sent)-1]
}

func (m *MockMessenger) lastEdit(t *testing.T) telegram.EditMessageTextParams {
	t.Helper()
	require.NotEmpty(t, m.edits, "expected at least one edited message")
	return m.edits[len(m.edits)-1]
}

func (m *MockMessenger) lastAnswer(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.answers, "expected at least one answered callback")
	return m.answers[len(m.answers)-1]
}

// pollStep is one scripted GetUpdates exchange
type pollStep struct {
	updates []telegram.Update
	err     error
}

// scriptedPoller plays back poll steps and stops the loop by cancelling
// the run context once the script is exhausted
type scriptedPoller struct {
	mu      sync.Mutex
	steps   []pollStep
	offsets []int64
	cancel  context.CancelFunc
}

func (p *scriptedPoller) GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offsets = append(p.offsets, offset)
	if len(p.steps) == 0 {
		p.cancel()
		return nil, context.Canceled
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	return step.updates, step.err
}

func (p *scriptedPoller) seenOffsets() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.offsets...)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) AddCategory(ctx context.Context, name string, parentID *uuid.UUID) (*catalog.Category, *catalogapp.PublishWarning, error) {
	args := m.Called(ctx, name, parentID)
	var category *catalog.Category
	if v := args.Get(0); v != nil {
		category = v.(*catalog.Category)
	}
	var warn *catalogapp.PublishWarning
	if v := args.Get(1); v != nil {
		warn = v.(*catalogapp.PublishWarning)
	}
	return category, warn, args.Error(2)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) (*catalog.SubtreeDeletion, *catalogapp.PublishWarning, error) {
	args := m.Called(ctx, id)
	var deletion *catalog.SubtreeDeletion
	if v := args.Get(0); v != nil {
		deletion = v.(*catalog.SubtreeDeletion)
	}
	var warn *catalogapp.PublishWarning
	if v := args.Get(1); v != nil {
		warn = v.(*catalogapp.PublishWarning)
	}
	return deletion, warn, args.Error(2)
}

func (m *MockCatalogService) CategoryName(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogService) ListRootCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]catalog.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) ListAllCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]catalog.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) ListLeafCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]catalog.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) AddProduct(ctx context.Context, input catalogapp.AddProductInput) (*catalog.Product, *catalogapp.PublishWarning, error) {
	args := m.Called(ctx, input)
	var product *catalog.Product
	if v := args.Get(0); v != nil {
		product = v.(*catalog.Product)
	}
	var warn *catalogapp.PublishWarning
	if v := args.Get(1); v != nil {
		warn = v.(*catalogapp.PublishWarning)
	}
	return product, warn, args.Error(2)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*catalog.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]catalog.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) (*catalogapp.PublishWarning, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*catalogapp.PublishWarning), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) ToggleStock(ctx context.Context, id uuid.UUID) (bool, *catalogapp.PublishWarning, error) {
	args := m.Called(ctx, id)
	var warn *catalogapp.PublishWarning
	if v := args.Get(1); v != nil {
		warn = v.(*catalogapp.PublishWarning)
	}
	return args.Bool(0), warn, args.Error(2)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Intake(ctx context.Context, payload *orderingapp.OrderPayload, fallback orderingapp.FallbackIdentity) (*orderingapp.IntakeResult, error) {
	args := m.Called(ctx, payload, fallback)
	if v := args.Get(0); v != nil {
		return v.(*orderingapp.IntakeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) MarkProcessed(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*ordering.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) MarkAllProcessed(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderService) ListNew(ctx context.Context) ([]ordering.Order, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]ordering.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context) ([]ordering.Order, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]ordering.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID int64) ([]ordering.Order, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]ordering.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) Stats(ctx context.Context) (*maintenance.Stats, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*maintenance.Stats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaintenanceService) Reset(ctx context.Context) (*maintenance.PurgeResult, *catalogapp.PublishWarning, error) {
	args := m.Called(ctx)
	var result *maintenance.PurgeResult
	if v := args.Get(0); v != nil {
		result = v.(*maintenance.PurgeResult)
	}
	var warn *catalogapp.PublishWarning
	if v := args.Get(1); v != nil {
		warn = v.(*catalogapp.PublishWarning)
	}
	return result, warn, args.Error(2)
}

type MockPhotoIngester struct {
	mock.Mock
}

func (m *MockPhotoIngester) Ingest(ctx context.Context, fileID string) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

type MockPhotoResolver struct {
	mock.Mock
}

func (m *MockPhotoResolver) ResolveURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// routerFixture wires a Router against mocks and a real in-memory
// session store
type routerFixture struct {
	router    *Router
	messenger *MockMessenger
	catalog   *MockCatalogService
	orders    *MockOrderService
	maint     *MockMaintenanceService
	photos    *MockPhotoIngester
	resolver  *MockPhotoResolver
	sessions  conversation.Store
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	store := session.NewInMemorySessionStore(0)
	t.Cleanup(func() { store.Close() })

	fix := &routerFixture{
		messenger: &MockMessenger{},
		catalog:   &MockCatalogService{},
		orders:    &MockOrderService{},
		maint:     &MockMaintenanceService{},
		photos:    &MockPhotoIngester{},
		resolver:  &MockPhotoResolver{},
		sessions:  store,
	}

	router, err := NewRouter(Deps{
		Messenger:     fix.messenger,
		Poller:        &scriptedPoller{cancel: func() {}},
		Authorizer:    NewSingleAdminAuthorizer(adminUserID),
		Sessions:      fix.sessions,
		Catalog:       fix.catalog,
		Orders:        fix.orders,
		Maintenance:   fix.maint,
		PhotoIngester: fix.photos,
		PhotoResolver: fix.resolver,
		WebAppURL:     testWebAppURL,
		Locale:        "en",
	})
	require.NoError(t, err)
	fix.router = router
	return fix
}

// adminSession reads back the admin's live session, failing the test
// when none exists
func (f *routerFixture) adminSession(t *testing.T) conversation.Session {
	t.Helper()
	state, err := f.sessions.Get(context.Background(), adminUserID)
	require.NoError(t, err)
	return state
}

func (f *routerFixture) requireNoSession(t *testing.T) {
	t.Helper()
	_, err := f.sessions.Get(context.Background(), adminUserID)
	require.ErrorIs(t, err, conversation.ErrNoSession)
}

func adminMessage(text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: adminUserID, FirstName: "Ada", Username: "ada"},
		Chat:      telegram.Chat{ID: adminUserID, Type: "private"},
		Text:      text,
	}
}

func customerMessage(text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 2,
		From:      &telegram.User{ID: customerUserID, FirstName: "Eve", Username: "eve"},
		Chat:      telegram.Chat{ID: customerUserID, Type: "private"},
		Text:      text,
	}
}

func adminCallback(data string) *telegram.CallbackQuery {
	return &telegram.CallbackQuery{
		ID:   "cb-1",
		From: telegram.User{ID: adminUserID, FirstName: "Ada"},
		Message: &telegram.Message{
			MessageID: 10,
			Chat:      telegram.Chat{ID: adminUserID, Type: "private"},
		},
		Data: data,
	}
}

func customerCallback(data string) *telegram.CallbackQuery {
	cb := adminCallback(data)
	cb.From = telegram.User{ID: customerUserID, FirstName: "Eve"}
	cb.Message.Chat.ID = customerUserID
	return cb
}
