// Read API tests against a real database: the storefront catalog
// endpoints and the health probe.
package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	snapshotapp "github.com/shopbot/backend/internal/application/snapshot"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	snapshotpub "github.com/shopbot/backend/internal/infrastructure/snapshot"
	"github.com/shopbot/backend/internal/infrastructure/storage"
	"github.com/shopbot/backend/internal/interfaces/http/handler"
	"github.com/shopbot/backend/internal/interfaces/http/router"
	"github.com/shopbot/backend/tests/testutil"
)

// TestServer wraps the test database and HTTP engine for API testing
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
}

// NewTestServer wires the read API over a shared test database
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewSharedTestDB(t)
	testDB.CleanTables()

	categoryRepo := persistence.NewGormCategoryRepository(testDB.DB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	photos := storage.NewDisabledPhotoStore()

	publisher, err := snapshotpub.NewFilePublisher(t.TempDir())
	require.NoError(t, err, "Failed to create snapshot publisher")
	snapshotService := snapshotapp.NewService(categoryRepo, productRepo, photos, publisher)
	catalogService := catalogapp.NewService(categoryRepo, productRepo, photos, snapshotService)

	engine := gin.New()
	r := router.NewRouter(engine)
	r.Register(handler.NewCatalogHandler(catalogService, photos))
	r.RegisterRoot(handler.NewSystemHandler(testDB.SqlDB))
	r.Setup()

	return &TestServer{
		DB:     testDB,
		Engine: engine,
	}
}

func TestHealthEndpoint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/health", nil)
	data := testutil.AssertSuccess(t, w)

	body, ok := data.(map[string]any)
	require.True(t, ok, "expected object payload, got %T", data)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["go_version"])
}

func TestCategoriesAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	shoes := ts.DB.CreateTestCategory("Shoes", nil)
	nike := ts.DB.CreateTestCategory("Nike", shoes)
	ts.DB.CreateTestCategory("Accessories", nil)

	t.Run("lists the whole tree", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/categories", nil)
		data := testutil.AssertSuccess(t, w)

		categories, ok := data.([]any)
		require.True(t, ok, "expected array payload, got %T", data)
		assert.Len(t, categories, 3)
	})

	t.Run("narrows to roots", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/categories?parent_id=root", nil)
		data := testutil.AssertSuccess(t, w)

		categories := data.([]any)
		require.Len(t, categories, 2)
		first := categories[0].(map[string]any)
		assert.Equal(t, "Accessories", first["name"])
		assert.Nil(t, first["parent_id"])
	})

	t.Run("narrows to children of a category", func(t *testing.T) {
		path := fmt.Sprintf("/api/categories?parent_id=%s", shoes.ID)
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, path, nil)
		data := testutil.AssertSuccess(t, w)

		categories := data.([]any)
		require.Len(t, categories, 1)
		child := categories[0].(map[string]any)
		assert.Equal(t, nike.ID.String(), child["id"])
		assert.Equal(t, shoes.ID.String(), child["parent_id"])
	})

	t.Run("rejects a malformed parent filter", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/categories?parent_id=not-a-uuid", nil)
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
	})
}

func TestProductsAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	shoes := ts.DB.CreateTestCategory("Shoes", nil)
	clothing := ts.DB.CreateTestCategory("Clothing", nil)
	airMax := ts.DB.CreateTestProduct(shoes, "Air Max 90", "129.99")
	ts.DB.CreateTestProduct(clothing, "Jacket", "59.99")

	t.Run("lists all products", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/products", nil)
		data := testutil.AssertSuccess(t, w)

		products := data.([]any)
		assert.Len(t, products, 2)
	})

	t.Run("filters by category", func(t *testing.T) {
		path := fmt.Sprintf("/api/products?category_id=%s", shoes.ID)
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, path, nil)
		data := testutil.AssertSuccess(t, w)

		products := data.([]any)
		require.Len(t, products, 1)
		product := products[0].(map[string]any)
		assert.Equal(t, "Air Max 90", product["name"])
		assert.InDelta(t, 129.99, product["price"], 0.001)
		assert.Equal(t, true, product["in_stock"])
		assert.Nil(t, product["photo_url"])
	})

	t.Run("returns a single product", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/products/"+airMax.ID.String(), nil)
		data := testutil.AssertSuccess(t, w)

		product := data.(map[string]any)
		assert.Equal(t, airMax.ID.String(), product["id"])
		assert.Equal(t, shoes.ID.String(), product["category_id"])
	})

	t.Run("missing product is a 404", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/products/"+uuid.NewString(), nil)
		testutil.AssertErrorCode(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
	})

	t.Run("malformed product id is a 400", func(t *testing.T) {
		w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, "/api/products/42", nil)
		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
	})
}
