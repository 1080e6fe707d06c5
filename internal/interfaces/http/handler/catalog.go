package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/interfaces/http/dto"
)

// CatalogReader is the slice of the catalog service the read API serves
type CatalogReader interface {
	ListAllCategories(ctx context.Context) ([]catalog.Category, error)
	ListRootCategories(ctx context.Context) ([]catalog.Category, error)
	ListSubcategories(ctx context.Context, parentID uuid.UUID) ([]catalog.Category, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// PhotoURLResolver turns stored photo keys into browser-usable URLs.
// An empty URL with a nil error means the key has no URL form.
type PhotoURLResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

var _ CatalogReader = (*catalogapp.Service)(nil)

// CatalogHandler serves the storefront catalog reads
type CatalogHandler struct {
	BaseHandler
	catalog CatalogReader
	photos  PhotoURLResolver
}

// NewCatalogHandler creates a catalog read handler
func NewCatalogHandler(catalog CatalogReader, photos PhotoURLResolver) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		photos:  photos,
	}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListCategories)
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
}

// ListCategories returns categories. Without a filter the whole tree is
// returned; ?parent_id=root narrows to roots and ?parent_id=<uuid> to the
// children of that category.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var categories []catalog.Category
	var err error
	switch parent := c.Query("parent_id"); parent {
	case "":
		categories, err = h.catalog.ListAllCategories(ctx)
	case "root":
		categories, err = h.catalog.ListRootCategories(ctx)
	default:
		parentID, parseErr := uuid.Parse(parent)
		if parseErr != nil {
			h.BadRequest(c, "parent_id must be a UUID or \"root\"")
			return
		}
		categories, err = h.catalog.ListSubcategories(ctx, parentID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, dto.NewCategoryResponse(&categories[i]))
	}
	h.Success(c, resp)
}

// ListProducts returns products, optionally narrowed to one category via
// ?category_id=<uuid>
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var products []catalog.Product
	var err error
	if categoryParam := c.Query("category_id"); categoryParam != "" {
		categoryID, parseErr := uuid.Parse(categoryParam)
		if parseErr != nil {
			h.BadRequest(c, "category_id must be a UUID")
			return
		}
		products, err = h.catalog.ListProductsByCategory(ctx, categoryID)
	} else {
		products, err = h.catalog.ListProducts(ctx)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, dto.NewProductResponse(&products[i], h.photoURL(ctx, &products[i])))
	}
	h.Success(c, resp)
}

// GetProduct returns a single product by id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a UUID")
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewProductResponse(product, h.photoURL(ctx, product)))
}

// photoURL resolves a product's photo URL. Resolution failures degrade
// that product to photo_url null instead of failing the response.
func (h *CatalogHandler) photoURL(ctx context.Context, product *catalog.Product) string {
	if !product.HasPhoto() {
		return ""
	}
	url, err := h.photos.ResolveURL(ctx, product.PhotoKey)
	if err != nil {
		logger.L(ctx).Warn("photo URL resolution failed, serving product without photo",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		return ""
	}
	return url
}
