package dto

import (
	"github.com/shopbot/backend/internal/domain/catalog"
)

// CategoryResponse mirrors the category rows of the published storefront
// snapshot, so API consumers and snapshot consumers see the same shape
type CategoryResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// ProductResponse is one product row. PhotoURL is null when the product
// has no photo or its URL could not be resolved for this response.
type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  string  `json:"category_id"`
	InStock     bool    `json:"in_stock"`
	PhotoURL    *string `json:"photo_url"`
}

// NewCategoryResponse maps a category aggregate to its API shape
func NewCategoryResponse(category *catalog.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:   category.ID.String(),
		Name: category.Name,
	}
	if category.ParentID != nil {
		parentID := category.ParentID.String()
		resp.ParentID = &parentID
	}
	return resp
}

// NewProductResponse maps a product aggregate to its API shape. The photo
// URL is resolved by the caller; empty means no servable photo.
func NewProductResponse(product *catalog.Product, photoURL string) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.InexactFloat64(),
		CategoryID:  product.CategoryID.String(),
		InStock:     product.InStock,
	}
	if photoURL != "" {
		resp.PhotoURL = &photoURL
	}
	return resp
}
