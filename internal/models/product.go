package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryNode is one node of the nested tree returned by GET /categories.
type CategoryNode struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Children []*CategoryNode `json:"children"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

type Product struct {
	ID            int64     `json:"id"`
	CategoryID    int64     `json:"category_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty"`
	Stock         int64     `json:"stock"`
	SKU           string    `json:"sku"`
	Images        []string  `json:"images"`
	IsActive      bool      `json:"is_active"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EffectivePrice is the price snapshotted into cart lines: the discount
// price when set, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}

	return p.Price
}

// ProductSummary is the compact shape used by list and recommendation
// responses.
type ProductSummary struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	Images        []string `json:"images"`
	Stock         int64    `json:"stock"`
}

type ProductDetail struct {
	Product
	Reviews []Review `json:"reviews"`
}

type ProductFilter struct {
	Search     string
	CategoryID int64
	MinPrice   *float64
	MaxPrice   *float64
	Page       int
	PerPage    int
}

type CreateProductRequest struct {
	CategoryID    int64    `json:"category_id" validate:"required"`
	Name          string   `json:"name" validate:"required,min=3,max=200"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	DiscountPrice *float64 `json:"discount_price,omitempty" validate:"omitempty,gt=0,ltefield=Price"`
	Stock         int64    `json:"stock" validate:"gte=0"`
	SKU           string   `json:"sku" validate:"required,min=3,max=50"`
	Images        []string `json:"images,omitempty"`
	IsFeatured    bool     `json:"is_featured"`
}

type UpdateProductRequest struct {
	CategoryID    *int64   `json:"category_id,omitempty"`
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	DiscountPrice *float64 `json:"discount_price,omitempty" validate:"omitempty,gt=0"`
	Stock         *int64   `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Images        []string `json:"images,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	IsFeatured    *bool    `json:"is_featured,omitempty"`
}
