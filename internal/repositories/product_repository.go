package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.ProductSummary, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]models.ProductSummary, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, category_id, name, slug, COALESCE(description, ''), price, discount_price, stock, sku, images, is_active, is_featured, created_at, updated_at`

func scanProduct(row *sql.Row) (*models.Product, error) {

	product := &models.Product{}

	err := row.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Slug, &product.Description,
		&product.Price, &product.DiscountPrice, &product.Stock, &product.SKU, pq.Array(&product.Images),
		&product.IsActive, &product.IsFeatured, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (category_id, name, slug, description, price, discount_price, stock, sku, images, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, NOW(), NOW())
		RETURNING id, is_active, created_at, updated_at`

	return r.DB.QueryRowContext(dbCtx, query,
		product.CategoryID, product.Name, product.Slug, product.Description, product.Price,
		product.DiscountPrice, product.Stock, product.SKU, pq.Array(product.Images), product.IsFeatured).
		Scan(&product.ID, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	return scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	return scanProduct(r.DB.QueryRowContext(dbCtx, query, slug))
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, discount_price = $5,
		    stock = $6, images = $7, is_active = $8, is_featured = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	return r.DB.QueryRowContext(dbCtx, query,
		product.CategoryID, product.Name, product.Description, product.Price, product.DiscountPrice,
		product.Stock, pq.Array(product.Images), product.IsActive, product.IsFeatured, product.ID).
		Scan(&product.UpdatedAt)
}

// DeleteProduct refuses to remove a product that appears in any order.
func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var orderItemCount int64

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM order_items WHERE product_id = $1`, id).Scan(&orderItemCount); err != nil {
		return err
	}

	if orderItemCount > 0 {
		return ErrInUse
	}

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]models.ProductSummary, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, slug, price, discount_price, images, stock
		FROM products
		WHERE is_active = TRUE AND is_featured = TRUE
		ORDER BY updated_at DESC
		LIMIT $1`

	rows, err := r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var products []models.ProductSummary

	for rows.Next() {
		var product models.ProductSummary

		err := rows.Scan(&product.ID, &product.Name, &product.Slug, &product.Price, &product.DiscountPrice, pq.Array(&product.Images), &product.Stock)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// ListProducts applies the storefront filters: only active products, search
// against name/description, category and price bounds, paginated.
func (r *productRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.ProductSummary, int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	conditions := []string{"is_active = TRUE"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", placeholder, placeholder))
	}

	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}

	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}

	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64

	countQuery := `SELECT COUNT(*) FROM products WHERE ` + where

	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	args = append(args, filter.PerPage, offset)

	query := fmt.Sprintf(`
		SELECT id, name, slug, price, discount_price, images, stock
		FROM products
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var products []models.ProductSummary

	for rows.Next() {
		var product models.ProductSummary

		err := rows.Scan(&product.ID, &product.Name, &product.Slug, &product.Price, &product.DiscountPrice, pq.Array(&product.Images), &product.Stock)
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}
