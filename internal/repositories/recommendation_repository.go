package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type RecommendationRepository interface {
	// FrequentlyBoughtTogether ranks products that co-occur with the given
	// product across paid orders, most frequent first.
	FrequentlyBoughtTogether(ctx context.Context, productID int64, limit int) ([]models.ProductSummary, error)
	// SimilarProducts picks random active category-mates, excluding the
	// product itself.
	SimilarProducts(ctx context.Context, productID, categoryID int64, limit int) ([]models.ProductSummary, error)
	// FavoriteCategoryID is the category the user has ordered from most.
	// sql.ErrNoRows when the user has no order history.
	FavoriteCategoryID(ctx context.Context, userID int64) (int64, error)
	ProductsByCategory(ctx context.Context, categoryID int64, limit int) ([]models.ProductSummary, error)
	// PopularProducts ranks by units sold across all orders.
	PopularProducts(ctx context.Context, limit int) ([]models.ProductSummary, error)
}

type recommendationRepository struct {
	DB *sql.DB
}

func NewRecommendationRepo(db *sql.DB) RecommendationRepository {
	return &recommendationRepository{DB: db}
}

const summaryColumns = `p.id, p.name, p.slug, p.price, p.discount_price, p.images, p.stock`

func (r *recommendationRepository) FrequentlyBoughtTogether(ctx context.Context, productID int64, limit int) ([]models.ProductSummary, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + summaryColumns + `, COUNT(*) AS freq
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id AND o.status IN ('paid', 'shipped', 'completed')
		JOIN order_items other ON other.order_id = oi.order_id AND other.product_id != oi.product_id
		JOIN products p ON p.id = other.product_id
		WHERE oi.product_id = $1 AND p.is_active = TRUE
		GROUP BY p.id, p.name, p.slug, p.price, p.discount_price, p.images, p.stock
		ORDER BY freq DESC, p.id
		LIMIT $2`

	rows, err := r.DB.QueryContext(dbCtx, query, productID, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var products []models.ProductSummary

	for rows.Next() {
		var product models.ProductSummary
		var freq int64

		err := rows.Scan(&product.ID, &product.Name, &product.Slug, &product.Price, &product.DiscountPrice,
			pq.Array(&product.Images), &product.Stock, &freq)
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

func (r *recommendationRepository) SimilarProducts(ctx context.Context, productID, categoryID int64, limit int) ([]models.ProductSummary, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + summaryColumns + `
		FROM products p
		WHERE p.category_id = $1 AND p.id != $2 AND p.is_active = TRUE
		ORDER BY RANDOM()
		LIMIT $3`

	return r.querySummaries(dbCtx, query, categoryID, productID, limit)
}

func (r *recommendationRepository) FavoriteCategoryID(ctx context.Context, userID int64) (int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT p.category_id
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = $1
		GROUP BY p.category_id
		ORDER BY SUM(oi.quantity) DESC
		LIMIT 1`

	var categoryID int64

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&categoryID)
	if err != nil {
		return 0, err
	}

	return categoryID, nil
}

func (r *recommendationRepository) ProductsByCategory(ctx context.Context, categoryID int64, limit int) ([]models.ProductSummary, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + summaryColumns + `
		FROM products p
		WHERE p.category_id = $1 AND p.is_active = TRUE
		ORDER BY RANDOM()
		LIMIT $2`

	return r.querySummaries(dbCtx, query, categoryID, limit)
}

func (r *recommendationRepository) PopularProducts(ctx context.Context, limit int) ([]models.ProductSummary, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + summaryColumns + `
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		WHERE p.is_active = TRUE
		GROUP BY p.id, p.name, p.slug, p.price, p.discount_price, p.images, p.stock
		ORDER BY COALESCE(SUM(oi.quantity), 0) DESC, p.id
		LIMIT $1`

	return r.querySummaries(dbCtx, query, limit)
}

func (r *recommendationRepository) querySummaries(ctx context.Context, query string, args ...any) ([]models.ProductSummary, error) {

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var products []models.ProductSummary

	for rows.Next() {
		var product models.ProductSummary

		err := rows.Scan(&product.ID, &product.Name, &product.Slug, &product.Price, &product.DiscountPrice,
			pq.Array(&product.Images), &product.Stock)
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
