package repository

import (
	"context"
	"database/sql"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO categories (name, slug, description, parent_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	return r.DB.QueryRowContext(dbCtx, query, category.Name, category.Slug, category.Description, category.ParentID).
		Scan(&category.ID, &category.CreatedAt)
}

func (r *categoryRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	category := &models.Category{}

	query := `
		SELECT id, name, slug, COALESCE(description, ''), parent_id, created_at
		FROM categories
		WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.ParentID, &category.CreatedAt)
	if err != nil {
		return nil, err
	}

	return category, nil
}

// ListCategories returns every category in one pass; the service folds them
// into a tree.
func (r *categoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, slug, COALESCE(description, ''), parent_id, created_at
		FROM categories
		ORDER BY name`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var categories []models.Category

	for rows.Next() {
		var category models.Category

		err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.ParentID, &category.CreatedAt)
		if err != nil {
			return nil, err
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE categories SET name = $1, description = $2
		WHERE id = $3`

	result, err := r.DB.ExecContext(dbCtx, query, category.Name, category.Description, category.ID)
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

// DeleteCategory refuses to remove a category that still has products.
func (r *categoryRepository) DeleteCategory(ctx context.Context, id int64) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var productCount int64

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&productCount); err != nil {
		return err
	}

	if productCount > 0 {
		return ErrInUse
	}

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM categories WHERE id = $1`, id)
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
