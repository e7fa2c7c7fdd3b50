package repository

import (
	"context"
	"database/sql"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ListApprovedByProduct(ctx context.Context, productID int64) ([]models.Review, error)
	ListPending(ctx context.Context, page, size int) ([]models.Review, int64, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	DeleteReview(ctx context.Context, id int64) error
}

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepo(db *sql.DB) ReviewRepository {
	return &reviewRepository{DB: db}
}

// CreateReview inserts a review pending moderation. The unique index on
// (user_id, product_id) surfaces duplicates as a pq unique violation.
func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO reviews (user_id, product_id, rating, comment, is_approved, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id, is_approved, created_at`

	return r.DB.QueryRowContext(dbCtx, query, review.UserID, review.ProductID, review.Rating, review.Comment).
		Scan(&review.ID, &review.IsApproved, &review.CreatedAt)
}

func (r *reviewRepository) ListApprovedByProduct(ctx context.Context, productID int64) ([]models.Review, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT r.id, r.user_id, r.product_id, r.rating, COALESCE(r.comment, ''), u.name, r.is_approved, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.is_approved = TRUE
		ORDER BY r.created_at DESC`

	rows, err := r.DB.QueryContext(dbCtx, query, productID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanReviews(rows)
}

func (r *reviewRepository) ListPending(ctx context.Context, page, size int) ([]models.Review, int64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int64

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM reviews WHERE is_approved = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * size

	query := `
		SELECT r.id, r.user_id, r.product_id, r.rating, COALESCE(r.comment, ''), u.name, r.is_approved, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.is_approved = FALSE
		ORDER BY r.created_at
		LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	reviews, err := scanReviews(rows)
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func scanReviews(rows *sql.Rows) ([]models.Review, error) {

	var reviews []models.Review

	for rows.Next() {
		var review models.Review

		err := rows.Scan(&review.ID, &review.UserID, &review.ProductID, &review.Rating, &review.Comment,
			&review.UserName, &review.IsApproved, &review.CreatedAt)
		if err != nil {
			return nil, err
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepository) SetApproved(ctx context.Context, id int64, approved bool) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `UPDATE reviews SET is_approved = $1 WHERE id = $2`, approved, id)
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

func (r *reviewRepository) DeleteReview(ctx context.Context, id int64) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM reviews WHERE id = $1`, id)
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
