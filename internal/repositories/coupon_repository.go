package repository

import (
	"context"
	"database/sql"

	"github.com/shopworks/storefront/internal/models"
	"github.com/shopworks/storefront/internal/utils"
)

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *models.Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
}

type couponRepository struct {
	DB *sql.DB
}

func NewCouponRepo(db *sql.DB) CouponRepository {
	return &couponRepository{DB: db}
}

func (r *couponRepository) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO coupons (code, discount_type, value, max_uses, uses_count, valid_from, valid_to, active)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7)
		RETURNING id, uses_count`

	return r.DB.QueryRowContext(dbCtx, query,
		coupon.Code, coupon.DiscountType, coupon.Value, coupon.MaxUses, coupon.ValidFrom, coupon.ValidTo, coupon.Active).
		Scan(&coupon.ID, &coupon.UsesCount)
}

func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	coupon := &models.Coupon{}

	query := `
		SELECT id, code, discount_type, value, max_uses, uses_count, valid_from, valid_to, active
		FROM coupons
		WHERE code = $1`

	err := r.DB.QueryRowContext(dbCtx, query, code).
		Scan(&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.Value, &coupon.MaxUses,
			&coupon.UsesCount, &coupon.ValidFrom, &coupon.ValidTo, &coupon.Active)
	if err != nil {
		return nil, err
	}

	return coupon, nil
}

func (r *couponRepository) ListCoupons(ctx context.Context) ([]models.Coupon, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, code, discount_type, value, max_uses, uses_count, valid_from, valid_to, active
		FROM coupons
		ORDER BY id DESC`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var coupons []models.Coupon

	for rows.Next() {
		var coupon models.Coupon

		err := rows.Scan(&coupon.ID, &coupon.Code, &coupon.DiscountType, &coupon.Value, &coupon.MaxUses,
			&coupon.UsesCount, &coupon.ValidFrom, &coupon.ValidTo, &coupon.Active)
		if err != nil {
			return nil, err
		}

		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return coupons, nil
}
