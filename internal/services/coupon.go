package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
)

type CouponService struct {
	repo repository.CouponRepository
}

func NewCouponService(repo repository.CouponRepository) *CouponService {
	return &CouponService{repo: repo}
}

func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {

	coupon := &models.Coupon{
		Code:         strings.ToUpper(req.Code),
		DiscountType: req.DiscountType,
		Value:        req.Value,
		MaxUses:      req.MaxUses,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo,
		Active:       req.Active,
	}

	if coupon.DiscountType == models.DiscountTypePercent && coupon.Value > 100 {
		return nil, errors.ValidationError("Percent discount cannot exceed 100")
	}

	if err := s.repo.CreateCoupon(ctx, coupon); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("A coupon with this code already exists")
		}

		return nil, errors.DatabaseError("Failed to create coupon").WithError(err)
	}

	return coupon, nil
}

func (s *CouponService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {

	coupons, err := s.repo.ListCoupons(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list coupons").WithError(err)
	}

	if coupons == nil {
		coupons = []models.Coupon{}
	}

	return coupons, nil
}

// ValidateCoupon is the storefront preview: it reports the discount a code
// would give against a subtotal, without consuming a use.
func (s *CouponService) ValidateCoupon(ctx context.Context, code string, subtotal float64) (*models.Coupon, float64, error) {

	coupon, err := s.repo.GetCouponByCode(ctx, strings.ToUpper(code))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, 0, errors.InvalidCouponError("Unknown coupon code")
	}

	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to load coupon").WithError(err)
	}

	if !coupon.IsValid(time.Now()) {
		return nil, 0, errors.InvalidCouponError("Coupon is expired or no longer available")
	}

	return coupon, coupon.Discount(subtotal), nil
}
