package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"github.com/shopworks/storefront/internal/config"
)

// Sentinel errors surfaced by repositories so services can map them to the
// right API error without string matching.
var (
	ErrEmptyCart         = errors.New("cart has no items")
	ErrAddressNotOwned   = errors.New("address does not belong to user")
	ErrCouponInvalid     = errors.New("coupon is not valid")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInUse             = errors.New("entity is referenced by other rows")
)

type Repositories struct {
	DB *sql.DB

	User           UserRepository
	Address        AddressRepository
	Category       CategoryRepository
	Product        ProductRepository
	Cart           CartRepository
	Coupon         CouponRepository
	Order          OrderRepository
	Review         ReviewRepository
	Recommendation RecommendationRepository
	Stats          StatsRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repositories{
		DB:             db,
		User:           NewUserRepo(db),
		Address:        NewAddressRepo(db),
		Category:       NewCategoryRepo(db),
		Product:        NewProductRepo(db),
		Cart:           NewCartRepo(db),
		Coupon:         NewCouponRepo(db),
		Order:          NewOrderRepo(db),
		Review:         NewReviewRepo(db),
		Recommendation: NewRecommendationRepo(db),
		Stats:          NewStatsRepo(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// failure (duplicate email, duplicate review, duplicate slug).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
