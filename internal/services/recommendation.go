package service

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
)

type RecommendationService struct {
	repo        repository.RecommendationRepository
	productRepo repository.ProductRepository
}

func NewRecommendationService(repo repository.RecommendationRepository, productRepo repository.ProductRepository) *RecommendationService {
	return &RecommendationService{repo: repo, productRepo: productRepo}
}

const recommendationLimit = 8

// RelatedProducts blends co-purchase neighbours with category-mates.
// Co-purchased products rank first; random products from the same
// category fill the remaining slots.
func (s *RecommendationService) RelatedProducts(ctx context.Context, productID int64) ([]models.ProductSummary, error) {

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Product not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	related, err := s.repo.FrequentlyBoughtTogether(ctx, productID, recommendationLimit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load recommendations").WithError(err)
	}

	if len(related) < recommendationLimit {

		fill, err := s.repo.SimilarProducts(ctx, productID, product.CategoryID, recommendationLimit-len(related))
		if err != nil {
			return nil, errors.DatabaseError("Failed to load recommendations").WithError(err)
		}

		seen := make(map[int64]bool, len(related))
		for i := range related {
			seen[related[i].ID] = true
		}

		for i := range fill {
			if !seen[fill[i].ID] {
				related = append(related, fill[i])
			}
		}
	}

	if related == nil {
		related = []models.ProductSummary{}
	}

	return related, nil
}

// ForUser recommends from the user's favourite category, falling back to
// overall bestsellers for users without order history.
func (s *RecommendationService) ForUser(ctx context.Context, userID int64) ([]models.ProductSummary, error) {

	categoryID, err := s.repo.FavoriteCategoryID(ctx, userID)

	var products []models.ProductSummary

	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		products, err = s.repo.PopularProducts(ctx, recommendationLimit)
	case err != nil:
		return nil, errors.DatabaseError("Failed to load recommendations").WithError(err)
	default:
		products, err = s.repo.ProductsByCategory(ctx, categoryID, recommendationLimit)
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load recommendations").WithError(err)
	}

	if products == nil {
		products = []models.ProductSummary{}
	}

	return products, nil
}
