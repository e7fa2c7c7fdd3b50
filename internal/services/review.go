package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
)

type ReviewService struct {
	repo        repository.ReviewRepository
	productRepo repository.ProductRepository
	sanitizer   *bluemonday.Policy
}

func NewReviewService(repo repository.ReviewRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{
		repo:        repo,
		productRepo: productRepo,
		// Comments are rendered in storefront HTML, so strip all markup.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, productID int64, req *models.CreateReviewRequest) (*models.Review, error) {

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Product not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	if !product.IsActive {
		return nil, errors.NotFoundError("Product not found")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(s.sanitizer.Sanitize(req.Comment)),
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("You have already reviewed this product")
		}

		return nil, errors.DatabaseError("Failed to create review").WithError(err)
	}

	return review, nil
}

func (s *ReviewService) ListPending(ctx context.Context, page, size int) (*models.PaginatedResponse, error) {

	reviews, total, err := s.repo.ListPending(ctx, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list reviews").WithError(err)
	}

	if reviews == nil {
		reviews = []models.Review{}
	}

	return &models.PaginatedResponse{Items: reviews, Page: page, PerPage: size, Total: total}, nil
}

func (s *ReviewService) SetApproved(ctx context.Context, id int64, approved bool) error {

	err := s.repo.SetApproved(ctx, id, approved)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError("Review not found")
	}

	if err != nil {
		return errors.DatabaseError("Failed to update review").WithError(err)
	}

	return nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {

	err := s.repo.DeleteReview(ctx, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError("Review not found")
	}

	if err != nil {
		return errors.DatabaseError("Failed to delete review").WithError(err)
	}

	return nil
}
