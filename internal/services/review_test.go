package service_test

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
)

func newReviewService() (*service.ReviewService, *MockReviewRepository, *MockProductRepository) {
	repo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)

	return service.NewReviewService(repo, productRepo), repo, productRepo
}

func TestReviewService_CreateReview_StripsMarkup(t *testing.T) {

	svc, repo, productRepo := newReviewService()

	product := &models.Product{ID: 10, Name: "Widget", IsActive: true}
	productRepo.On("GetProductByID", mock.Anything, int64(10)).Return(product, nil)
	repo.On("CreateReview", mock.Anything, mock.Anything).Return(nil)

	review, err := svc.CreateReview(context.Background(), 7, 10, &models.CreateReviewRequest{
		Rating:  5,
		Comment: `Great <script>alert("x")</script> product, <b>love it</b>`,
	})

	assert.NoError(t, err)
	require.NotNil(t, review)
	assert.NotContains(t, review.Comment, "<script>")
	assert.NotContains(t, review.Comment, "<b>")
	assert.Contains(t, review.Comment, "Great")
	assert.Contains(t, review.Comment, "love it")
}

func TestReviewService_CreateReview_DuplicatePerProduct(t *testing.T) {

	svc, repo, productRepo := newReviewService()

	product := &models.Product{ID: 10, Name: "Widget", IsActive: true}
	productRepo.On("GetProductByID", mock.Anything, int64(10)).Return(product, nil)
	repo.On("CreateReview", mock.Anything, mock.Anything).Return(&pq.Error{Code: "23505"})

	review, err := svc.CreateReview(context.Background(), 7, 10, &models.CreateReviewRequest{
		Rating:  4,
		Comment: "Again",
	})

	assert.Nil(t, review)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDuplicateEntry, appErr.Code)
}

func TestReviewService_CreateReview_InactiveProduct(t *testing.T) {

	svc, repo, productRepo := newReviewService()

	product := &models.Product{ID: 10, Name: "Widget", IsActive: false}
	productRepo.On("GetProductByID", mock.Anything, int64(10)).Return(product, nil)

	review, err := svc.CreateReview(context.Background(), 7, 10, &models.CreateReviewRequest{
		Rating:  4,
		Comment: "Nice",
	})

	assert.Nil(t, review)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	repo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}
