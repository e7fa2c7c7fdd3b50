package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	service "github.com/shopworks/storefront/internal/services"
)

func newCategoryService() (*service.CategoryService, *MockCategoryRepository, *MockCache) {
	repo := new(MockCategoryRepository)
	c := new(MockCache)

	return service.NewCategoryService(repo, c), repo, c
}

func int64Ptr(v int64) *int64 { return &v }

func TestCategoryService_CategoryTree(t *testing.T) {

	svc, repo, c := newCategoryService()

	categories := []models.Category{
		{ID: 1, Name: "Electronics", Slug: "electronics"},
		{ID: 2, Name: "Laptops", Slug: "laptops", ParentID: int64Ptr(1)},
		{ID: 3, Name: "Phones", Slug: "phones", ParentID: int64Ptr(1)},
		{ID: 4, Name: "Books", Slug: "books"},
		// Parent 99 does not exist, the node must still be reachable.
		{ID: 5, Name: "Orphan", Slug: "orphan", ParentID: int64Ptr(99)},
	}

	c.On("Get", mock.Anything, "categories:tree", mock.Anything).Return(false, nil)
	repo.On("ListCategories", mock.Anything).Return(categories, nil)
	c.On("Set", mock.Anything, "categories:tree", mock.Anything, mock.Anything).Return(nil)

	tree, err := svc.CategoryTree(context.Background())

	assert.NoError(t, err)
	require.Len(t, tree, 3)

	assert.Equal(t, "Electronics", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "Laptops", tree[0].Children[0].Name)
	assert.Equal(t, "Phones", tree[0].Children[1].Name)

	assert.Equal(t, "Books", tree[1].Name)
	assert.Empty(t, tree[1].Children)

	assert.Equal(t, "Orphan", tree[2].Name)
}

func TestCategoryService_CategoryTree_CacheHitSkipsRepository(t *testing.T) {

	svc, repo, c := newCategoryService()

	c.On("Get", mock.Anything, "categories:tree", mock.Anything).Return(true, nil)

	_, err := svc.CategoryTree(context.Background())

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "ListCategories", mock.Anything)
}

func TestCategoryService_CreateCategory_UnknownParent(t *testing.T) {

	svc, repo, _ := newCategoryService()

	repo.On("GetCategoryByID", mock.Anything, int64(99)).Return(nil, assert.AnError)

	category, err := svc.CreateCategory(context.Background(), &models.CreateCategoryRequest{
		Name:     "Laptops",
		ParentID: int64Ptr(99),
	})

	assert.Nil(t, category)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBadRequest, appErr.Code)
}

func TestCategoryService_CreateCategory_SlugifiesName(t *testing.T) {

	svc, repo, c := newCategoryService()

	repo.On("CreateCategory", mock.Anything, mock.MatchedBy(func(category *models.Category) bool {
		return category.Slug == "home-garden"
	})).Return(nil)
	c.On("Delete", mock.Anything, "categories:tree").Return(nil)

	category, err := svc.CreateCategory(context.Background(), &models.CreateCategoryRequest{Name: "Home & Garden"})

	assert.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, "home-garden", category.Slug)
}

func TestCategoryService_DeleteCategory_StillHasProducts(t *testing.T) {

	svc, repo, _ := newCategoryService()

	repo.On("DeleteCategory", mock.Anything, int64(1)).Return(repository.ErrInUse)

	err := svc.DeleteCategory(context.Background(), 1)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConflict, appErr.Code)
}
