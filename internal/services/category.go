package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"github.com/shopworks/storefront/internal/cache"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	"github.com/shopworks/storefront/internal/utils"
)

type CategoryService struct {
	repo  repository.CategoryRepository
	cache cache.Cache
}

func NewCategoryService(repo repository.CategoryRepository, c cache.Cache) *CategoryService {
	return &CategoryService{repo: repo, cache: c}
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {

	if req.ParentID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.ParentID); err != nil {
			return nil, errors.BadRequestError("Parent category does not exist")
		}
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        utils.Slugify(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("A category with this name already exists")
		}

		return nil, errors.DatabaseError("Failed to create category").WithError(err)
	}

	s.invalidateTree(ctx)

	return category, nil
}

// CategoryTree returns all categories as a nested structure, cached.
func (s *CategoryService) CategoryTree(ctx context.Context) ([]*models.CategoryNode, error) {

	cacheKey := cache.Key(cache.CategoryKeyPrefix, "tree")

	var tree []*models.CategoryNode

	hit, err := s.cache.Get(ctx, cacheKey, &tree)
	if err != nil {
		slog.Warn("category cache read failed", slog.Any("error", err))
	}

	if hit {
		return tree, nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list categories").WithError(err)
	}

	tree = buildCategoryTree(categories)

	if err := s.cache.Set(ctx, cacheKey, tree, 0); err != nil {
		slog.Warn("category cache write failed", slog.Any("error", err))
	}

	return tree, nil
}

// buildCategoryTree folds the flat rows into a forest. Orphans whose
// parent is missing surface as roots rather than disappearing.
func buildCategoryTree(categories []models.Category) []*models.CategoryNode {

	nodes := make(map[int64]*models.CategoryNode, len(categories))

	for i := range categories {
		nodes[categories[i].ID] = &models.CategoryNode{
			ID:       categories[i].ID,
			Name:     categories[i].Name,
			Slug:     categories[i].Slug,
			Children: []*models.CategoryNode{},
		}
	}

	roots := []*models.CategoryNode{}

	for i := range categories {

		node := nodes[categories[i].ID]

		if categories[i].ParentID != nil {
			if parent, ok := nodes[*categories[i].ParentID]; ok {
				parent.Children = append(parent.Children, node)

				continue
			}
		}

		roots = append(roots, node)
	}

	return roots
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req *models.CreateCategoryRequest) (*models.Category, error) {

	category, err := s.repo.GetCategoryByID(ctx, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Category not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load category").WithError(err)
	}

	category.Name = req.Name
	category.Description = req.Description

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, errors.DatabaseError("Failed to update category").WithError(err)
	}

	s.invalidateTree(ctx)

	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {

	err := s.repo.DeleteCategory(ctx, id)
	if stderrors.Is(err, repository.ErrInUse) {
		return errors.ConflictError("Category still has products")
	}

	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError("Category not found")
	}

	if err != nil {
		return errors.DatabaseError("Failed to delete category").WithError(err)
	}

	s.invalidateTree(ctx)

	return nil
}

func (s *CategoryService) invalidateTree(ctx context.Context) {

	if err := s.cache.Delete(ctx, cache.Key(cache.CategoryKeyPrefix, "tree")); err != nil {
		slog.Warn("category cache invalidation failed", slog.Any("error", err))
	}
}
