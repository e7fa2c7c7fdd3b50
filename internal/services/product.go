package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"strconv"

	"github.com/shopworks/storefront/internal/cache"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	"github.com/shopworks/storefront/internal/utils"
)

type ProductService struct {
	repo       repository.ProductRepository
	reviewRepo repository.ReviewRepository
	cache      cache.Cache
}

func NewProductService(repo repository.ProductRepository, reviewRepo repository.ReviewRepository, c cache.Cache) *ProductService {
	return &ProductService{repo: repo, reviewRepo: reviewRepo, cache: c}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Slug:          utils.Slugify(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		SKU:           req.SKU,
		Images:        req.Images,
		IsFeatured:    req.IsFeatured,
	}

	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errors.DuplicateEntryError("A product with this name or SKU already exists")
		}

		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	s.invalidateLists(ctx)

	return product, nil
}

// GetProduct resolves by numeric id or by slug, serves from cache when
// possible and attaches the approved reviews.
func (s *ProductService) GetProduct(ctx context.Context, idOrSlug string) (*models.ProductDetail, error) {

	cacheKey := cache.Key(cache.ProductKeyPrefix, idOrSlug)

	product := &models.Product{}

	hit, err := s.cache.Get(ctx, cacheKey, product)
	if err != nil {
		slog.Warn("product cache read failed", slog.String("key", cacheKey), slog.Any("error", err))
	}

	if !hit {

		if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil {
			product, err = s.repo.GetProductByID(ctx, id)
		} else {
			product, err = s.repo.GetProductBySlug(ctx, idOrSlug)
		}

		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found")
		}

		if err != nil {
			return nil, errors.DatabaseError("Failed to load product").WithError(err)
		}

		if err := s.cache.Set(ctx, cacheKey, product, 0); err != nil {
			slog.Warn("product cache write failed", slog.String("key", cacheKey), slog.Any("error", err))
		}
	}

	if !product.IsActive {
		return nil, errors.NotFoundError("Product not found")
	}

	reviews, err := s.reviewRepo.ListApprovedByProduct(ctx, product.ID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load reviews").WithError(err)
	}

	if reviews == nil {
		reviews = []models.Review{}
	}

	return &models.ProductDetail{Product: *product, Reviews: reviews}, nil
}

func (s *ProductService) GetProductForAdmin(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Product not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.GetProductForAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Description != nil {
		product.Description = *req.Description
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if req.Images != nil {
		product.Images = req.Images
	}

	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	// Cross-field rule the request tags cannot see on partial updates:
	// changing only one of the pair must not leave discount above price.
	if product.DiscountPrice != nil && *product.DiscountPrice > product.Price {
		return nil, errors.ValidationError("Discount price cannot exceed the list price")
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidateProduct(ctx, product)

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {

	product, err := s.GetProductForAdmin(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.DeleteProduct(ctx, id)
	if stderrors.Is(err, repository.ErrInUse) {
		return errors.ConflictError("Product has been ordered and cannot be deleted")
	}

	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError("Product not found")
	}

	if err != nil {
		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidateProduct(ctx, product)

	return nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) (*models.PaginatedResponse, error) {

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list products").WithError(err)
	}

	if products == nil {
		products = []models.ProductSummary{}
	}

	return &models.PaginatedResponse{
		Items:   products,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Total:   total,
	}, nil
}

func (s *ProductService) invalidateProduct(ctx context.Context, product *models.Product) {

	for _, key := range []string{
		cache.Key(cache.ProductKeyPrefix, strconv.FormatInt(product.ID, 10)),
		cache.Key(cache.ProductKeyPrefix, product.Slug),
	} {
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.Warn("product cache invalidation failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	s.invalidateLists(ctx)
}

func (s *ProductService) invalidateLists(ctx context.Context) {

	if err := s.cache.Delete(ctx, cache.Key(cache.ProductListKeyPrefix, "featured")); err != nil {
		slog.Warn("product list cache invalidation failed", slog.Any("error", err))
	}
}

// FeaturedProducts serves the storefront landing strip from cache.
func (s *ProductService) FeaturedProducts(ctx context.Context, limit int) ([]models.ProductSummary, error) {

	cacheKey := cache.Key(cache.ProductListKeyPrefix, "featured")

	var products []models.ProductSummary

	hit, err := s.cache.Get(ctx, cacheKey, &products)
	if err != nil {
		slog.Warn("featured cache read failed", slog.Any("error", err))
	}

	if hit {
		return products, nil
	}

	products, err = s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list featured products").WithError(err)
	}

	if products == nil {
		products = []models.ProductSummary{}
	}

	if err := s.cache.Set(ctx, cacheKey, products, 0); err != nil {
		slog.Warn("featured cache write failed", slog.Any("error", err))
	}

	return products, nil
}
