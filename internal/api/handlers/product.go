package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

type ProductHandler struct {
	productService        *service.ProductService
	recommendationService *service.RecommendationService
	validator             *validator.Validate
}

func NewProductHandler(productService *service.ProductService, recommendationService *service.RecommendationService) *ProductHandler {
	return &ProductHandler{
		productService:        productService,
		recommendationService: recommendationService,
		validator:             validator.New(),
	}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// List handles GET /products with search, category and price filters.
func (h *ProductHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		query := r.URL.Query()

		page, perPage := utils.Pagination(r, defaultPageSize, maxPageSize)

		filter := models.ProductFilter{
			Search:  query.Get("search"),
			Page:    page,
			PerPage: perPage,
		}

		if raw := query.Get("category"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				filter.CategoryID = id
			}
		}

		if raw := query.Get("min_price"); raw != "" {
			if price, err := strconv.ParseFloat(raw, 64); err == nil {
				filter.MinPrice = &price
			}
		}

		if raw := query.Get("max_price"); raw != "" {
			if price, err := strconv.ParseFloat(raw, 64); err == nil {
				filter.MaxPrice = &price
			}
		}

		result, err := h.productService.ListProducts(r.Context(), filter)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

// Get resolves by numeric id or slug and includes approved reviews.
func (h *ProductHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		detail, err := h.productService.GetProduct(r.Context(), r.PathValue("idOrSlug"))
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, detail)
	}
}

func (h *ProductHandler) Featured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		products, err := h.productService.FeaturedProducts(r.Context(), defaultPageSize)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) Related() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		products, err := h.recommendationService.RelatedProducts(r.Context(), productID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		logger.Info("Product created", slog.Int64("productID", product.ID), slog.String("slug", product.Slug))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.UpdateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), productID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.productService.DeleteProduct(r.Context(), productID); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Product deleted"})
	}
}
