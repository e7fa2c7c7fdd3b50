package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	validator       *validator.Validate
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
	}
}

// Tree handles GET /categories, the nested structure for storefront menus.
func (h *CategoryHandler) Tree() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		tree, err := h.categoryService.CategoryTree(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, tree)
	}
}

func (h *CategoryHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateCategoryRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		category, err := h.categoryService.CreateCategory(r.Context(), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusCreated, category)
	}
}

func (h *CategoryHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categoryID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.CreateCategoryRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		category, err := h.categoryService.UpdateCategory(r.Context(), categoryID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, category)
	}
}

func (h *CategoryHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categoryID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.categoryService.DeleteCategory(r.Context(), categoryID); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Category deleted"})
	}
}
