package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.CreateReviewRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.CreateReview(r.Context(), claims.UserID, productID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusCreated, review)
	}
}

// ListPending is the moderation queue.
func (h *ReviewHandler) ListPending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		page, perPage := utils.Pagination(r, defaultPageSize, maxPageSize)

		result, err := h.reviewService.ListPending(r.Context(), page, perPage)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *ReviewHandler) Approve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		reviewID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.reviewService.SetApproved(r.Context(), reviewID, true); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Review approved"})
	}
}

func (h *ReviewHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		reviewID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		if err := h.reviewService.DeleteReview(r.Context(), reviewID); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Review deleted"})
	}
}
