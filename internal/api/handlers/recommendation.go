package handlers

import (
	"net/http"

	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/errors"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils/response"
)

type RecommendationHandler struct {
	recommendationService *service.RecommendationService
}

func NewRecommendationHandler(recommendationService *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// ForMe handles GET /recommendations: picks from the user's favourite
// category, or overall bestsellers for new accounts.
func (h *RecommendationHandler) ForMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		products, err := h.recommendationService.ForUser(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}
