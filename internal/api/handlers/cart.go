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

type CartHandler struct {
	cartService   *service.CartService
	couponService *service.CouponService
	validator     *validator.Validate
}

func NewCartHandler(cartService *service.CartService, couponService *service.CouponService) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		couponService: couponService,
		validator:     validator.New(),
	}
}

func (h *CartHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.AddItemRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.UpdateQuantityRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateQuantity(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// PreviewCoupon reports the discount a code would give against the
// current cart total without consuming a use.
func (h *CartHandler) PreviewCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.ApplyCouponRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)

			return
		}

		coupon, discount, err := h.couponService.ValidateCoupon(r.Context(), req.Code, cart.Total)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, &models.CouponPreview{
			Code:         coupon.Code,
			DiscountType: coupon.DiscountType,
			Discount:     discount,
			Subtotal:     cart.Total,
			Total:        cart.Total - discount,
		})
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		productID, err := utils.ParseID(r, "productID")
		if err != nil {
			response.Error(w, err)

			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), claims.UserID, productID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}
