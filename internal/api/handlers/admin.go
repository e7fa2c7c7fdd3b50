package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

// AdminHandler groups the back-office endpoints that do not belong to a
// storefront domain handler: coupons, customer accounts and the dashboard.
type AdminHandler struct {
	couponService *service.CouponService
	userService   *service.UserService
	statsService  *service.StatsService
	validator     *validator.Validate
}

func NewAdminHandler(couponService *service.CouponService, userService *service.UserService, statsService *service.StatsService) *AdminHandler {
	return &AdminHandler{
		couponService: couponService,
		userService:   userService,
		statsService:  statsService,
		validator:     validator.New(),
	}
}

func (h *AdminHandler) CreateCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.CreateCouponRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		coupon, err := h.couponService.CreateCoupon(r.Context(), &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusCreated, coupon)
	}
}

func (h *AdminHandler) ListCoupons() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		coupons, err := h.couponService.ListCoupons(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, coupons)
	}
}

func (h *AdminHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		page, perPage := utils.Pagination(r, defaultPageSize, maxPageSize)

		result, err := h.userService.ListUsers(r.Context(), page, perPage)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *AdminHandler) SetUserActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		userID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		active, err := strconv.ParseBool(r.URL.Query().Get("active"))
		if err != nil {
			response.Error(w, errors.BadRequestError("Query parameter 'active' must be true or false"))

			return
		}

		if err := h.userService.SetUserActive(r.Context(), userID, active); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "User updated"})
	}
}

func (h *AdminHandler) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		stats, err := h.statsService.Dashboard(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}
