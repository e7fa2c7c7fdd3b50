package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

type OrderHandler struct {
	orderService *service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.CheckoutRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.orderService.Checkout(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Warn("Checkout failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Order created", slog.Int64("orderID", result.OrderID), slog.Float64("total", result.TotalAmount))
		response.Success(w, http.StatusCreated, result)
	}
}

func (h *OrderHandler) ListMine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		page, perPage := utils.Pagination(r, defaultPageSize, maxPageSize)

		result, err := h.orderService.ListUserOrders(r.Context(), claims.UserID, page, perPage)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *OrderHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		order, err := h.orderService.GetOrder(r.Context(), claims.UserID, orderID, claims.IsAdmin)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListAll is the admin view with optional ?status= filtering.
func (h *OrderHandler) ListAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		page, perPage := utils.Pagination(r, defaultPageSize, maxPageSize)

		filter := models.OrderFilter{
			Status:  models.OrderStatus(r.URL.Query().Get("status")),
			Page:    page,
			PerPage: perPage,
		}

		result, err := h.orderService.ListOrders(r.Context(), filter)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *OrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)

			return
		}

		var req models.UpdateOrderStatusRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status)
		if err != nil {
			response.Error(w, err)

			return
		}

		logger.Info("Order status updated", slog.Int64("orderID", orderID), slog.String("status", string(order.Status)))
		response.Success(w, http.StatusOK, order)
	}
}
