package service

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/config"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/metrics"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	"github.com/shopworks/storefront/pkg/stripe"
)

type OrderService struct {
	repo          repository.OrderRepository
	userRepo      repository.UserRepository
	stripeClient  stripe.Client
	notifications NotificationService
	stripeCfg     config.Stripe
	shipping      config.Shipping
}

func NewOrderService(repo repository.OrderRepository, userRepo repository.UserRepository, stripeClient stripe.Client, notifications NotificationService, stripeCfg config.Stripe, shipping config.Shipping) *OrderService {
	return &OrderService{
		repo:          repo,
		userRepo:      userRepo,
		stripeClient:  stripeClient,
		notifications: notifications,
		stripeCfg:     stripeCfg,
		shipping:      shipping,
	}
}

// Checkout turns the user's cart into a pending order. For stripe orders a
// payment intent is created after the commit; the order stays pending
// until the webhook confirms payment.
func (s *OrderService) Checkout(ctx context.Context, userID int64, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {

	logger := middleware.LoggerFromContext(ctx)

	order, err := s.repo.CreateFromCart(ctx, repository.CheckoutParams{
		UserID:            userID,
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        strings.ToUpper(req.CouponCode),
		ShippingAmount:    s.shipping.FlatAmount,
		Now:               time.Now(),
	})

	switch {
	case stderrors.Is(err, repository.ErrEmptyCart):
		return nil, errors.EmptyCartError()
	case stderrors.Is(err, repository.ErrAddressNotOwned):
		return nil, errors.InvalidAddressError()
	case stderrors.Is(err, repository.ErrCouponInvalid):
		return nil, errors.InvalidCouponError("Coupon is expired or no longer available")
	case err != nil:
		return nil, errors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.OrderCreated()

	response := &models.CheckoutResponse{
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}

	if req.PaymentMethod == "stripe" {

		intent, err := s.stripeClient.CreatePaymentIntent(
			amountInCents(order.TotalAmount),
			s.stripeCfg.Currency,
			fmt.Sprintf("Order #%d", order.ID),
			map[string]string{"order_id": strconv.FormatInt(order.ID, 10)},
		)
		if err != nil {
			return nil, errors.ThirdPartyError("Failed to initiate payment").WithError(err)
		}

		if err := s.repo.SetStripePaymentID(ctx, order.ID, intent.ID); err != nil {
			return nil, errors.DatabaseError("Failed to record payment reference").WithError(err)
		}

		response.ClientSecret = intent.ClientSecret
	}

	if user, err := s.userRepo.GetUserByID(ctx, userID); err == nil {
		s.notifications.SendOrderConfirmation(user.Email, user.FullName, order)
	} else {
		logger.Warn("could not load user for order confirmation email", slog.Int64("userID", userID), slog.Any("error", err))
	}

	return response, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64, isAdmin bool) (*models.Order, error) {

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundError("Order not found")
	}

	if err != nil {
		return nil, errors.DatabaseError("Failed to load order").WithError(err)
	}

	// Customers only see their own orders. Hidden, not forbidden.
	if !isAdmin && (order.UserID == nil || *order.UserID != userID) {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, page, size int) (*models.PaginatedResponse, error) {

	orders, total, err := s.repo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &models.PaginatedResponse{Items: orders, Page: page, PerPage: size, Total: total}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) (*models.PaginatedResponse, error) {

	orders, total, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &models.PaginatedResponse{Items: orders, Page: filter.Page, PerPage: filter.PerPage, Total: total}, nil
}

// UpdateStatus applies an admin transition. Moving to refunded also
// refunds the charge when one exists.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, next models.OrderStatus) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	if next == models.OrderStatusRefunded {

		order, err := s.repo.GetOrderByID(ctx, orderID)
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found")
		}

		if err != nil {
			return nil, errors.DatabaseError("Failed to load order").WithError(err)
		}

		if !order.Status.CanTransitionTo(next) {
			return nil, errors.InvalidStatusError(fmt.Sprintf("Cannot move order from %s to %s", order.Status, next))
		}

		if order.StripePaymentID != "" {
			if _, err := s.stripeClient.RefundPayment(order.StripePaymentID, amountInCents(order.TotalAmount)); err != nil {
				return nil, errors.ThirdPartyError("Failed to refund payment").WithError(err)
			}

			logger.Info("refunded payment", slog.Int64("orderID", orderID), slog.String("paymentIntentID", order.StripePaymentID))
		}
	}

	order, err := s.repo.UpdateStatus(ctx, orderID, next)

	switch {
	case stderrors.Is(err, repository.ErrInvalidTransition):
		return nil, errors.InvalidStatusError(fmt.Sprintf("Cannot move order to %s", next))
	case stderrors.Is(err, sql.ErrNoRows):
		return nil, errors.NotFoundError("Order not found")
	case err != nil:
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	return order, nil
}

// ProcessWebhookEvent verifies nothing itself; the handler has already
// checked the signature. Only payment_intent.succeeded mutates state, and
// only for orders still pending, so provider retries are harmless.
func (s *OrderService) ProcessWebhookEvent(ctx context.Context, event stripe.Event) error {

	logger := middleware.LoggerFromContext(ctx)

	if event.Type != "payment_intent.succeeded" {
		logger.Debug("ignoring webhook event", slog.String("type", string(event.Type)))

		return nil
	}

	var intent struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	}

	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return errors.BadRequestError("Malformed webhook payload").WithError(err)
	}

	orderID, err := strconv.ParseInt(intent.Metadata["order_id"], 10, 64)
	if err != nil {
		logger.Warn("webhook payment intent without order_id metadata", slog.String("paymentIntentID", intent.ID))

		return nil
	}

	changed, err := s.repo.MarkPaid(ctx, orderID)
	if err != nil {
		return errors.DatabaseError("Failed to mark order paid").WithError(err)
	}

	if changed {
		metrics.OrderPaid()
		logger.Info("order paid via webhook", slog.Int64("orderID", orderID))
	} else {
		logger.Info("webhook for order not in pending state, ignoring", slog.Int64("orderID", orderID))
	}

	return nil
}

func amountInCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
