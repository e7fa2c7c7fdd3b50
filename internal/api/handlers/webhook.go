package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/errors"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils/response"
	"github.com/shopworks/storefront/pkg/stripe"
)

type WebhookHandler struct {
	orderService *service.OrderService
	stripeClient stripe.Client
}

func NewWebhookHandler(orderService *service.OrderService, stripeClient stripe.Client) *WebhookHandler {
	return &WebhookHandler{orderService: orderService, stripeClient: stripeClient}
}

const maxWebhookBodyBytes = 64 * 1024

// HandleStripe verifies the signature before anything else; an unsigned
// or tampered payload never reaches the order service.
func (h *WebhookHandler) HandleStripe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
		if err != nil {
			response.Error(w, errors.BadRequestError("Could not read webhook body").WithError(err))

			return
		}

		event, err := h.stripeClient.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			logger.Warn("Webhook signature verification failed", slog.Any("error", err))
			response.Error(w, errors.BadRequestError("Invalid webhook signature"))

			return
		}

		if err := h.orderService.ProcessWebhookEvent(r.Context(), event); err != nil {
			logger.Error("Webhook processing failed", slog.String("eventID", event.ID), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"received": "true"})
	}
}
