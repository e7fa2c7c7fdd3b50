package service_test

import (
	"context"
	"encoding/json"
	"testing"

	stripesdk "github.com/stripe/stripe-go/v81"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopworks/storefront/internal/config"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/pkg/stripe"
)

type orderServiceMocks struct {
	repo          *MockOrderRepository
	userRepo      *MockUserRepository
	stripeClient  *MockStripeClient
	notifications *MockNotificationService
}

func newOrderService() (*service.OrderService, *orderServiceMocks) {

	m := &orderServiceMocks{
		repo:          new(MockOrderRepository),
		userRepo:      new(MockUserRepository),
		stripeClient:  new(MockStripeClient),
		notifications: new(MockNotificationService),
	}

	svc := service.NewOrderService(
		m.repo,
		m.userRepo,
		m.stripeClient,
		m.notifications,
		config.Stripe{Currency: "usd"},
		config.Shipping{FlatAmount: 5.00},
	)

	return svc, m
}

func TestOrderService_Checkout_StripeOrder(t *testing.T) {

	svc, m := newOrderService()

	userID := int64(7)
	order := &models.Order{ID: 100, UserID: &userID, Status: models.OrderStatusPending, TotalAmount: 95.00}

	m.repo.On("CreateFromCart", mock.Anything, mock.MatchedBy(func(params repository.CheckoutParams) bool {
		return params.UserID == 7 &&
			params.ShippingAddressID == 2 &&
			params.CouponCode == "SUMMER10" &&
			params.ShippingAmount == 5.00
	})).Return(order, nil)

	m.stripeClient.On("CreatePaymentIntent", int64(9500), "usd", "Order #100", map[string]string{"order_id": "100"}).
		Return(&stripesdk.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)

	m.repo.On("SetStripePaymentID", mock.Anything, int64(100), "pi_123").Return(nil)

	m.userRepo.On("GetUserByID", mock.Anything, int64(7)).
		Return(&models.User{ID: 7, Email: "jo@example.com", FullName: "Jo"}, nil)
	m.notifications.On("SendOrderConfirmation", "jo@example.com", "Jo", order).Return()

	resp, err := svc.Checkout(context.Background(), 7, &models.CheckoutRequest{
		ShippingAddressID: 2,
		PaymentMethod:     "stripe",
		CouponCode:        "summer10",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(100), resp.OrderID)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.InDelta(t, 95.00, resp.TotalAmount, 0.001)

	m.stripeClient.AssertExpectations(t)
	m.notifications.AssertExpectations(t)
}

func TestOrderService_Checkout_CashOnDeliverySkipsStripe(t *testing.T) {

	svc, m := newOrderService()

	userID := int64(7)
	order := &models.Order{ID: 101, UserID: &userID, Status: models.OrderStatusPending, TotalAmount: 30.00}

	m.repo.On("CreateFromCart", mock.Anything, mock.Anything).Return(order, nil)
	m.userRepo.On("GetUserByID", mock.Anything, int64(7)).
		Return(&models.User{ID: 7, Email: "jo@example.com", FullName: "Jo"}, nil)
	m.notifications.On("SendOrderConfirmation", "jo@example.com", "Jo", order).Return()

	resp, err := svc.Checkout(context.Background(), 7, &models.CheckoutRequest{
		ShippingAddressID: 2,
		PaymentMethod:     "cod",
	})

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.Empty(t, resp.ClientSecret)
	m.stripeClient.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_RepositoryErrors(t *testing.T) {

	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"empty cart", repository.ErrEmptyCart, errors.ErrCodeEmptyCart},
		{"address not owned", repository.ErrAddressNotOwned, errors.ErrCodeInvalidAddress},
		{"invalid coupon", repository.ErrCouponInvalid, errors.ErrCodeInvalidCoupon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService()

			m.repo.On("CreateFromCart", mock.Anything, mock.Anything).Return(nil, tt.repoErr)

			resp, err := svc.Checkout(context.Background(), 7, &models.CheckoutRequest{
				ShippingAddressID: 2,
				PaymentMethod:     "cod",
			})

			assert.Nil(t, resp)

			appErr, ok := errors.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestOrderService_Checkout_StripeFailureSurfacesAsThirdParty(t *testing.T) {

	svc, m := newOrderService()

	userID := int64(7)
	order := &models.Order{ID: 100, UserID: &userID, Status: models.OrderStatusPending, TotalAmount: 95.00}

	m.repo.On("CreateFromCart", mock.Anything, mock.Anything).Return(order, nil)
	m.stripeClient.On("CreatePaymentIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	resp, err := svc.Checkout(context.Background(), 7, &models.CheckoutRequest{
		ShippingAddressID: 2,
		PaymentMethod:     "stripe",
	})

	assert.Nil(t, resp)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeThirdPartyError, appErr.Code)
}

func TestOrderService_GetOrder_HidesOtherUsersOrders(t *testing.T) {

	svc, m := newOrderService()

	owner := int64(42)
	order := &models.Order{ID: 100, UserID: &owner, Status: models.OrderStatusPaid}

	m.repo.On("GetOrderByID", mock.Anything, int64(100)).Return(order, nil)

	got, err := svc.GetOrder(context.Background(), 7, 100, false)

	assert.Nil(t, got)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)

	got, err = svc.GetOrder(context.Background(), 7, 100, true)

	assert.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestOrderService_UpdateStatus_RefundsStripeCharge(t *testing.T) {

	svc, m := newOrderService()

	userID := int64(7)
	order := &models.Order{ID: 100, UserID: &userID, Status: models.OrderStatusPaid, TotalAmount: 95.00, StripePaymentID: "pi_123"}
	refunded := &models.Order{ID: 100, UserID: &userID, Status: models.OrderStatusRefunded, TotalAmount: 95.00, StripePaymentID: "pi_123"}

	m.repo.On("GetOrderByID", mock.Anything, int64(100)).Return(order, nil)
	m.stripeClient.On("RefundPayment", "pi_123", int64(9500)).Return(&stripesdk.Refund{ID: "re_1"}, nil)
	m.repo.On("UpdateStatus", mock.Anything, int64(100), models.OrderStatusRefunded).Return(refunded, nil)

	got, err := svc.UpdateStatus(context.Background(), 100, models.OrderStatusRefunded)

	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.OrderStatusRefunded, got.Status)
	m.stripeClient.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_InvalidTransition(t *testing.T) {

	svc, m := newOrderService()

	m.repo.On("UpdateStatus", mock.Anything, int64(100), models.OrderStatusShipped).
		Return(nil, repository.ErrInvalidTransition)

	got, err := svc.UpdateStatus(context.Background(), 100, models.OrderStatusShipped)

	assert.Nil(t, got)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidStatus, appErr.Code)
}

func TestOrderService_UpdateStatus_RefundBlockedFromTerminalState(t *testing.T) {

	svc, m := newOrderService()

	userID := int64(7)
	order := &models.Order{ID: 100, UserID: &userID, Status: models.OrderStatusCancelled, StripePaymentID: "pi_123"}

	m.repo.On("GetOrderByID", mock.Anything, int64(100)).Return(order, nil)

	got, err := svc.UpdateStatus(context.Background(), 100, models.OrderStatusRefunded)

	assert.Nil(t, got)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidStatus, appErr.Code)
	m.stripeClient.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything)
}

func paymentSucceededEvent(t *testing.T, intentID, orderID string) stripe.Event {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":       intentID,
		"metadata": map[string]string{"order_id": orderID},
	})
	require.NoError(t, err)

	return stripe.Event{
		Type: "payment_intent.succeeded",
		Data: &stripesdk.EventData{Raw: payload},
	}
}

func TestOrderService_ProcessWebhookEvent_MarksOrderPaid(t *testing.T) {

	svc, m := newOrderService()

	m.repo.On("MarkPaid", mock.Anything, int64(100)).Return(true, nil)

	err := svc.ProcessWebhookEvent(context.Background(), paymentSucceededEvent(t, "pi_123", "100"))

	assert.NoError(t, err)
	m.repo.AssertExpectations(t)
}

func TestOrderService_ProcessWebhookEvent_IgnoresOtherEventTypes(t *testing.T) {

	svc, m := newOrderService()

	event := stripe.Event{Type: "payment_intent.created", Data: &stripesdk.EventData{Raw: []byte(`{}`)}}

	err := svc.ProcessWebhookEvent(context.Background(), event)

	assert.NoError(t, err)
	m.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestOrderService_ProcessWebhookEvent_MissingOrderMetadata(t *testing.T) {

	svc, m := newOrderService()

	payload := []byte(`{"id": "pi_123", "metadata": {}}`)
	event := stripe.Event{Type: "payment_intent.succeeded", Data: &stripesdk.EventData{Raw: payload}}

	err := svc.ProcessWebhookEvent(context.Background(), event)

	assert.NoError(t, err)
	m.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestOrderService_ProcessWebhookEvent_RetryAfterPaidIsHarmless(t *testing.T) {

	svc, m := newOrderService()

	m.repo.On("MarkPaid", mock.Anything, int64(100)).Return(false, nil)

	err := svc.ProcessWebhookEvent(context.Background(), paymentSucceededEvent(t, "pi_123", "100"))

	assert.NoError(t, err)
	m.repo.AssertExpectations(t)
}
