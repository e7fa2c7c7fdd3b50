package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	stripesdk "github.com/stripe/stripe-go/v81"
	"github.com/stretchr/testify/require"

	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	"github.com/shopworks/storefront/internal/utils/response"
	"github.com/shopworks/storefront/pkg/stripe"
)

// Function-field fakes keep each test explicit about the repository
// behaviour it needs; unset methods fail loudly via nil dereference.

type fakeCartRepo struct {
	getOrCreate func(ctx context.Context, userID int64) (*models.Cart, error)
	addItem     func(ctx context.Context, cartID int64, product *models.Product, quantity int64) error
	updateQty   func(ctx context.Context, cartID, productID, quantity int64) error
}

func (f *fakeCartRepo) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	return f.getOrCreate(ctx, userID)
}

func (f *fakeCartRepo) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	return f.getOrCreate(ctx, userID)
}

func (f *fakeCartRepo) AddItem(ctx context.Context, cartID int64, product *models.Product, quantity int64) error {
	return f.addItem(ctx, cartID, product, quantity)
}

func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, cartID, productID, quantity int64) error {
	return f.updateQty(ctx, cartID, productID, quantity)
}

type fakeProductRepo struct {
	getByID func(ctx context.Context, id int64) (*models.Product, error)
}

func (f *fakeProductRepo) CreateProduct(context.Context, *models.Product) error { return nil }

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return f.getByID(ctx, id)
}

func (f *fakeProductRepo) GetProductBySlug(context.Context, string) (*models.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) UpdateProduct(context.Context, *models.Product) error { return nil }
func (f *fakeProductRepo) DeleteProduct(context.Context, int64) error           { return nil }

func (f *fakeProductRepo) ListProducts(context.Context, models.ProductFilter) ([]models.ProductSummary, int64, error) {
	return nil, 0, nil
}

func (f *fakeProductRepo) ListFeatured(context.Context, int) ([]models.ProductSummary, error) {
	return nil, nil
}

type fakeCouponRepo struct {
	getByCode func(ctx context.Context, code string) (*models.Coupon, error)
}

func (f *fakeCouponRepo) CreateCoupon(context.Context, *models.Coupon) error { return nil }

func (f *fakeCouponRepo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return f.getByCode(ctx, code)
}

func (f *fakeCouponRepo) ListCoupons(context.Context) ([]models.Coupon, error) { return nil, nil }

type fakeOrderRepo struct {
	createFromCart func(ctx context.Context, params repository.CheckoutParams) (*models.Order, error)
	markPaid       func(ctx context.Context, id int64) (bool, error)
}

func (f *fakeOrderRepo) CreateFromCart(ctx context.Context, params repository.CheckoutParams) (*models.Order, error) {
	return f.createFromCart(ctx, params)
}

func (f *fakeOrderRepo) GetOrderByID(context.Context, int64) (*models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListOrdersByUser(context.Context, int64, int, int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeOrderRepo) ListOrders(context.Context, models.OrderFilter) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (f *fakeOrderRepo) UpdateStatus(context.Context, int64, models.OrderStatus) (*models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	return f.markPaid(ctx, id)
}

func (f *fakeOrderRepo) SetStripePaymentID(context.Context, int64, string) error { return nil }

type fakeUserRepo struct {
	getByEmail func(ctx context.Context, email string) (*models.User, error)
	getByID    func(ctx context.Context, id int64) (*models.User, error)
}

func (f *fakeUserRepo) CreateUser(context.Context, *models.User) error { return nil }

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return f.getByID(ctx, id)
}

func (f *fakeUserRepo) UpdatePassword(context.Context, int64, string) error { return nil }
func (f *fakeUserRepo) SetActive(context.Context, int64, bool) error        { return nil }

func (f *fakeUserRepo) ListUsers(context.Context, int, int) ([]models.User, int64, error) {
	return nil, 0, nil
}

type fakeRateLimit struct {
	check func(ctx context.Context, email string) (bool, int, int, error)
}

func (f *fakeRateLimit) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {
	return f.check(ctx, email)
}

type fakeStripeClient struct {
	createIntent func(amount int64, currency, description string, metadata map[string]string) (*stripesdk.PaymentIntent, error)
	verify       func(payload []byte, signature string) (stripe.Event, error)
}

func (f *fakeStripeClient) CreatePaymentIntent(amount int64, currency string, description string, metadata map[string]string) (*stripesdk.PaymentIntent, error) {
	return f.createIntent(amount, currency, description, metadata)
}

func (f *fakeStripeClient) RefundPayment(string, int64) (*stripesdk.Refund, error) {
	return nil, nil
}

func (f *fakeStripeClient) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	return f.verify(payload, signature)
}

type noopNotifications struct{}

func (noopNotifications) Enqueue(*models.EmailMessage) bool                      { return true }
func (noopNotifications) SendWelcome(string, string)                             {}
func (noopNotifications) SendOrderConfirmation(string, string, *models.Order)    {}
func (noopNotifications) SendPasswordReset(string, string, string)               {}
func (noopNotifications) Stop()                                                  {}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}
