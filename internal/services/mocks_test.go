package service_test

import (
	"context"
	"time"

	stripesdk "github.com/stripe/stripe-go/v81"
	"github.com/stretchr/testify/mock"

	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
	"github.com/shopworks/storefront/pkg/stripe"
)

type MockCartRepository struct{ mock.Mock }

func (m *MockCartRepository) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)

	if cart := args.Get(0); cart != nil {
		return cart.(*models.Cart), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)

	if cart := args.Get(0); cart != nil {
		return cart.(*models.Cart), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCartRepository) AddItem(ctx context.Context, cartID int64, product *models.Product, quantity int64) error {
	return m.Called(ctx, cartID, product, quantity).Error(0)
}

func (m *MockCartRepository) UpdateItemQuantity(ctx context.Context, cartID, productID, quantity int64) error {
	return m.Called(ctx, cartID, productID, quantity).Error(0)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)

	if product := args.Get(0); product != nil {
		return product.(*models.Product), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)

	if product := args.Get(0); product != nil {
		return product.(*models.Product), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.ProductSummary, int64, error) {
	args := m.Called(ctx, filter)

	var products []models.ProductSummary
	if v := args.Get(0); v != nil {
		products = v.([]models.ProductSummary)
	}

	return products, args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ListFeatured(ctx context.Context, limit int) ([]models.ProductSummary, error) {
	args := m.Called(ctx, limit)

	var products []models.ProductSummary
	if v := args.Get(0); v != nil {
		products = v.([]models.ProductSummary)
	}

	return products, args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) CreateFromCart(ctx context.Context, params repository.CheckoutParams) (*models.Order, error) {
	args := m.Called(ctx, params)

	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)

	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, int64, error) {
	args := m.Called(ctx, userID, page, size)

	var orders []models.Order
	if v := args.Get(0); v != nil {
		orders = v.([]models.Order)
	}

	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, filter)

	var orders []models.Order
	if v := args.Get(0); v != nil {
		orders = v.([]models.Order)
	}

	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, next models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, id, next)

	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetStripePaymentID(ctx context.Context, id int64, paymentIntentID string) error {
	return m.Called(ctx, id, paymentIntentID).Error(0)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)

	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)

	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, page, size int) ([]models.User, int64, error) {
	args := m.Called(ctx, page, size)

	var users []models.User
	if v := args.Get(0); v != nil {
		users = v.([]models.User)
	}

	return users, args.Get(1).(int64), args.Error(2)
}

type MockRateLimitRepository struct{ mock.Mock }

func (m *MockRateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {
	args := m.Called(ctx, email)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)

	if category := args.Get(0); category != nil {
		return category.(*models.Category), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)

	var categories []models.Category
	if v := args.Get(0); v != nil {
		categories = v.([]models.Category)
	}

	return categories, args.Error(1)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockRecommendationRepository struct{ mock.Mock }

func (m *MockRecommendationRepository) FrequentlyBoughtTogether(ctx context.Context, productID int64, limit int) ([]models.ProductSummary, error) {
	args := m.Called(ctx, productID, limit)

	var products []models.ProductSummary
	if v := args.Get(0); v != nil {
		products = v.([]models.ProductSummary)
	}

	return products, args.Error(1)
}

func (m *MockRecommendationRepository) SimilarProducts(ctx context.Context, productID, categoryID int64, limit int) ([]models.ProductSummary, error) {
	args := m.Called(ctx, productID, categoryID, limit)

	var products []models.ProductSummary
	if v := args.Get(0); v != nil {
		products = v.([]models.ProductSummary)
	}

	return products, args.Error(1)
}

func (m *MockRecommendationRepository) FavoriteCategoryID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecommendationRepository) ProductsByCategory(ctx context.Context, categoryID int64, limit int) ([]models.ProductSummary, error) {
	args := m.Called(ctx, categoryID, limit)

	var products []models.ProductSummary
	if v := args.Get(0); v != nil {
		products = v.([]models.ProductSummary)
	}

	return products, args.Error(1)
}

func (m *MockRecommendationRepository) PopularProducts(ctx context.Context, limit int) ([]models.ProductSummary, error) {
	args := m.Called(ctx, limit)

	var products []models.ProductSummary
	if v := args.Get(0); v != nil {
		products = v.([]models.ProductSummary)
	}

	return products, args.Error(1)
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) ListApprovedByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	args := m.Called(ctx, productID)

	var reviews []models.Review
	if v := args.Get(0); v != nil {
		reviews = v.([]models.Review)
	}

	return reviews, args.Error(1)
}

func (m *MockReviewRepository) ListPending(ctx context.Context, page, size int) ([]models.Review, int64, error) {
	args := m.Called(ctx, page, size)

	var reviews []models.Review
	if v := args.Get(0); v != nil {
		reviews = v.([]models.Review)
	}

	return reviews, args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	return m.Called(ctx, id, approved).Error(0)
}

func (m *MockReviewRepository) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(ctx context.Context, key string, value any) (bool, error) {
	args := m.Called(ctx, key, value)

	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

type MockStripeClient struct{ mock.Mock }

func (m *MockStripeClient) CreatePaymentIntent(amount int64, currency string, description string, metadata map[string]string) (*stripesdk.PaymentIntent, error) {
	args := m.Called(amount, currency, description, metadata)

	if intent := args.Get(0); intent != nil {
		return intent.(*stripesdk.PaymentIntent), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockStripeClient) RefundPayment(paymentIntentID string, amount int64) (*stripesdk.Refund, error) {
	args := m.Called(paymentIntentID, amount)

	if ref := args.Get(0); ref != nil {
		return ref.(*stripesdk.Refund), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockStripeClient) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)

	return args.Get(0).(stripe.Event), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) Enqueue(msg *models.EmailMessage) bool {
	return m.Called(msg).Bool(0)
}

func (m *MockNotificationService) SendWelcome(email, name string) {
	m.Called(email, name)
}

func (m *MockNotificationService) SendOrderConfirmation(email, name string, order *models.Order) {
	m.Called(email, name, order)
}

func (m *MockNotificationService) SendPasswordReset(email, name, resetURL string) {
	m.Called(email, name, resetURL)
}

func (m *MockNotificationService) Stop() {
	m.Called()
}
