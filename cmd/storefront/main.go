package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopworks/storefront/internal/api/handlers"
	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/cache"
	"github.com/shopworks/storefront/internal/config"
	"github.com/shopworks/storefront/internal/health"
	"github.com/shopworks/storefront/internal/metrics"
	repository "github.com/shopworks/storefront/internal/repositories"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/telemetry"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/pkg/sendgrid"
	"github.com/shopworks/storefront/pkg/stripe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	utils.SetDBTimeout(cfg.Database.QueryTimeout)

	shutdownTracing, err := telemetry.Setup(context.Background(), "storefront", cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		slog.Error("Error setting up tracing", slog.Any("error", err))
		os.Exit(1)
	}

	if err := repository.RunMigrations(cfg.Database.GetDSN(), cfg.Database.MigrationsPath); err != nil {
		slog.Error("Error applying migrations", slog.Any("error", err))
		os.Exit(1)
	}

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("Error accessing the database", slog.Any("error", err))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		}
	}()

	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("Error accessing the redis instance", slog.Any("error", err))
		os.Exit(1)
	}

	rateLimitRepo := repository.NewRateLimitRepo(redisClient, cfg)
	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	notificationService := service.NewNotificationService(emailService)
	userService := service.NewUserService(repos.User, rateLimitRepo, notificationService, cfg.Security, cfg.FrontendURL)
	addressService := service.NewAddressService(repos.Address)
	categoryService := service.NewCategoryService(repos.Category, redisCache)
	productService := service.NewProductService(repos.Product, repos.Review, redisCache)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	couponService := service.NewCouponService(repos.Coupon)
	orderService := service.NewOrderService(repos.Order, repos.User, stripeClient, notificationService, cfg.Stripe, cfg.Shipping)
	reviewService := service.NewReviewService(repos.Review, repos.Product)
	recommendationService := service.NewRecommendationService(repos.Recommendation, repos.Product)
	statsService := service.NewStatsService(repos.Stats)

	authHandler := handlers.NewAuthHandler(userService)
	addressHandler := handlers.NewAddressHandler(addressService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService, recommendationService)
	cartHandler := handlers.NewCartHandler(cartService, couponService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	webhookHandler := handlers.NewWebhookHandler(orderService, stripeClient)
	adminHandler := handlers.NewAdminHandler(couponService, userService, statsService)

	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("Error creating health handler", slog.Any("error", err))
		os.Exit(1)
	}

	routerMux := http.NewServeMux()

	// Auth
	routerMux.HandleFunc("POST /api/v1/auth/register", authHandler.Register())
	routerMux.HandleFunc("POST /api/v1/auth/login", authHandler.Login())
	routerMux.HandleFunc("POST /api/v1/auth/password-reset", authHandler.RequestPasswordReset())
	routerMux.HandleFunc("POST /api/v1/auth/password-reset/confirm", authHandler.ConfirmPasswordReset())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(authHandler.Profile()))

	// Addresses
	routerMux.HandleFunc("POST /api/v1/addresses", authMiddleware.Authenticate(addressHandler.Create()))
	routerMux.HandleFunc("GET /api/v1/addresses", authMiddleware.Authenticate(addressHandler.List()))
	routerMux.HandleFunc("PUT /api/v1/addresses/{id}", authMiddleware.Authenticate(addressHandler.Update()))
	routerMux.HandleFunc("DELETE /api/v1/addresses/{id}", authMiddleware.Authenticate(addressHandler.Delete()))

	// Catalog
	routerMux.HandleFunc("GET /api/v1/products", productHandler.List())
	routerMux.HandleFunc("GET /api/v1/products/featured", productHandler.Featured())
	routerMux.HandleFunc("GET /api/v1/products/{idOrSlug}", productHandler.Get())
	routerMux.HandleFunc("GET /api/v1/products/{id}/related", productHandler.Related())
	routerMux.HandleFunc("GET /api/v1/categories", categoryHandler.Tree())

	// Reviews
	routerMux.HandleFunc("POST /api/v1/products/{id}/reviews", authMiddleware.Authenticate(reviewHandler.Create()))

	// Cart
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Authenticate(cartHandler.Get()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items", authMiddleware.Authenticate(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{productID}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("POST /api/v1/cart/coupon", authMiddleware.Authenticate(cartHandler.PreviewCoupon()))

	// Orders
	routerMux.HandleFunc("POST /api/v1/orders/checkout", authMiddleware.Authenticate(orderHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListMine()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.Get()))

	// Recommendations
	routerMux.HandleFunc("GET /api/v1/recommendations", authMiddleware.Authenticate(recommendationHandler.ForMe()))

	// Payment webhook, signature-verified instead of JWT-authenticated
	routerMux.HandleFunc("POST /api/v1/webhooks/payment/stripe", webhookHandler.HandleStripe())

	// Admin console
	routerMux.HandleFunc("POST /api/v1/admin/products", authMiddleware.RequireAdmin(productHandler.Create()))
	routerMux.HandleFunc("PUT /api/v1/admin/products/{id}", authMiddleware.RequireAdmin(productHandler.Update()))
	routerMux.HandleFunc("DELETE /api/v1/admin/products/{id}", authMiddleware.RequireAdmin(productHandler.Delete()))
	routerMux.HandleFunc("POST /api/v1/admin/categories", authMiddleware.RequireAdmin(categoryHandler.Create()))
	routerMux.HandleFunc("PUT /api/v1/admin/categories/{id}", authMiddleware.RequireAdmin(categoryHandler.Update()))
	routerMux.HandleFunc("DELETE /api/v1/admin/categories/{id}", authMiddleware.RequireAdmin(categoryHandler.Delete()))
	routerMux.HandleFunc("POST /api/v1/admin/coupons", authMiddleware.RequireAdmin(adminHandler.CreateCoupon()))
	routerMux.HandleFunc("GET /api/v1/admin/coupons", authMiddleware.RequireAdmin(adminHandler.ListCoupons()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", authMiddleware.RequireAdmin(orderHandler.ListAll()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", authMiddleware.RequireAdmin(orderHandler.UpdateStatus()))
	routerMux.HandleFunc("GET /api/v1/admin/reviews", authMiddleware.RequireAdmin(reviewHandler.ListPending()))
	routerMux.HandleFunc("POST /api/v1/admin/reviews/{id}/approve", authMiddleware.RequireAdmin(reviewHandler.Approve()))
	routerMux.HandleFunc("DELETE /api/v1/admin/reviews/{id}", authMiddleware.RequireAdmin(reviewHandler.Delete()))
	routerMux.HandleFunc("GET /api/v1/admin/users", authMiddleware.RequireAdmin(adminHandler.ListUsers()))
	routerMux.HandleFunc("PATCH /api/v1/admin/users/{id}/active", authMiddleware.RequireAdmin(adminHandler.SetUserActive()))
	routerMux.HandleFunc("GET /api/v1/admin/dashboard", authMiddleware.RequireAdmin(adminHandler.Dashboard()))

	// Ops
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("Server is starting", slog.String("address", cfg.Addr), slog.String("env", cfg.Env))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("Failed to start server", slog.Any("error", err))
		}
	}()

	<-done

	slog.Warn("Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown encountered an issue", slog.Any("error", err))
	}

	// Drain queued emails before closing external connections.
	notificationService.Stop()

	if err := redisCache.Close(); err != nil {
		slog.Error("Error closing redis connection", slog.Any("error", err))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("Error shutting down tracing", slog.Any("error", err))
	}

	slog.Info("Server shut down gracefully")
}
