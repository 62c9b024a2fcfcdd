package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopit-dev/shopit-backend/api/routes"
	"github.com/shopit-dev/shopit-backend/internal/address"
	"github.com/shopit-dev/shopit-backend/internal/analytics"
	"github.com/shopit-dev/shopit-backend/internal/auth"
	"github.com/shopit-dev/shopit-backend/internal/cart"
	"github.com/shopit-dev/shopit-backend/internal/categories"
	"github.com/shopit-dev/shopit-backend/internal/checkout"
	"github.com/shopit-dev/shopit-backend/internal/inventory"
	"github.com/shopit-dev/shopit-backend/internal/orders"
	"github.com/shopit-dev/shopit-backend/internal/payments"
	"github.com/shopit-dev/shopit-backend/internal/products"
	"github.com/shopit-dev/shopit-backend/internal/reviews"
	"github.com/shopit-dev/shopit-backend/internal/users"
	"github.com/shopit-dev/shopit-backend/internal/wishlist"
	"github.com/shopit-dev/shopit-backend/pkg/auth/session"
	"github.com/shopit-dev/shopit-backend/pkg/config"
	"github.com/shopit-dev/shopit-backend/pkg/db"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/metrics"
	"github.com/shopit-dev/shopit-backend/pkg/migrate"
	"github.com/shopit-dev/shopit-backend/pkg/redis"
	pkgstripe "github.com/shopit-dev/shopit-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}
	gateway, err := payments.NewStripeGateway(payments.NewStripeChargeClient(stripeClient), cfg.Stripe)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	currency, err := enums.ParseCurrency(cfg.Stripe.Currency)
	if err != nil {
		logg.Error(context.Background(), "invalid checkout currency", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	productRepo := products.NewRepository(gormDB)
	categoryRepo := categories.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	addressRepo := address.NewRepository(gormDB)
	reviewRepo := reviews.NewRepository(gormDB)
	wishlistRepo := wishlist.NewRepository(gormDB)
	ledger := inventory.NewLedger(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{
		Repo:       productRepo,
		Categories: categoryRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		TxRunner: dbClient,
		Repo:     cartRepo,
		Ledger:   ledger,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		TxRunner:    dbClient,
		CartRepo:    cartRepo,
		OrdersRepo:  orderRepo,
		AddressRepo: addressRepo,
		Products:    productRepo,
		Gateway:     gateway,
		Currency:    currency,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	addressService, err := address.NewService(address.ServiceParams{
		TxRunner: dbClient,
		Repo:     addressRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviewRepo,
		Products: productRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlistRepo,
		Products: productRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			Redis:            redisClient,
			HTTPMetrics:      httpMetrics,
			SessionManager:   sessionManager,
			AuthService:      authService,
			ProductService:   productService,
			CategoryService:  categoryService,
			CartService:      cartService,
			CheckoutService:  checkoutService,
			OrderService:     orderService,
			AddressService:   addressService,
			ReviewService:    reviewService,
			WishlistService:  wishlistService,
			AnalyticsService: analyticsService,
			UserRepo:         userRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
