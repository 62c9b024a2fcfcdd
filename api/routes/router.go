package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopit-dev/shopit-backend/api/controllers"
	"github.com/shopit-dev/shopit-backend/api/middleware"
	"github.com/shopit-dev/shopit-backend/internal/address"
	"github.com/shopit-dev/shopit-backend/internal/analytics"
	"github.com/shopit-dev/shopit-backend/internal/auth"
	"github.com/shopit-dev/shopit-backend/internal/cart"
	"github.com/shopit-dev/shopit-backend/internal/categories"
	checkoutsvc "github.com/shopit-dev/shopit-backend/internal/checkout"
	"github.com/shopit-dev/shopit-backend/internal/orders"
	"github.com/shopit-dev/shopit-backend/internal/products"
	"github.com/shopit-dev/shopit-backend/internal/reviews"
	"github.com/shopit-dev/shopit-backend/internal/users"
	"github.com/shopit-dev/shopit-backend/internal/wishlist"
	"github.com/shopit-dev/shopit-backend/pkg/auth/session"
	"github.com/shopit-dev/shopit-backend/pkg/config"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/metrics"
	"github.com/shopit-dev/shopit-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redis.Client
	HTTPMetrics    *metrics.HTTPMetrics
	SessionManager sessionManager

	AuthService      auth.Service
	ProductService   products.Service
	CategoryService  categories.Service
	CartService      cart.Service
	CheckoutService  checkoutsvc.Service
	OrderService     orders.Service
	AddressService   address.Service
	ReviewService    reviews.Service
	WishlistService  wishlist.Service
	AnalyticsService analytics.Service
	UserRepo         *users.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog.
		r.Get("/products", controllers.ProductsList(deps.ProductService, logg))
		r.Get("/products/{product_id}", controllers.ProductGet(deps.ProductService, logg))
		r.Get("/products/{product_id}/reviews", controllers.ReviewsList(deps.ReviewService, logg))
		r.Get("/categories", controllers.CategoriesList(deps.CategoryService, logg))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

			r.Post("/auth/change-password", controllers.AuthChangePassword(deps.AuthService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleBuyer), logg))

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", controllers.CartGet(deps.CartService, logg))
					r.Post("/add", controllers.CartAddItem(deps.CartService, logg))
					r.Put("/update", controllers.CartUpdate(deps.CartService, logg))
					r.Delete("/items/{product_id}", controllers.CartRemoveItem(deps.CartService, logg))
				})

				r.Post("/checkout", controllers.Checkout(deps.CheckoutService, deps.HTTPMetrics, logg))

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.OrdersList(deps.OrderService, logg))
					r.Get("/{order_id}", controllers.OrderGet(deps.OrderService, logg))
				})

				r.Route("/addresses", func(r chi.Router) {
					r.Get("/", controllers.AddressesList(deps.AddressService, logg))
					r.Post("/", controllers.AddressCreate(deps.AddressService, logg))
					r.Put("/{address_id}", controllers.AddressUpdate(deps.AddressService, logg))
					r.Delete("/{address_id}", controllers.AddressDelete(deps.AddressService, logg))
					r.Post("/{address_id}/select", controllers.AddressSelect(deps.AddressService, logg))
				})

				r.Post("/products/{product_id}/reviews", controllers.ReviewCreate(deps.ReviewService, logg))
				r.Put("/reviews/{review_id}", controllers.ReviewUpdate(deps.ReviewService, logg))
				r.Delete("/reviews/{review_id}", controllers.ReviewDelete(deps.ReviewService, logg))

				r.Route("/wishlist", func(r chi.Router) {
					r.Get("/", controllers.WishlistList(deps.WishlistService, logg))
					r.Post("/", controllers.WishlistAdd(deps.WishlistService, logg))
					r.Delete("/{product_id}", controllers.WishlistRemove(deps.WishlistService, logg))
				})
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleSeller), logg))

				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.SellerProductsList(deps.ProductService, logg))
					r.Post("/", controllers.SellerProductCreate(deps.ProductService, logg))
					r.Put("/{product_id}", controllers.SellerProductUpdate(deps.ProductService, logg))
					r.Delete("/{product_id}", controllers.SellerProductDelete(deps.ProductService, logg))
				})
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.SellerOrdersList(deps.OrderService, logg))
					r.Get("/{order_id}", controllers.SellerOrderGet(deps.OrderService, logg))
				})
				r.Get("/analytics", controllers.SellerAnalytics(deps.AnalyticsService, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

				r.Get("/users", controllers.AdminUsersList(deps.UserRepo, logg))
				r.Route("/categories", func(r chi.Router) {
					r.Post("/", controllers.AdminCategoryCreate(deps.CategoryService, logg))
					r.Put("/{category_id}", controllers.AdminCategoryUpdate(deps.CategoryService, logg))
					r.Delete("/{category_id}", controllers.AdminCategoryDelete(deps.CategoryService, logg))
				})
			})
		})
	})

	return r
}
