package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/pkg/health"
	"github.com/damkaswim/storefront/pkg/middleware"
)

// RouterConfig holds the dependencies and settings for the HTTP router.
type RouterConfig struct {
	Catalog   *CatalogHandler
	Product   *ProductHandler
	Cart      *CartHandler
	Order     *OrderHandler
	Message   *MessageHandler
	Customer  *CustomerHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	AuthSvc   *service.AuthService
	Health    *health.Handler
	Logger    *slog.Logger
	CORS      CORSConfig
	RateRPS   int
	RateBurst int
}

// NewRouter assembles the chi router with all middleware and routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(CORS(cfg.CORS))
	r.Use(chimw.RealIP)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	// RequestLogging puts the correlation id in context and Tracing the span
	// context; RequestLogger builds the request-scoped logger from both, so it
	// must come last.
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	validate := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.AuthSvc.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public product reads.
		r.Get("/products/featured", cfg.Product.FeaturedProducts)
		r.Get("/products/{id}", cfg.Product.GetProduct)
		r.Get("/products/{id}/related", cfg.Product.RelatedProducts)

		// Auth.
		r.Post("/auth/register", cfg.Auth.Register)
		r.Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/refresh", cfg.Auth.Refresh)
		r.Post("/admin/auth/login", cfg.Auth.AdminLogin)

		// Contact form and newsletter, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateRPS, cfg.RateBurst, cfg.Logger))
			r.Post("/contact", cfg.Message.SubmitContact)
			r.Post("/newsletter", cfg.Message.Subscribe)
		})

		// Session-scoped storefront state.
		r.Group(func(r chi.Router) {
			r.Use(SessionFromHeader)

			r.Get("/catalog/products", cfg.Catalog.Browse)
			r.Post("/catalog/products/more", cfg.Catalog.LoadMore)
			r.Put("/catalog/filters", cfg.Catalog.UpdateFilters)
			r.Delete("/catalog/filters", cfg.Catalog.ResetFilters)
			r.Post("/catalog/search", cfg.Catalog.Search)

			r.Get("/cart", cfg.Cart.GetCart)
			r.Delete("/cart", cfg.Cart.ClearCart)
			r.Post("/cart/lines", cfg.Cart.AddLine)
			r.Put("/cart/lines/{index}", cfg.Cart.UpdateLine)
			r.Delete("/cart/lines/{index}", cfg.Cart.RemoveLine)

			r.Get("/wishlist", cfg.Cart.GetWishlist)
			r.Post("/wishlist/{productId}/toggle", cfg.Cart.ToggleWishlist)

			r.Post("/checkout", cfg.Order.Checkout)
		})

		// Admin surface, token protected.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Use(middleware.RequireRole("admin"))

			r.Get("/dashboard", cfg.Dashboard.Overview)

			r.Get("/products", cfg.Product.ListProducts)
			r.Post("/products", cfg.Product.CreateProduct)
			r.Put("/products/{id}", cfg.Product.UpdateProduct)
			r.Delete("/products/{id}", cfg.Product.DeleteProduct)

			r.Get("/orders", cfg.Order.ListOrders)
			r.Get("/orders/{id}", cfg.Order.GetOrder)
			r.Patch("/orders/{id}/status", cfg.Order.UpdateOrderStatus)

			r.Get("/messages", cfg.Message.ListMessages)
			r.Get("/messages/{id}", cfg.Message.GetMessage)
			r.Patch("/messages/{id}/status", cfg.Message.UpdateMessageStatus)
			r.Post("/messages/{id}/reply", cfg.Message.Reply)
			r.Delete("/messages/{id}", cfg.Message.DeleteMessage)

			r.Get("/subscribers", cfg.Message.ListSubscribers)

			r.Get("/customers", cfg.Customer.ListCustomers)
			r.Get("/customers/{id}", cfg.Customer.GetCustomer)
			r.Put("/customers/{id}", cfg.Customer.UpdateCustomer)
			r.Delete("/customers/{id}", cfg.Customer.DeleteCustomer)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"route not found"}}`))
	})

	return r
}
