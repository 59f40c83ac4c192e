package http

import (
	"net/http"
	"time"

	"github.com/Archer110/nexus/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	MaxBodySize    int64
	SessionTTL     time.Duration
	SecureCookies  bool
	AdminUser      string
	AdminPassword  string
	AdminPerPage   int
}

type Services struct {
	Catalog  CatalogAPI
	Carts    CartAPI
	Checkout CheckoutAPI
	Orders   OrderAPI
}

func NewRouter(cfg RouterConfig, svc Services, log *logrus.Logger) http.Handler {
	catalogHandler := NewCatalogHandler(svc.Catalog, log)
	cartHandler := NewCartHandler(svc.Carts, cfg.MaxBodySize, log)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, cfg.MaxBodySize, log)
	ordersHandler := NewOrdersHandler(svc.Orders, log)
	adminHandler := NewAdminHandler(svc.Catalog, svc.Orders, cfg.AdminPerPage, cfg.MaxBodySize, log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.NewRequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, log, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)
		r.Get("/facets", catalogHandler.Facets)

		r.Group(func(r chi.Router) {
			r.Use(Session(cfg.SessionTTL, cfg.SecureCookies))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				r.Post("/items/{product_id}/{action}", cartHandler.ItemAction)
			})

			r.Post("/checkout", checkoutHandler.Checkout)
			r.Get("/orders/{id}", ordersHandler.GetOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			if cfg.AdminUser != "" {
				r.Use(middleware.BasicAuth("nexus-admin", map[string]string{cfg.AdminUser: cfg.AdminPassword}))
			}

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/products", adminHandler.ListProducts)
			r.Post("/products", adminHandler.CreateProduct)
			r.Patch("/products/{id}", adminHandler.UpdateProduct)
			r.Delete("/products/{id}", adminHandler.DeleteProduct)
			r.Get("/orders", adminHandler.ListOrders)
			r.Get("/orders/{id}", adminHandler.GetOrder)
			r.Patch("/orders/{id}/status", adminHandler.UpdateOrderStatus)
		})
	})

	return otelhttp.NewHandler(r, cfg.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
