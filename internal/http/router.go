package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires every route. gatherer serves /metrics; nil selects the
// default prometheus registry.
func NewRouter(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware)
		r.Post("/login", handlers.LoginHandler)
		r.Post("/register", handlers.RegisterHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", handlers.CreateProductHandler)
			r.Get("/", handlers.GetProductsHandler)
			r.Get("/categories", handlers.GetCategoriesHandler)
			r.Get("/analysis", handlers.GetProductAnalysisHandler)
			r.Get("/{id}", handlers.GetProductByIDHandler)
			r.Put("/{id}", handlers.UpdateProductHandler)
			r.Delete("/{id}", handlers.DeleteProductHandler)
			r.Post("/{id}/adjust", handlers.AdjustQuantityHandler)
			r.Get("/{id}/movements", handlers.GetMovementsHandler)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", handlers.ListNotificationsHandler)
			r.Get("/notify", handlers.RunExpirySweepHandler)
			r.Get("/reorder-check", handlers.RunReorderSweepHandler)
			r.Post("/reorder-notify", handlers.ReorderNotifyHandler)
			r.Delete("/by-product/{productId}", handlers.DeleteProductNotificationsHandler)
			r.Delete("/{id}", handlers.DeleteNotificationHandler)
			r.Post("/{id}/read", handlers.MarkNotificationReadHandler)
		})

		r.Route("/bills", func(r chi.Router) {
			r.Post("/", handlers.CreateBillHandler)
			r.Get("/", handlers.ListBillsHandler)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", handlers.GetProfileHandler)
			r.Put("/{id}", handlers.UpdateProfileHandler)
		})

		r.Get("/metrics/dashboard", handlers.GetDashboardMetricsHandler)
	})

	return r
}
