package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/delivery-partner/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса курьера-партнёра.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(h.metrics.InstrumentHandler)

	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api/partner", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/signup", h.Signup)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Use(h.RequireSession)

			r.Post("/logout", h.Logout)
			r.Get("/session", h.GetSession)
			r.Post("/online", h.ToggleOnline)
			r.Put("/profile", h.UpdateProfile)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)
		r.Use(h.RequireSession)

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.AddOrder)
			r.Get("/pending", h.PendingOrders)
			r.Get("/active", h.ActiveOrder)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetOrder)
				r.Post("/accept", h.AcceptOrder)
				r.Post("/reject", h.RejectOrder)
				r.Post("/pickup", h.PickupOrder)
				r.Post("/deliver", h.DeliverOrder)
			})
		})

		r.Get("/api/earnings", h.GetEarnings)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
