// internal/app/features/payments/routes.go
package payments

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/app/system/ratelimit"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Register attaches the checkout, success callback and payment listing
// endpoints to r at their top-level paths.
func Register(r chi.Router, h *Handler) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/payment-checkout-session", h.HandleCheckout)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		if h.Limiter != nil {
			pr.Use(ratelimit.Middleware(h.Limiter, ratelimit.ByIP))
		}
		pr.Post("/payment-success", h.HandleSuccess)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/payments", h.ServeList)
	})
}
