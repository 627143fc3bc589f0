// internal/app/features/memberships/routes.go
package memberships

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the membership routes (typically at "/memberships").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleJoin)
		pr.Get("/", h.ServeList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleClubManager, models.RoleAdmin))
		pr.Patch("/{id}/status", h.HandleSetStatus)
	})

	return r
}
