// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user routes (typically at "/users").
//
// POST / is public so a freshly signed-in client can register itself.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/{email}/role", h.ServeRole)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
		pr.Patch("/{id}/role", h.HandleSetRole)
	})

	return r
}
