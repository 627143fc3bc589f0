// internal/app/features/clubs/routes.go
package clubs

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the club routes (typically at "/clubs").
//
// Browsing is public. Managers create and edit their own clubs; only an
// admin reviews them.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleClubManager, models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Get("/manager/{email}", h.ServeManagerList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Patch("/{id}/status", h.HandleSetStatus)
	})

	return r
}
