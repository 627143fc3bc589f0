// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the event routes (typically at "/events"). Reads are
// public; writes belong to the club's manager.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleClubManager, models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
