// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Register attaches the summary endpoints to r. They live at top-level
// paths, so they are registered on the root router rather than mounted.
//
// {email} endpoints are further limited to the owner or an admin.
func Register(r chi.Router, h *Handler) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/admin-summary", h.ServeAdmin)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleClubManager, models.RoleAdmin))
		pr.Get("/club-manager-summary/{email}", h.ServeManager)
		pr.Get("/total-event-registration/{email}", h.ServeTotalRegistrations)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/member-summary/{email}", h.ServeMember)
		pr.Get("/my-clubs/{email}", h.ServeMyClubs)
		pr.Get("/my-events/{email}", h.ServeMyEvents)
	})
}
