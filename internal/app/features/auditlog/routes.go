// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log (typically at "/audit"). Admins only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
