// internal/app/features/registrations/routes.go
package registrations

import (
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the registration routes (typically at "/eventRegistrations").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleRegister)
	r.Get("/", h.ServeList)

	return r
}
