// internal/app/features/clubs/list.go
package clubs

import (
	"context"
	"net/http"

	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /clubs with optional status, category and search
// filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Clubs.List(ctx, clubstore.Filter{
		Status:   query.Get(r, "status"),
		Category: query.Get(r, "category"),
		Search:   query.Search(r, "search"),
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeView handles GET /clubs/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clubs.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

// ServeManagerList handles GET /clubs/manager/{email}: every club the
// manager owns, whatever its review status.
func (h *Handler) ServeManagerList(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if !authz.CanActFor(r, email) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Clubs.List(ctx, clubstore.Filter{ManagerEmail: email})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}
