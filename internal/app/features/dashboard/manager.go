// internal/app/features/dashboard/manager.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/store/queries/summaries"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
)

// ServeManager handles GET /club-manager-summary/{email}.
func (h *Handler) ServeManager(w http.ResponseWriter, r *http.Request) {
	email, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	s, err := summaries.Manager(ctx, h.DB, email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, s)
}

// ServeTotalRegistrations handles GET /total-event-registration/{email}:
// one row per event of every club the manager owns, with clubs that have
// no events still listed.
func (h *Handler) ServeTotalRegistrations(w http.ResponseWriter, r *http.Request) {
	email, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := summaries.TotalEventRegistrations(ctx, h.DB, email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, rows)
}
