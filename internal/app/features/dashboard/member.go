// internal/app/features/dashboard/member.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/store/queries/summaries"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
)

func (h *Handler) ServeMember(w http.ResponseWriter, r *http.Request) {
	email, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := summaries.Member(ctx, h.DB, email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, s)
}

func (h *Handler) ServeMyClubs(w http.ResponseWriter, r *http.Request) {
	email, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := summaries.MyClubs(ctx, h.DB, email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, rows)
}

func (h *Handler) ServeMyEvents(w http.ResponseWriter, r *http.Request) {
	email, ok := h.ownerParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := summaries.MyEvents(ctx, h.DB, email)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, rows)
}
