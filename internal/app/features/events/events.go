// internal/app/features/events/events.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/store/audit"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeList handles GET /events?clubId=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Events.List(ctx, query.Get(r, "clubId"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeView handles GET /events/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Events.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, e)
}

// HandleCreate handles POST /events. Only the club's manager may add
// events, and only to an approved club.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, req.ClubID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !authz.CanManageClub(r, club) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	actor := authz.Email(r)
	e, err := h.Events.Create(ctx, club.ID, in, actor)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.AuditLog.EventChanged(ctx, r, actor, audit.EventEventCreated, e)
	respond.JSON(w, http.StatusCreated, e)
}

// HandleUpdate handles PATCH /events/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, ok := h.loadManaged(ctx, w, r)
	if !ok {
		return
	}

	e, err := h.Events.Update(ctx, existing.ID, in)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.AuditLog.EventChanged(ctx, r, authz.Email(r), audit.EventEventUpdated, e)
	respond.JSON(w, http.StatusOK, e)
}

// HandleDelete handles DELETE /events/{id}; the event's registrations go
// with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, ok := h.loadManaged(ctx, w, r)
	if !ok {
		return
	}

	removed, err := h.Events.Delete(ctx, existing.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("event deleted",
		zap.String("event_id", existing.ID.Hex()),
		zap.Int64("registrations_removed", removed))
	h.AuditLog.EventChanged(ctx, r, authz.Email(r), audit.EventEventDeleted, existing)
	respond.JSON(w, http.StatusOK, deleteResponse{Deleted: true, RegistrationsRemoved: removed})
}

// loadManaged loads the event named in the URL and checks the requester
// manages its club. On failure it has already written the response.
func (h *Handler) loadManaged(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	e, err := h.Events.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return models.Event{}, false
	}
	club, err := h.Clubs.GetByID(ctx, e.ClubID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return models.Event{}, false
	}
	if !authz.CanManageClub(r, club) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return models.Event{}, false
	}
	return e, true
}
