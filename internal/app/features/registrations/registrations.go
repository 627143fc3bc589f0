// internal/app/features/registrations/registrations.go
package registrations

import (
	"context"
	"net/http"

	registrationstore "github.com/dalemusser/clubsphere/internal/app/store/registrations"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type registerRequest struct {
	EventID   string `json:"eventId"`
	UserEmail string `json:"userEmail"`
}

// HandleRegister handles POST /eventRegistrations.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if req.UserEmail == "" {
		req.UserEmail = authz.Email(r)
	}
	if !authz.CanActFor(r, req.UserEmail) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reg, err := h.Registrations.Register(ctx, req.UserEmail, req.EventID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("event registration",
		zap.String("email", reg.UserEmail),
		zap.String("event_id", reg.EventID))
	respond.JSON(w, http.StatusCreated, reg)
}

// ServeList handles GET /eventRegistrations?userEmail=&eventId=.
//
// Admins see everything and the manager of an event's club sees its
// registrations. Everyone else only sees their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := registrationstore.Filter{
		UserEmail: query.Get(r, "userEmail"),
		EventID:   query.Get(r, "eventId"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !authz.IsAdmin(r) {
		manages, err := h.managesEvent(ctx, r, f.EventID)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		if !manages {
			if f.UserEmail == "" {
				f.UserEmail = authz.Email(r)
			}
			if !authz.CanActFor(r, f.UserEmail) {
				respond.Error(w, h.Log, apperr.ErrForbidden)
				return
			}
		}
	}

	list, err := h.Registrations.List(ctx, f)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *Handler) managesEvent(ctx context.Context, r *http.Request, eventID string) (bool, error) {
	if eventID == "" || !authz.IsClubManager(r) {
		return false, nil
	}
	e, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}
	club, err := h.Clubs.GetByID(ctx, e.ClubID)
	if err != nil {
		return false, err
	}
	return authz.CanManageClub(r, club), nil
}
