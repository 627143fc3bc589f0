// internal/app/features/memberships/memberships.go
package memberships

import (
	"context"
	"net/http"

	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type joinRequest struct {
	ClubID    string `json:"clubId"`
	UserEmail string `json:"userEmail"`
}

// HandleJoin handles POST /memberships: a free join of an approved club.
// Clubs with a fee are joined through checkout instead.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
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

	club, err := h.Clubs.GetByID(ctx, req.ClubID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if club.Status != models.ClubApproved {
		respond.Error(w, h.Log, apperr.ErrClubNotApproved)
		return
	}
	if club.MembershipFee > 0 {
		respond.Error(w, h.Log, apperr.ErrPaymentRequired)
		return
	}

	m, err := h.Members.Join(ctx, req.UserEmail, club.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("membership joined",
		zap.String("email", m.UserEmail),
		zap.String("club_id", m.ClubID))
	respond.JSON(w, http.StatusCreated, m)
}

// ServeList handles GET /memberships?userEmail=&clubId=.
//
// Admins see everything. A club's manager may list that club's members.
// Everyone else only sees their own memberships.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := membershipstore.Filter{
		UserEmail: query.Get(r, "userEmail"),
		ClubID:    query.Get(r, "clubId"),
		Status:    query.Get(r, "status"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !authz.IsAdmin(r) {
		managesClub := false
		if f.ClubID != "" && authz.IsClubManager(r) {
			club, err := h.Clubs.GetByID(ctx, f.ClubID)
			if err != nil {
				respond.Error(w, h.Log, err)
				return
			}
			managesClub = authz.CanManageClub(r, club)
		}
		if !managesClub {
			if f.UserEmail == "" {
				f.UserEmail = authz.Email(r)
			}
			if !authz.CanActFor(r, f.UserEmail) {
				respond.Error(w, h.Log, apperr.ErrForbidden)
				return
			}
		}
	}

	list, err := h.Members.List(ctx, f)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus handles PATCH /memberships/{id}/status. A club manager
// may only change memberships of clubs they manage.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Members.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	club, err := h.Clubs.GetByID(ctx, existing.ClubID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !authz.CanManageClub(r, club) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	m, err := h.Members.SetStatus(ctx, existing.ID, req.Status)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.AuditLog.MembershipStatusChanged(ctx, r, authz.Email(r), m)
	respond.JSON(w, http.StatusOK, m)
}
