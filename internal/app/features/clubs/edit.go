// internal/app/features/clubs/edit.go
package clubs

import (
	"context"
	"net/http"

	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// clubRequest is the JSON body for create and update.
type clubRequest struct {
	ClubName      string  `json:"clubName"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Location      string  `json:"location"`
	BannerImage   string  `json:"bannerImage"`
	MembershipFee float64 `json:"membershipFee"`
}

func (req clubRequest) input() clubstore.Input {
	return clubstore.Input{
		ClubName:      req.ClubName,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		BannerImage:   req.BannerImage,
		MembershipFee: req.MembershipFee,
	}
}

// HandleCreate handles POST /clubs. New clubs start pending review and
// are owned by the requester.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req clubRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor := authz.Email(r)
	c, err := h.Clubs.Create(ctx, actor, req.input())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.AuditLog.ClubCreated(ctx, r, actor, c)
	respond.JSON(w, http.StatusCreated, c)
}

// HandleUpdate handles PATCH /clubs/{id} for the owning manager or an admin.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req clubRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Clubs.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !authz.CanManageClub(r, existing) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	c, err := h.Clubs.Update(ctx, existing.ID, req.input())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.AuditLog.ClubUpdated(ctx, r, authz.Email(r), c)
	respond.JSON(w, http.StatusOK, c)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus handles PATCH /clubs/{id}/status (admin review).
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Clubs.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	c, err := h.Clubs.SetStatus(ctx, existing.ID, req.Status)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("club status changed",
		zap.String("club_id", c.ID.Hex()),
		zap.String("from", existing.Status),
		zap.String("to", c.Status))
	h.AuditLog.ClubStatusChanged(ctx, r, authz.Email(r), c)
	respond.JSON(w, http.StatusOK, c)
}
