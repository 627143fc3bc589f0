// internal/app/features/payments/checkout.go
package payments

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.uber.org/zap"
)

type checkoutRequest struct {
	MembershipFee float64 `json:"membershipFee"`
	ClubID        string  `json:"clubId"`
	ClubName      string  `json:"clubName"`
	UserEmail     string  `json:"userEmail"`
}

type checkoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// cents converts a decimal amount to minor units.
func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// HandleCheckout handles POST /payment-checkout-session. The price comes
// from the stored club; a membershipFee in the body must agree with it.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
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
	amount := cents(club.MembershipFee)
	if amount <= 0 {
		respond.Error(w, h.Log, apperr.ErrNoFeeRequired)
		return
	}
	if req.MembershipFee != 0 && cents(req.MembershipFee) != amount {
		respond.Error(w, h.Log, fmt.Errorf("membershipFee %.2f does not match the club fee: %w",
			req.MembershipFee, apperr.ErrInvalidField))
		return
	}

	member, err := h.Members.HasActive(ctx, req.UserEmail, club.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if member {
		respond.Error(w, h.Log, apperr.ErrAlreadyMember)
		return
	}

	gctx, gcancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer gcancel()
	s, err := h.Gateway.CreateCheckout(gctx, gateway.CheckoutRequest{
		UserEmail:   req.UserEmail,
		ClubID:      club.ID.Hex(),
		ClubName:    club.ClubName,
		AmountCents: amount,
		Currency:    h.Currency,
	})
	if err != nil {
		if apperr.As(err) == nil {
			err = fmt.Errorf("%w: %v", apperr.ErrGatewayUnavailable, err)
		}
		respond.Error(w, h.Log, err)
		return
	}

	cs, err := h.Checkouts.Create(ctx, models.CheckoutSession{
		SessionID:   s.ID,
		UserEmail:   req.UserEmail,
		ClubID:      club.ID.Hex(),
		ClubName:    club.ClubName,
		AmountCents: amount,
		Currency:    h.Currency,
	})
	if err != nil {
		// The session is usable without the record; the sweeper just
		// won't know about it.
		h.Log.Warn("record checkout session", zap.String("session_id", s.ID), zap.Error(err))
	} else {
		h.AuditLog.CheckoutOpened(ctx, r, cs)
	}

	respond.JSON(w, http.StatusOK, checkoutResponse{URL: s.URL, SessionID: s.ID})
}

// HandleSuccess handles POST /payment-success?session_id=. It may be
// called any number of times for the same session.
func (h *Handler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Reconciler.Reconcile(ctx, sessionID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
