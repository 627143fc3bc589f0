// internal/app/features/payments/list.go
package payments

import (
	"context"
	"net/http"

	paymentstore "github.com/dalemusser/clubsphere/internal/app/store/payments"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /payments?clubId=&email=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Payments.List(ctx, paymentstore.Filter{
		ClubID: query.Get(r, "clubId"),
		Email:  query.Get(r, "email"),
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}
