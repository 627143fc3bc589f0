// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/store/queries/summaries"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
)

// ServeAdmin handles GET /admin-summary.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	s, err := summaries.Admin(ctx, h.DB)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, s)
}
