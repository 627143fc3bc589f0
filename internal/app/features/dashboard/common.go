// internal/app/features/dashboard/common.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
)

// ownerParam returns the {email} URL parameter when the requester may
// read that user's data; otherwise it writes 403 and returns false.
func (h *Handler) ownerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := normalize.Email(chi.URLParam(r, "email"))
	if email == "" {
		respond.Error(w, h.Log, apperr.ErrMissingField)
		return "", false
	}
	if !authz.CanActFor(r, email) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return "", false
	}
	return email, true
}
