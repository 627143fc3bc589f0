// internal/app/features/users/users.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/authz"
	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

// ServeCreate handles POST /users. An existing email is not an error; the
// caller gets {"message":"User already exist"} with 200.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	// A signed-in caller may only register itself.
	if email := authz.Email(r); email != "" && !authz.CanActFor(r, req.Email) {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{Email: req.Email, Name: req.Name, PhotoURL: req.PhotoURL})
	if errors.Is(err, apperr.ErrDuplicateEmail) {
		respond.Message(w, http.StatusOK, apperr.ErrDuplicateEmail.Error())
		return
	}
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user created", zap.String("email", u.Email))
	respond.JSON(w, http.StatusCreated, u)
}

// ServeList handles GET /users (admin).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

type roleResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeRole handles GET /users/{email}/role.
func (h *Handler) ServeRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, chi.URLParam(r, "email"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, roleResponse{Email: u.Email, Role: u.Role})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole handles PATCH /users/{id}/role (admin).
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := idnorm.Normalize(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	var req setRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.SetRole(ctx, id, req.Role)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.AuditLog.UserRoleChanged(ctx, r, authz.Email(r), *u)
	respond.JSON(w, http.StatusOK, u)
}
