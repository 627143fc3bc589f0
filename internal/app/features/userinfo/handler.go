// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/app/system/respond"
)

// Handler tells a client who its bearer token belongs to.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
}

// ServeUserInfo returns the caller's identity and stored role. Anonymous
// callers get isAuthenticated=false rather than 401, so a client can check
// a possibly stale token without treating it as an error.
//
// Role is empty until the user has been created via POST /users.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentUser(r)
	if !ok {
		respond.JSON(w, http.StatusOK, userInfo{})
		return
	}
	respond.JSON(w, http.StatusOK, userInfo{
		IsAuthenticated: true,
		Email:           id.Email,
		Name:            id.Name,
		Role:            id.Role,
	})
}
