// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
)

// Role returns the current user's stored role and whether a user is present.
func Role(r *http.Request) (string, bool) {
	u, ok := auth.CurrentUser(r)
	return u.Role, ok
}

// Email returns the current user's normalized email, or "" when anonymous.
func Email(r *http.Request) string {
	u, _ := auth.CurrentUser(r)
	return u.Email
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, ok := Role(r)
	return ok && role == models.RoleAdmin
}

// IsClubManager reports whether the current request's user is a club manager.
func IsClubManager(r *http.Request) bool {
	role, ok := Role(r)
	return ok && role == models.RoleClubManager
}

// CanActFor reports whether the requester may read or write data owned by
// email: the owner themself, or an admin.
func CanActFor(r *http.Request, email string) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	return u.Role == models.RoleAdmin || u.Email == normalize.Email(email)
}

// CanManageClub reports whether the requester may manage club: its
// manager, or an admin.
func CanManageClub(r *http.Request, club models.Club) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	if u.Role == models.RoleAdmin {
		return true
	}
	return u.Role == models.RoleClubManager && u.Email == normalize.Email(club.ManagerEmail)
}
