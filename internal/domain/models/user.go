// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. New users always start as RoleMember;
// only an admin can change a role.
const (
	RoleMember      = "member"
	RoleClubManager = "clubManager"
	RoleAdmin       = "admin"
)

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleMember, RoleClubManager, RoleAdmin:
		return true
	}
	return false
}

// User is created on first sign-in. Email is the natural key and is
// stored normalized (trimmed, lowercased).
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	PhotoURL  string             `bson:"photo_url,omitempty" json:"photoURL,omitempty"`
	Role      string             `bson:"role" json:"role"` // member | clubManager | admin
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
