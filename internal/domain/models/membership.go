// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership states. At most one membership per (user_email, club_id)
// may be MembershipActive at any time.
const (
	MembershipActive    = "active"
	MembershipInactive  = "inactive"
	MembershipCancelled = "cancelled"
)

// IsValidMembershipStatus reports whether s is a known membership status.
func IsValidMembershipStatus(s string) bool {
	switch s {
	case MembershipActive, MembershipInactive, MembershipCancelled:
		return true
	}
	return false
}

// Membership joins a user (by email) to a club.
//
// ClubID is stored as the canonical hex string of the club's ObjectID,
// not as an ObjectID. Compare it through idnorm, never raw.
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserEmail string             `bson:"user_email" json:"userEmail"`
	ClubID    string             `bson:"club_id" json:"clubId"`
	Status    string             `bson:"status" json:"status"`
	PaymentID string             `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	JoinedAt  time.Time          `bson:"joined_at" json:"joinedAt"`
	UpdatedAt time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
