// internal/domain/models/club.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club review states. Clubs are created pending; only an admin moves
// them to approved or rejected.
const (
	ClubPending  = "pending"
	ClubApproved = "approved"
	ClubRejected = "rejected"
)

// IsValidClubStatus reports whether s is a known club status.
func IsValidClubStatus(s string) bool {
	switch s {
	case ClubPending, ClubApproved, ClubRejected:
		return true
	}
	return false
}

// Club is owned by the manager identified by ManagerEmail.
type Club struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ManagerEmail  string             `bson:"manager_email" json:"managerEmail"`
	ClubName      string             `bson:"club_name" json:"clubName"`
	ClubNameCI    string             `bson:"club_name_ci" json:"-"` // folded for search/sort
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	Location      string             `bson:"location" json:"location"`
	BannerImage   string             `bson:"banner_image,omitempty" json:"bannerImage,omitempty"`
	MembershipFee float64            `bson:"membership_fee" json:"membershipFee"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}
