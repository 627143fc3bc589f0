// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event belongs to a club. Unlike memberships, ClubID is a native ObjectID.
type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID       primitive.ObjectID `bson:"club_id" json:"clubId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	Date         time.Time          `bson:"date" json:"date"`
	IsPaid       bool               `bson:"is_paid" json:"isPaid"`
	EventFee     float64            `bson:"event_fee,omitempty" json:"eventFee,omitempty"`
	MaxAttendees int                `bson:"max_attendees,omitempty" json:"maxAttendees,omitempty"`
	CreatedBy    string             `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}
