// internal/domain/models/eventregistration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationRegistered is the only registration status.
const RegistrationRegistered = "registered"

// EventRegistration records a user's registration for an event.
// One document per (user_email, event_id). EventID and ClubID are
// canonical hex strings.
type EventRegistration struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserEmail    string             `bson:"user_email" json:"userEmail"`
	EventID      string             `bson:"event_id" json:"eventId"`
	ClubID       string             `bson:"club_id" json:"clubId"`
	Status       string             `bson:"status" json:"status"`
	RegisteredAt time.Time          `bson:"registered_at" json:"registeredAt"`
}
