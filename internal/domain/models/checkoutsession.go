// internal/domain/models/checkoutsession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkout session lifecycle as tracked locally.
const (
	CheckoutOpen       = "open"
	CheckoutReconciled = "reconciled"
	CheckoutExpired    = "expired"
	CheckoutFailed     = "failed"
)

// CheckoutSession is the local record of a gateway checkout session.
// The reconciliation sweeper uses open records to catch payments whose
// success redirect never reached us.
type CheckoutSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"sessionId"`
	UserEmail   string             `bson:"user_email" json:"userEmail"`
	ClubID      string             `bson:"club_id" json:"clubId"`
	ClubName    string             `bson:"club_name" json:"clubName"`
	AmountCents int64              `bson:"amount_cents" json:"amountCents"`
	Currency    string             `bson:"currency" json:"currency"`
	Status      string             `bson:"status" json:"status"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	LastSweptAt *time.Time         `bson:"last_swept_at,omitempty" json:"lastSweptAt,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}
