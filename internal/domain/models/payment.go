// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentPaid is the status stored on every reconciled payment.
const PaymentPaid = "paid"

// Payment is append-only. TransactionID is the gateway's payment intent
// id and is unique; Amount is in major currency units (cents / 100).
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionID string             `bson:"transaction_id" json:"transactionId"`
	SessionID     string             `bson:"session_id,omitempty" json:"sessionId,omitempty"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	CustomerEmail string             `bson:"customer_email" json:"customerEmail"`
	ClubID        string             `bson:"club_id" json:"clubId"`
	ClubName      string             `bson:"club_name" json:"clubName"`
	PaymentStatus string             `bson:"payment_status" json:"paymentStatus"`
	PaidAt        time.Time          `bson:"paid_at" json:"paidAt"`
}
