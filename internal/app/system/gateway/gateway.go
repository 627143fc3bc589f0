// Package gateway talks to the payment provider's hosted checkout.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata keys attached to every checkout session.
const (
	MetaClubID    = "clubId"
	MetaClubName  = "clubName"
	MetaUserEmail = "userEmail"
)

// PaymentPaid is the provider's payment_status for a completed payment.
const PaymentPaid = "paid"

// Session is the provider's view of a checkout session.
type Session struct {
	ID              string
	URL             string
	PaymentStatus   string
	AmountSubtotal  int64 // minor units
	Currency        string
	CustomerEmail   string
	PaymentIntentID string
	Metadata        map[string]string
}

// Email returns the paying customer's email, falling back to the email
// we attached when the session was created.
func (s Session) Email() string {
	if s.CustomerEmail != "" {
		return s.CustomerEmail
	}
	return s.Metadata[MetaUserEmail]
}

// CheckoutRequest describes a club membership purchase.
type CheckoutRequest struct {
	UserEmail   string
	ClubID      string
	ClubName    string
	AmountCents int64
	Currency    string
}

// Gateway opens and inspects hosted checkout sessions.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Session, error)
	Retrieve(ctx context.Context, sessionID string) (Session, error)
}

var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("clubsphere/checkout"))

// idempotencyBucket is how long repeated clicks on "pay" reuse one session.
const idempotencyBucket = 10 * time.Minute

// IdempotencyKey derives a stable key for req within the current bucket,
// so double submits open one session rather than two.
func IdempotencyKey(req CheckoutRequest, now time.Time) string {
	name := fmt.Sprintf("%s|%s|%d|%s|%d",
		strings.ToLower(req.UserEmail), req.ClubID, req.AmountCents, req.Currency,
		now.Unix()/int64(idempotencyBucket/time.Second))
	return uuid.NewSHA1(keySpace, []byte(name)).String()
}
