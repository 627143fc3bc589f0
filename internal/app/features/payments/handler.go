// internal/app/features/payments/handler.go
package payments

import (
	checkoutstore "github.com/dalemusser/clubsphere/internal/app/store/checkoutsessions"
	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	paymentstore "github.com/dalemusser/clubsphere/internal/app/store/payments"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/app/system/ratelimit"
	"github.com/dalemusser/clubsphere/internal/app/system/reconcile"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Gateway    gateway.Gateway
	Reconciler *reconcile.Reconciler
	Clubs      *clubstore.Store
	Members    *membershipstore.Store
	Checkouts  *checkoutstore.Store
	Payments   *paymentstore.Store
	AuditLog   *auditlog.Logger
	// Limiter throttles the success callback per client; nil disables it.
	Limiter  *ratelimit.Limiter
	Currency string
	Log      *zap.Logger
}

// Deps are the collaborators shared with the rest of the app.
type Deps struct {
	Gateway    gateway.Gateway
	Reconciler *reconcile.Reconciler
	Members    *membershipstore.Store
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.Limiter
	Currency   string
}

func NewHandler(db *mongo.Database, d Deps, logger *zap.Logger) *Handler {
	currency := d.Currency
	if currency == "" {
		currency = "usd"
	}
	return &Handler{
		Gateway:    d.Gateway,
		Reconciler: d.Reconciler,
		Clubs:      clubstore.New(db),
		Members:    d.Members,
		Checkouts:  checkoutstore.New(db),
		Payments:   paymentstore.New(db),
		AuditLog:   d.AuditLog,
		Limiter:    d.Limiter,
		Currency:   currency,
		Log:        logger,
	}
}
