// internal/app/features/memberships/handler.go
package memberships

import (
	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Members  *membershipstore.Store
	Clubs    *clubstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs the memberships handler. members must be the
// ledger shared with the payment reconciler so both serialize on the same
// (email, club) locks.
func NewHandler(db *mongo.Database, members *membershipstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Members:  members,
		Clubs:    clubstore.New(db),
		AuditLog: auditLog,
		Log:      logger,
	}
}
