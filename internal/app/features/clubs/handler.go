// internal/app/features/clubs/handler.go
package clubs

import (
	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Clubs    *clubstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a clubs feature handler bound to db.
func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Clubs:    clubstore.New(db),
		AuditLog: auditLog,
		Log:      logger,
	}
}
