// internal/app/features/events/handler.go
package events

import (
	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	eventstore "github.com/dalemusser/clubsphere/internal/app/store/events"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events   *eventstore.Store
	Clubs    *clubstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   eventstore.New(db),
		Clubs:    clubstore.New(db),
		AuditLog: auditLog,
		Log:      logger,
	}
}
