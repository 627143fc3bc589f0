// internal/app/features/users/handler.go
package users

import (
	userstore "github.com/dalemusser/clubsphere/internal/app/store/users"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves user sign-in registration and role management.
type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a users Handler bound to db.
func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		AuditLog: auditLog,
		Log:      logger,
	}
}
