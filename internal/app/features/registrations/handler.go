// internal/app/features/registrations/handler.go
package registrations

import (
	clubstore "github.com/dalemusser/clubsphere/internal/app/store/clubs"
	eventstore "github.com/dalemusser/clubsphere/internal/app/store/events"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	registrationstore "github.com/dalemusser/clubsphere/internal/app/store/registrations"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Registrations *registrationstore.Store
	Events        *eventstore.Store
	Clubs         *clubstore.Store
	Log           *zap.Logger
}

// NewHandler constructs the event registration handler. Registrations
// check the membership ledger before admitting anyone.
func NewHandler(db *mongo.Database, members *membershipstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Registrations: registrationstore.New(db, members),
		Events:        eventstore.New(db),
		Clubs:         clubstore.New(db),
		Log:           logger,
	}
}
