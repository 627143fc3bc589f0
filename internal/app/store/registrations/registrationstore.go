// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MembershipChecker reports whether a user holds an active membership in
// a club. membershipstore.Store satisfies it.
type MembershipChecker interface {
	HasActive(ctx context.Context, userEmail string, rawClubID any) (bool, error)
}

type Store struct {
	c       *mongo.Collection
	events  *mongo.Collection
	members MembershipChecker
}

func New(db *mongo.Database, members MembershipChecker) *Store {
	return &Store{
		c:       db.Collection("eventRegistrations"),
		events:  db.Collection("events"),
		members: members,
	}
}

// Register signs a user up for an event. The event must exist, the user
// must not already be registered and must hold an active membership in
// the event's club. Checks run in that order.
func (s *Store) Register(ctx context.Context, userEmail string, rawEventID any) (models.EventRegistration, error) {
	email := normalize.Email(userEmail)
	if email == "" {
		return models.EventRegistration{}, fmt.Errorf("userEmail: %w", apperr.ErrMissingField)
	}
	eventID, err := idnorm.Normalize(rawEventID)
	if err != nil {
		return models.EventRegistration{}, err
	}

	var ev struct {
		ClubID primitive.ObjectID `bson:"club_id"`
	}
	err = s.events.FindOne(ctx, bson.M{"_id": eventID},
		options.FindOne().SetProjection(bson.M{"club_id": 1})).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.EventRegistration{}, fmt.Errorf("event %s: %w", eventID.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return models.EventRegistration{}, err
	}
	eventHex := eventID.Hex()
	clubHex := ev.ClubID.Hex()

	n, err := s.c.CountDocuments(ctx, bson.M{
		"user_email": email,
		"event_id":   idnorm.Either([]primitive.ObjectID{eventID}),
	}, options.Count().SetLimit(1))
	if err != nil {
		return models.EventRegistration{}, err
	}
	if n > 0 {
		return models.EventRegistration{}, apperr.ErrDuplicateRegistration
	}

	ok, err := s.members.HasActive(ctx, email, clubHex)
	if err != nil {
		return models.EventRegistration{}, err
	}
	if !ok {
		return models.EventRegistration{}, apperr.ErrMembershipRequired
	}

	reg := models.EventRegistration{
		ID:           primitive.NewObjectID(),
		UserEmail:    email,
		EventID:      eventHex,
		ClubID:       clubHex,
		Status:       models.RegistrationRegistered,
		RegisteredAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, reg); err != nil {
		if wafflemongo.IsDup(err) {
			return models.EventRegistration{}, apperr.ErrDuplicateRegistration
		}
		return models.EventRegistration{}, err
	}
	return reg, nil
}

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	UserEmail string
	EventID   string
}

// List returns registrations ordered by registered_at, then _id.
func (s *Store) List(ctx context.Context, f Filter) ([]models.EventRegistration, error) {
	q := bson.M{}
	if e := normalize.Email(f.UserEmail); e != "" {
		q["user_email"] = e
	}
	if f.EventID != "" {
		oid, err := idnorm.Normalize(f.EventID)
		if err != nil {
			return nil, err
		}
		q["event_id"] = idnorm.Either([]primitive.ObjectID{oid})
	}

	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.EventRegistration{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
