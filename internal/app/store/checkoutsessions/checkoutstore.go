// internal/app/store/checkoutsessions/checkoutstore.go
package checkoutstore

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

// Store tracks gateway checkout sessions we have handed out.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("checkoutSessions")}
}

// Create records a freshly opened session. Recording the same gateway
// session twice is not an error; the existing record is returned.
func (s *Store) Create(ctx context.Context, cs models.CheckoutSession) (models.CheckoutSession, error) {
	if cs.SessionID == "" {
		return models.CheckoutSession{}, fmt.Errorf("sessionId: %w", apperr.ErrMissingField)
	}
	hex, err := idnorm.Hex(cs.ClubID)
	if err != nil {
		return models.CheckoutSession{}, err
	}
	now := time.Now().UTC()
	cs.ID = primitive.NewObjectID()
	cs.ClubID = hex
	cs.UserEmail = normalize.Email(cs.UserEmail)
	cs.Currency = normalize.Currency(cs.Currency)
	cs.Status = models.CheckoutOpen
	cs.Attempts = 0
	cs.CreatedAt = now
	cs.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, cs); err != nil {
		if wafflemongo.IsDup(err) {
			return s.GetBySessionID(ctx, cs.SessionID)
		}
		return models.CheckoutSession{}, err
	}
	return cs, nil
}

// GetBySessionID loads a record by gateway session id.
func (s *Store) GetBySessionID(ctx context.Context, sessionID string) (models.CheckoutSession, error) {
	var cs models.CheckoutSession
	err := s.c.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&cs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CheckoutSession{}, fmt.Errorf("checkout session %s: %w", sessionID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.CheckoutSession{}, err
	}
	return cs, nil
}

// MarkStatus moves a record to status. Sessions we never recorded (for
// example ones opened before records were kept) are ignored.
func (s *Store) MarkStatus(ctx context.Context, sessionID, status string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	return err
}

// MarkSwept counts one more reconciliation attempt made at the given time.
func (s *Store) MarkSwept(ctx context.Context, sessionID string, at time.Time) error {
	at = at.UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{
			"$inc": bson.M{"attempts": 1},
			"$set": bson.M{"last_swept_at": at, "updated_at": time.Now().UTC()},
		},
	)
	return err
}

// ListOpen returns open sessions created before cutoff, at most limit of
// them (0 means no limit). Sessions never swept come first, then the ones
// swept longest ago, so a capped batch rotates through every open session.
func (s *Store) ListOpen(ctx context.Context, cutoff time.Time, limit int64) ([]models.CheckoutSession, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "last_swept_at", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{
		"status":     models.CheckoutOpen,
		"created_at": bson.M{"$lt": cutoff},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CheckoutSession{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
