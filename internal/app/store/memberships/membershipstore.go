// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/keyedmutex"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the membership ledger. The partial unique index on
// (user_email, club_id) where status=active is the authority; the keyed
// mutex keeps one process from racing itself into that index.
type Store struct {
	c     *mongo.Collection
	clubs *mongo.Collection
	locks *keyedmutex.Map
}

// New returns a Store. locks is shared with the payment reconciler so a
// free join and a payment for the same pair are serialized; nil gets a
// private map.
func New(db *mongo.Database, locks *keyedmutex.Map) *Store {
	if locks == nil {
		locks = keyedmutex.New()
	}
	return &Store{
		c:     db.Collection("memberships"),
		clubs: db.Collection("clubs"),
		locks: locks,
	}
}

// PairKey is the lock key for a (user, club) pair.
func PairKey(userEmail, clubHex string) string {
	return "membership:" + normalize.Email(userEmail) + "|" + clubHex
}

// Join creates an active membership for a free join.
func (s *Store) Join(ctx context.Context, userEmail string, rawClubID any) (models.Membership, error) {
	email, clubHex, err := pair(userEmail, rawClubID)
	if err != nil {
		return models.Membership{}, err
	}
	if err := s.requireClub(ctx, clubHex); err != nil {
		return models.Membership{}, err
	}

	unlock := s.locks.Lock(PairKey(email, clubHex))
	defer unlock()

	active, err := s.HasActive(ctx, email, clubHex)
	if err != nil {
		return models.Membership{}, err
	}
	if active {
		return models.Membership{}, apperr.ErrAlreadyMember
	}
	return s.insertActive(ctx, email, clubHex, "")
}

// CreateFromPayment writes the ledger entry for a reconciled payment. The
// caller holds the pair lock and has already checked for an active
// membership; a concurrent writer surfaces as ErrAlreadyMember.
func (s *Store) CreateFromPayment(ctx context.Context, userEmail, clubHex, paymentID string) (models.Membership, error) {
	email, hex, err := pair(userEmail, clubHex)
	if err != nil {
		return models.Membership{}, err
	}
	if paymentID == "" {
		return models.Membership{}, fmt.Errorf("paymentId: %w", apperr.ErrMissingField)
	}
	return s.insertActive(ctx, email, hex, paymentID)
}

func (s *Store) insertActive(ctx context.Context, email, clubHex, paymentID string) (models.Membership, error) {
	now := time.Now().UTC()
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserEmail: email,
		ClubID:    clubHex,
		Status:    models.MembershipActive,
		PaymentID: paymentID,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, apperr.ErrAlreadyMember
		}
		return models.Membership{}, err
	}
	return m, nil
}

// SetStatus moves a membership to status. Any transition is allowed;
// re-activating fails with ErrAlreadyMember when the pair already has
// another active membership.
func (s *Store) SetStatus(ctx context.Context, rawID any, status string) (models.Membership, error) {
	id, err := idnorm.Normalize(rawID)
	if err != nil {
		return models.Membership{}, err
	}
	status = normalize.Status(status)
	if !models.IsValidMembershipStatus(status) {
		return models.Membership{}, fmt.Errorf("status %q: %w", status, apperr.ErrInvalidField)
	}

	var m models.Membership
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	switch {
	case err == nil:
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Membership{}, fmt.Errorf("membership %s: %w", id.Hex(), apperr.ErrNotFound)
	case wafflemongo.IsDup(err):
		return models.Membership{}, apperr.ErrAlreadyMember
	default:
		return models.Membership{}, err
	}
	return m, nil
}

// GetByID loads one membership.
func (s *Store) GetByID(ctx context.Context, rawID any) (models.Membership, error) {
	id, err := idnorm.Normalize(rawID)
	if err != nil {
		return models.Membership{}, err
	}
	return s.findOne(ctx, bson.M{"_id": id}, "membership "+id.Hex())
}

// GetActive returns the active membership for the pair.
func (s *Store) GetActive(ctx context.Context, userEmail string, rawClubID any) (models.Membership, error) {
	email, clubHex, err := pair(userEmail, rawClubID)
	if err != nil {
		return models.Membership{}, err
	}
	return s.findOne(ctx, activeFilter(email, clubHex), "active membership")
}

// GetByPaymentID returns the membership created by a payment.
func (s *Store) GetByPaymentID(ctx context.Context, paymentID string) (models.Membership, error) {
	if paymentID == "" {
		return models.Membership{}, fmt.Errorf("paymentId: %w", apperr.ErrMissingField)
	}
	return s.findOne(ctx, bson.M{"payment_id": paymentID}, "membership for payment "+paymentID)
}

// HasActive reports whether the pair has an active membership.
func (s *Store) HasActive(ctx context.Context, userEmail string, rawClubID any) (bool, error) {
	email, clubHex, err := pair(userEmail, rawClubID)
	if err != nil {
		return false, err
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err = s.c.FindOne(ctx, activeFilter(email, clubHex), opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	UserEmail string
	ClubID    string
	Status    string
}

// List returns memberships matching f ordered by joined_at, then _id.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Membership, error) {
	q := bson.M{}
	if f.UserEmail != "" {
		q["user_email"] = normalize.Email(f.UserEmail)
	}
	if f.ClubID != "" {
		oid, err := idnorm.Normalize(f.ClubID)
		if err != nil {
			return nil, err
		}
		q["club_id"] = idnorm.Either([]primitive.ObjectID{oid})
	}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Membership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M, what string) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, filter).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Membership{}, fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

func (s *Store) requireClub(ctx context.Context, clubHex string) error {
	oid, _ := primitive.ObjectIDFromHex(clubHex)
	err := s.clubs.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("club %s: %w", clubHex, apperr.ErrNotFound)
	}
	return err
}

// activeFilter matches the pair's active membership whichever encoding
// club_id was stored in.
func activeFilter(email, clubHex string) bson.M {
	oid, _ := primitive.ObjectIDFromHex(clubHex)
	return bson.M{
		"user_email": email,
		"club_id":    idnorm.Either([]primitive.ObjectID{oid}),
		"status":     models.MembershipActive,
	}
}

func pair(userEmail string, rawClubID any) (email, clubHex string, err error) {
	email = normalize.Email(userEmail)
	if email == "" {
		return "", "", fmt.Errorf("userEmail: %w", apperr.ErrMissingField)
	}
	clubHex, err = idnorm.Hex(rawClubID)
	if err != nil {
		return "", "", err
	}
	return email, clubHex, nil
}
