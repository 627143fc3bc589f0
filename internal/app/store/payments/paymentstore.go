// internal/app/store/payments/paymentstore.go
package paymentstore

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

// Store is append-only; payments are never updated once written.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

// Insert writes a payment. A second payment with the same transaction id
// fails with ErrDuplicateTransaction.
func (s *Store) Insert(ctx context.Context, p models.Payment) (models.Payment, error) {
	if p.TransactionID == "" {
		return models.Payment{}, fmt.Errorf("transactionId: %w", apperr.ErrMissingField)
	}
	hex, err := idnorm.Hex(p.ClubID)
	if err != nil {
		return models.Payment{}, err
	}
	p.ClubID = hex
	p.CustomerEmail = normalize.Email(p.CustomerEmail)
	p.Currency = normalize.Currency(p.Currency)
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentPaid
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Payment{}, fmt.Errorf("transaction %s: %w", p.TransactionID, apperr.ErrDuplicateTransaction)
		}
		return models.Payment{}, err
	}
	return p, nil
}

// GetByTransactionID returns the payment for a gateway transaction.
func (s *Store) GetByTransactionID(ctx context.Context, txID string) (models.Payment, error) {
	var p models.Payment
	err := s.c.FindOne(ctx, bson.M{"transaction_id": txID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Payment{}, fmt.Errorf("payment %s: %w", txID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	ClubID string
	Email  string
}

// List returns payments, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Payment, error) {
	q := bson.M{}
	if f.ClubID != "" {
		oid, err := idnorm.Normalize(f.ClubID)
		if err != nil {
			return nil, err
		}
		q["club_id"] = idnorm.Either([]primitive.ObjectID{oid})
	}
	if e := normalize.Email(f.Email); e != "" {
		q["customer_email"] = e
	}

	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
