package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ErrDuplicateEmail is returned when a user with the email already exists.
var ErrDuplicateEmail = apperr.ErrDuplicateEmail

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RoleForEmail returns the stored role for email. It satisfies
// auth.RoleResolver.
func (s *Store) RoleForEmail(ctx context.Context, email string) (string, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	opts := options.FindOne().SetProjection(bson.M{"role": 1})
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}
	return doc.Role, nil
}

// Create inserts a user on first sign-in. Role is always member;
// promotion is an admin action (SetRole).
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, fmt.Errorf("email: %w", apperr.ErrMissingField)
	}
	if !validate.SimpleEmailValid(u.Email) {
		return models.User{}, fmt.Errorf("email %q: %w", u.Email, apperr.ErrInvalidField)
	}
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Role = models.RoleMember

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns all users, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRole changes a user's role and returns the updated user.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("role %q: %w", role, apperr.ErrInvalidField)
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureAdmin makes email an admin, creating the user if needed. Used at
// startup to bootstrap the first administrator.
func (s *Store) EnsureAdmin(ctx context.Context, email string) error {
	email = normalize.Email(email)
	if email == "" {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set":         bson.M{"role": models.RoleAdmin, "updated_at": now},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
