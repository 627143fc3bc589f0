// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clubs")}
}

// Input holds the manager-editable fields of a club.
type Input struct {
	ClubName      string
	Description   string
	Category      string
	Location      string
	BannerImage   string
	MembershipFee float64
}

func (in *Input) clean() error {
	in.ClubName = normalize.Name(in.ClubName)
	in.Description = htmlsanitize.PlainText(in.Description)
	in.Category = normalize.Name(in.Category)
	in.Location = normalize.Name(in.Location)
	in.BannerImage = normalize.Name(in.BannerImage)

	if in.ClubName == "" {
		return fmt.Errorf("clubName: %w", apperr.ErrMissingField)
	}
	if in.MembershipFee < 0 {
		return fmt.Errorf("membershipFee must not be negative: %w", apperr.ErrInvalidField)
	}
	if in.BannerImage != "" && !urlutil.IsValidAbsHTTPURL(in.BannerImage) {
		return fmt.Errorf("bannerImage must be an absolute http(s) URL: %w", apperr.ErrInvalidField)
	}
	return nil
}

// Create inserts a pending club owned by managerEmail.
func (s *Store) Create(ctx context.Context, managerEmail string, in Input) (models.Club, error) {
	if err := in.clean(); err != nil {
		return models.Club{}, err
	}
	managerEmail = normalize.Email(managerEmail)
	if managerEmail == "" {
		return models.Club{}, fmt.Errorf("managerEmail: %w", apperr.ErrMissingField)
	}

	now := time.Now().UTC()
	c := models.Club{
		ID:            primitive.NewObjectID(),
		ManagerEmail:  managerEmail,
		ClubName:      in.ClubName,
		ClubNameCI:    text.Fold(in.ClubName),
		Description:   in.Description,
		Category:      in.Category,
		Location:      in.Location,
		BannerImage:   in.BannerImage,
		MembershipFee: in.MembershipFee,
		Status:        models.ClubPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Club{}, err
	}
	return c, nil
}

// GetByID loads a club. rawID may be in either id encoding.
func (s *Store) GetByID(ctx context.Context, rawID any) (models.Club, error) {
	id, err := idnorm.Normalize(rawID)
	if err != nil {
		return models.Club{}, err
	}
	var c models.Club
	err = s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Club{}, fmt.Errorf("club %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return models.Club{}, err
	}
	return c, nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	Status       string
	Category     string
	Search       string // case-insensitive substring of the club name
	ManagerEmail string
}

// List returns clubs matching f ordered by name.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Club, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.Category != "" {
		q["category"] = normalize.Name(f.Category)
	}
	if f.ManagerEmail != "" {
		q["manager_email"] = normalize.Email(f.ManagerEmail)
	}
	if f.Search != "" {
		q["club_name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.Search))}
	}

	opts := options.Find().SetSort(bson.D{{Key: "club_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Club{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of a club. Status is untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in Input) (models.Club, error) {
	if err := in.clean(); err != nil {
		return models.Club{}, err
	}
	set := bson.M{
		"club_name":      in.ClubName,
		"club_name_ci":   text.Fold(in.ClubName),
		"description":    in.Description,
		"category":       in.Category,
		"location":       in.Location,
		"banner_image":   in.BannerImage,
		"membership_fee": in.MembershipFee,
		"updated_at":     time.Now().UTC(),
	}
	return s.findAndSet(ctx, id, set)
}

// SetStatus moves a club between pending, approved and rejected. Any
// transition is allowed; last writer wins.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Club, error) {
	status = normalize.Status(status)
	if !models.IsValidClubStatus(status) {
		return models.Club{}, fmt.Errorf("status %q: %w", status, apperr.ErrInvalidField)
	}
	return s.findAndSet(ctx, id, bson.M{"status": status, "updated_at": time.Now().UTC()})
}

func (s *Store) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Club, error) {
	var c models.Club
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Club{}, fmt.Errorf("club %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return models.Club{}, err
	}
	return c, nil
}
