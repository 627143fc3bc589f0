// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/htmlsanitize"
	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c     *mongo.Collection
	clubs *mongo.Collection
	regs  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("events"),
		clubs: db.Collection("clubs"),
		regs:  db.Collection("eventRegistrations"),
	}
}

// Input holds the manager-editable fields of an event.
type Input struct {
	Title        string
	Description  string
	Location     string
	Date         time.Time
	IsPaid       bool
	EventFee     float64
	MaxAttendees int
}

func (in *Input) clean() error {
	in.Title = normalize.Name(in.Title)
	in.Description = htmlsanitize.PlainText(in.Description)
	in.Location = normalize.Name(in.Location)

	switch {
	case in.Title == "":
		return fmt.Errorf("title: %w", apperr.ErrMissingField)
	case in.Date.IsZero():
		return fmt.Errorf("date: %w", apperr.ErrMissingField)
	case in.EventFee < 0:
		return fmt.Errorf("eventFee must not be negative: %w", apperr.ErrInvalidField)
	case in.MaxAttendees < 0:
		return fmt.Errorf("maxAttendees must not be negative: %w", apperr.ErrInvalidField)
	}
	if !in.IsPaid {
		in.EventFee = 0
	}
	in.Date = in.Date.UTC()
	return nil
}

// Create adds an event to a club. The club must exist and be approved;
// pending and rejected clubs fail with ErrClubNotApproved.
func (s *Store) Create(ctx context.Context, rawClubID any, in Input, createdBy string) (models.Event, error) {
	clubID, err := idnorm.Normalize(rawClubID)
	if err != nil {
		return models.Event{}, err
	}
	if err := in.clean(); err != nil {
		return models.Event{}, err
	}

	var club struct {
		Status string `bson:"status"`
	}
	err = s.clubs.FindOne(ctx, bson.M{"_id": clubID},
		options.FindOne().SetProjection(bson.M{"status": 1})).Decode(&club)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, fmt.Errorf("club %s: %w", clubID.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, err
	}
	if club.Status != models.ClubApproved {
		return models.Event{}, fmt.Errorf("club %s is %s: %w", clubID.Hex(), club.Status, apperr.ErrClubNotApproved)
	}

	now := time.Now().UTC()
	e := models.Event{
		ID:           primitive.NewObjectID(),
		ClubID:       clubID,
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		Date:         in.Date,
		IsPaid:       in.IsPaid,
		EventFee:     in.EventFee,
		MaxAttendees: in.MaxAttendees,
		CreatedBy:    normalize.Email(createdBy),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// GetByID loads one event.
func (s *Store) GetByID(ctx context.Context, rawID any) (models.Event, error) {
	id, err := idnorm.Normalize(rawID)
	if err != nil {
		return models.Event{}, err
	}
	var e models.Event
	err = s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, fmt.Errorf("event %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// List returns events ordered by date, then _id. A non-empty clubID
// restricts the list to that club.
func (s *Store) List(ctx context.Context, clubID string) ([]models.Event, error) {
	q := bson.M{}
	if clubID != "" {
		oid, err := idnorm.Normalize(clubID)
		if err != nil {
			return nil, err
		}
		q["club_id"] = idnorm.Either([]primitive.ObjectID{oid})
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the editable fields of an event. Last writer wins.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in Input) (models.Event, error) {
	if err := in.clean(); err != nil {
		return models.Event{}, err
	}
	var e models.Event
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":         in.Title,
			"description":   in.Description,
			"location":      in.Location,
			"date":          in.Date,
			"is_paid":       in.IsPaid,
			"event_fee":     in.EventFee,
			"max_attendees": in.MaxAttendees,
			"updated_at":    time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, fmt.Errorf("event %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Delete removes an event and then its registrations. It returns the
// number of registrations removed. Registrations left behind by a failed
// second step are orphans no read path joins to.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, fmt.Errorf("event %s: %w", id.Hex(), apperr.ErrNotFound)
	}

	regs, err := s.regs.DeleteMany(ctx, bson.M{"event_id": idnorm.Either([]primitive.ObjectID{id})})
	if err != nil {
		return 0, fmt.Errorf("delete registrations for event %s: %w", id.Hex(), err)
	}
	return regs.DeletedCount, nil
}
