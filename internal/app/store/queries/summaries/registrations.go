package summaries

import (
	"context"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EventRegistrations is one row of a manager's registration report: one
// event with its registrations. A club with no events yields a single row
// with an empty EventID and no registrations.
type EventRegistrations struct {
	ClubID        string                     `bson:"clubId" json:"clubId"`
	ClubName      string                     `bson:"clubName" json:"clubName"`
	EventID       string                     `bson:"eventId" json:"eventId"`
	EventTitle    string                     `bson:"eventTitle" json:"eventTitle"`
	EventDate     *time.Time                 `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	Registrations []models.EventRegistration `bson:"registrations" json:"registrations"`
}

// TotalEventRegistrations reports every event of every club managed by
// managerEmail with its registrations. Clubs are ordered by name, events by
// date, registrations by registered_at; _id breaks ties at each level.
func TotalEventRegistrations(ctx context.Context, db *mongo.Database, managerEmail string) ([]EventRegistrations, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"manager_email": normalize.Email(managerEmail)}},
		{"$sort": bson.D{{Key: "club_name_ci", Value: 1}, {Key: "_id", Value: 1}}},
		{"$lookup": bson.M{
			"from": "events",
			"let":  bson.M{"cid": "$_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{idnorm.ToObjectIDExpr("$club_id"), "$$cid"}}}},
				{"$sort": bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}},
				{"$lookup": bson.M{
					"from": "eventRegistrations",
					"let":  bson.M{"eid": idnorm.ToHexExpr("$_id")},
					"pipeline": []bson.M{
						{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{idnorm.ToHexExpr("$event_id"), "$$eid"}}}},
						{"$sort": bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}}},
					},
					"as": "registrations",
				}},
			},
			"as": "events",
		}},
		{"$unwind": bson.M{"path": "$events", "preserveNullAndEmptyArrays": true}},
		{"$project": bson.M{
			"_id":           0,
			"clubId":        idnorm.ToHexExpr("$_id"),
			"clubName":      "$club_name",
			"eventId":       bson.M{"$ifNull": bson.A{idnorm.ToHexExpr("$events._id"), ""}},
			"eventTitle":    bson.M{"$ifNull": bson.A{"$events.title", ""}},
			"eventDate":     "$events.date",
			"registrations": bson.M{"$ifNull": bson.A{"$events.registrations", bson.A{}}},
		}},
	}

	cur, err := db.Collection("clubs").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []EventRegistrations{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Registrations == nil {
			out[i].Registrations = []models.EventRegistration{}
		}
	}
	return out, nil
}
