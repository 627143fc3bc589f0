package summaries

import (
	"context"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MemberSummary is a member's dashboard.
type MemberSummary struct {
	ActiveMemberships int64          `json:"activeMemberships"`
	Registrations     int64          `json:"registrations"`
	Events            []models.Event `json:"events"`
}

// Member computes the dashboard for userEmail. Events are those of every
// club the user is an active member of, ordered by date then _id.
func Member(ctx context.Context, db *mongo.Database, userEmail string) (MemberSummary, error) {
	email := normalize.Email(userEmail)
	s := MemberSummary{Events: []models.Event{}}

	active := bson.M{"user_email": email, "status": models.MembershipActive}
	var err error
	if s.ActiveMemberships, err = db.Collection("memberships").CountDocuments(ctx, active); err != nil {
		return MemberSummary{}, err
	}
	clubIDs, err := membershipClubIDs(ctx, db, active)
	if err != nil {
		return MemberSummary{}, err
	}

	if s.Registrations, err = db.Collection("eventRegistrations").CountDocuments(ctx, bson.M{"user_email": email}); err != nil {
		return MemberSummary{}, err
	}
	if len(clubIDs) == 0 {
		return s, nil
	}

	cur, err := db.Collection("events").Find(ctx,
		bson.M{"club_id": idnorm.Either(clubIDs)},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return MemberSummary{}, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &s.Events); err != nil {
		return MemberSummary{}, err
	}
	return s, nil
}

// membershipClubIDs returns the club ids of the memberships matching q.
// Memberships whose club id does not parse are skipped.
func membershipClubIDs(ctx context.Context, db *mongo.Database, q bson.M) ([]primitive.ObjectID, error) {
	cur, err := db.Collection("memberships").Find(ctx, q,
		options.Find().SetProjection(bson.M{"club_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ClubID any `bson:"club_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		oid, err := idnorm.Normalize(row.ClubID)
		if err != nil {
			zap.L().Warn("membership with unusable club id",
				zap.Any("user_email", q["user_email"]), zap.Any("club_id", row.ClubID))
			continue
		}
		ids = append(ids, oid)
	}
	return ids, cur.Err()
}

// MyClub is one row of the "my clubs" list.
type MyClub struct {
	MembershipID  primitive.ObjectID `bson:"membershipId" json:"membershipId"`
	ClubID        string             `bson:"clubId" json:"clubId"`
	ClubName      string             `bson:"clubName" json:"clubName"`
	Location      string             `bson:"location" json:"location"`
	Category      string             `bson:"category" json:"category,omitempty"`
	Status        string             `bson:"status" json:"status"`
	ClubStatus    string             `bson:"clubStatus" json:"clubStatus"`
	MembershipFee float64            `bson:"membershipFee" json:"membershipFee"`
	JoinedAt      time.Time          `bson:"joinedAt" json:"joinedAt"`
}

// MyClubs lists the clubs userEmail is an active member of, ordered by
// joined_at then membership _id. Status is the membership status;
// memberships whose club no longer exists are dropped.
func MyClubs(ctx context.Context, db *mongo.Database, userEmail string) ([]MyClub, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user_email": normalize.Email(userEmail), "status": models.MembershipActive}},
		{"$lookup": bson.M{
			"from": "clubs",
			"let":  bson.M{"cid": idnorm.ToObjectIDExpr("$club_id")},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$cid"}}}},
			},
			"as": "club",
		}},
		{"$unwind": "$club"},
		{"$sort": bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}}},
		{"$project": bson.M{
			"_id":           0,
			"membershipId":  "$_id",
			"clubId":        idnorm.ToHexExpr("$club._id"),
			"clubName":      "$club.club_name",
			"location":      "$club.location",
			"category":      "$club.category",
			"status":        "$status",
			"clubStatus":    "$club.status",
			"membershipFee": "$club.membership_fee",
			"joinedAt":      "$joined_at",
		}},
	}

	cur, err := db.Collection("memberships").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []MyClub{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyEvent is one row of the "my events" list.
type MyEvent struct {
	RegistrationID primitive.ObjectID `bson:"registrationId" json:"registrationId"`
	EventID        string             `bson:"eventId" json:"eventId"`
	EventTitle     string             `bson:"eventTitle" json:"eventTitle"`
	EventDate      time.Time          `bson:"eventDate" json:"eventDate"`
	EventLocation  string             `bson:"eventLocation" json:"eventLocation,omitempty"`
	EventStatus    string             `bson:"eventStatus" json:"eventStatus"`
	ClubID         string             `bson:"clubId" json:"clubId"`
	ClubName       string             `bson:"clubName" json:"clubName"`
	RegisteredAt   time.Time          `bson:"registeredAt" json:"registeredAt"`
}

// MyEvents lists the events userEmail registered for, with the owning
// club's name, ordered by registered_at then registration _id.
// Registrations whose event is gone are dropped; an event whose club is
// gone keeps an empty club name.
func MyEvents(ctx context.Context, db *mongo.Database, userEmail string) ([]MyEvent, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user_email": normalize.Email(userEmail)}},
		{"$lookup": bson.M{
			"from": "events",
			"let":  bson.M{"eid": idnorm.ToObjectIDExpr("$event_id")},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$eid"}}}},
			},
			"as": "event",
		}},
		{"$unwind": "$event"},
		{"$lookup": bson.M{
			"from": "clubs",
			"let":  bson.M{"cid": idnorm.ToObjectIDExpr("$event.club_id")},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$cid"}}}},
				{"$project": bson.M{"club_name": 1}},
			},
			"as": "club",
		}},
		{"$unwind": bson.M{"path": "$club", "preserveNullAndEmptyArrays": true}},
		{"$sort": bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}}},
		{"$project": bson.M{
			"_id":            0,
			"registrationId": "$_id",
			"eventId":        idnorm.ToHexExpr("$event._id"),
			"eventTitle":     "$event.title",
			"eventDate":      "$event.date",
			"eventLocation":  "$event.location",
			"eventStatus":    "$status",
			"clubId":         idnorm.ToHexExpr("$event.club_id"),
			"clubName":       bson.M{"$ifNull": bson.A{"$club.club_name", ""}},
			"registeredAt":   "$registered_at",
		}},
	}

	cur, err := db.Collection("eventRegistrations").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []MyEvent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
