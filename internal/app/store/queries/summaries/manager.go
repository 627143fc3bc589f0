package summaries

import (
	"context"

	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ManagerSummary totals a club manager's clubs.
type ManagerSummary struct {
	Clubs    ClubCounts `json:"clubs"`
	Members  int64      `json:"members"`
	Events   int64      `json:"events"`
	Payments int64      `json:"payments"`
	Revenue  float64    `json:"revenue"`
}

// Manager computes totals across the clubs managed by managerEmail. A
// manager with no clubs gets all zeros.
func Manager(ctx context.Context, db *mongo.Database, managerEmail string) (ManagerSummary, error) {
	email := normalize.Email(managerEmail)
	ids, err := ownedClubIDs(ctx, db, email)
	if err != nil {
		return ManagerSummary{}, err
	}

	var s ManagerSummary
	if s.Clubs, err = clubCounts(ctx, db, bson.M{"manager_email": email}); err != nil {
		return ManagerSummary{}, err
	}
	if len(ids) == 0 {
		return s, nil
	}

	owned := idnorm.Either(ids)
	if s.Members, err = db.Collection("memberships").CountDocuments(ctx, bson.M{"club_id": owned}); err != nil {
		return ManagerSummary{}, err
	}
	if s.Events, err = db.Collection("events").CountDocuments(ctx, bson.M{"club_id": owned}); err != nil {
		return ManagerSummary{}, err
	}
	if s.Payments, s.Revenue, err = paymentTotals(ctx, db, bson.M{"club_id": owned}); err != nil {
		return ManagerSummary{}, err
	}
	return s, nil
}

func ownedClubIDs(ctx context.Context, db *mongo.Database, email string) ([]primitive.ObjectID, error) {
	cur, err := db.Collection("clubs").Find(ctx,
		bson.M{"manager_email": email},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}
