package summaries

import (
	"context"

	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminSummary is the platform-wide dashboard.
type AdminSummary struct {
	Users       int64      `json:"users"`
	Clubs       ClubCounts `json:"clubs"`
	Memberships int64      `json:"memberships"`
	Events      int64      `json:"events"`
	Payments    int64      `json:"payments"`
	Revenue     float64    `json:"revenue"`
}

// Admin computes the platform totals.
func Admin(ctx context.Context, db *mongo.Database) (AdminSummary, error) {
	var s AdminSummary
	var err error

	if s.Users, err = db.Collection("users").CountDocuments(ctx, bson.M{}); err != nil {
		return AdminSummary{}, err
	}
	if s.Clubs, err = clubCounts(ctx, db, bson.M{}); err != nil {
		return AdminSummary{}, err
	}
	if s.Memberships, err = db.Collection("memberships").CountDocuments(ctx, bson.M{}); err != nil {
		return AdminSummary{}, err
	}
	if s.Events, err = db.Collection("events").CountDocuments(ctx, bson.M{}); err != nil {
		return AdminSummary{}, err
	}
	if s.Payments, s.Revenue, err = paymentTotals(ctx, db, bson.M{}); err != nil {
		return AdminSummary{}, err
	}
	return s, nil
}

func clubCounts(ctx context.Context, db *mongo.Database, match bson.M) (ClubCounts, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
	cur, err := db.Collection("clubs").Aggregate(ctx, pipeline)
	if err != nil {
		return ClubCounts{}, err
	}
	defer cur.Close(ctx)

	var out ClubCounts
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return ClubCounts{}, err
		}
		out.Total += row.Count
		switch row.Status {
		case models.ClubApproved:
			out.Approved = row.Count
		case models.ClubPending:
			out.Pending = row.Count
		case models.ClubRejected:
			out.Rejected = row.Count
		}
	}
	return out, cur.Err()
}
