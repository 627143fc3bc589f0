// Package summaries provides the read-only dashboard aggregations.
//
// Memberships, payments and registrations store club and event ids as hex
// strings while events store club ids as ObjectIDs. Every join here goes
// through idnorm so either encoding matches.
package summaries

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClubCounts breaks the club total down by approval status.
type ClubCounts struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

// paymentTotals returns the number and summed amount of payments matching q.
func paymentTotals(ctx context.Context, db *mongo.Database, q bson.M) (count int64, revenue float64, err error) {
	pipeline := []bson.M{
		{"$match": q},
		{"$group": bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$amount"},
		}},
	}
	cur, err := db.Collection("payments").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		var row struct {
			Count   int64   `bson:"count"`
			Revenue float64 `bson:"revenue"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, 0, err
		}
		count, revenue = row.Count, cents(row.Revenue)
	}
	return count, revenue, cur.Err()
}

// cents rounds a summed amount back to two decimals.
func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
