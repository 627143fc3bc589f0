// internal/app/system/indexes/indexes.go
package indexes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique indexes here are what make reconciliation and registration
safe under concurrency; the in-process locks only narrow the race window.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"clubs", ensureClubs},
		{"memberships", ensureMemberships},
		{"events", ensureEvents},
		{"eventRegistrations", ensureEventRegistrations},
		{"payments", ensurePayments},
		{"checkoutSessions", ensureCheckoutSessions},
		{"audit_events", ensureAuditEvents},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string   `bson:"name"`
	Key     bson.D   `bson:"key"`
	Unique  *bool    `bson:"unique,omitempty"`
	Partial bson.Raw `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

func partialSig(filter any) []byte {
	if filter == nil {
		return nil
	}
	raw, err := bson.Marshal(filter)
	if err != nil {
		return nil
	}
	return raw
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	for _, m := range models {
		var name string
		var unique bool
		var partial []byte
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = boolVal(m.Options.Unique)
			partial = partialSig(m.Options.PartialFilterExpression)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
		}

		if ex, ok := existing[sig]; ok {
			same := boolVal(ex.Unique) == unique && bytes.Equal([]byte(ex.Partial), partial)
			if same && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index", fields...)
				continue
			}
			// Options or name differ: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed", append(fields, zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email is the natural key used by every other collection.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_role_created"),
		},
	})
}

func ensureClubs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("clubs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Manager dashboards start from the manager's clubs.
		{
			Keys:    bson.D{{Key: "manager_email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_clubs_manager_created"),
		},
		// Public listing by status, sorted by name.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "club_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_clubs_status_nameci_id"),
		},
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("memberships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one active membership per (user, club). Inactive and
		// cancelled rows are history and may repeat.
		{
			Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "club_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "active"}}).
				SetName("uniq_memberships_active_user_club"),
		},
		{
			Keys:    bson.D{{Key: "club_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_memberships_club_status"),
		},
		{
			Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "status", Value: 1}, {Key: "joined_at", Value: 1}},
			Options: options.Index().SetName("idx_memberships_user_status_joined"),
		},
		// Reconciliation repair looks memberships up by payment.
		{
			Keys:    bson.D{{Key: "payment_id", Value: 1}},
			Options: options.Index().SetName("idx_memberships_payment"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "club_id", Value: 1}, {Key: "date", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_events_club_date_id"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_events_date_id"),
		},
	})
}

func ensureEventRegistrations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("eventRegistrations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One registration per (user, event).
		{
			Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_registrations_user_event"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "registered_at", Value: 1}},
			Options: options.Index().SetName("idx_registrations_event_registered"),
		},
		{
			Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_registrations_user_registered_id"),
		},
		{
			Keys:    bson.D{{Key: "club_id", Value: 1}},
			Options: options.Index().SetName("idx_registrations_club"),
		},
	})
}

func ensurePayments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("payments")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// The gateway transaction id is the reconciliation idempotency key.
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_payments_transaction"),
		},
		{
			Keys:    bson.D{{Key: "club_id", Value: 1}, {Key: "paid_at", Value: -1}},
			Options: options.Index().SetName("idx_payments_club_paid"),
		},
		{
			Keys:    bson.D{{Key: "customer_email", Value: 1}, {Key: "paid_at", Value: -1}},
			Options: options.Index().SetName("idx_payments_email_paid"),
		},
	})
}

func ensureCheckoutSessions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("checkoutSessions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_checkout_session"),
		},
		// Sweeper scans open sessions, least recently swept first.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "last_swept_at", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_checkout_status_swept_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor_email", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_timestamp"),
		},
	})
}
