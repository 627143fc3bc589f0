package checkoutstore_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	checkoutstore "github.com/dalemusser/clubsphere/internal/app/store/checkoutsessions"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSession(id string) models.CheckoutSession {
	return models.CheckoutSession{
		SessionID:   id,
		UserEmail:   "Buyer@x.com",
		ClubID:      primitive.NewObjectID().Hex(),
		ClubName:    "Chess",
		AmountCents: 2500,
		Currency:    "usd",
	}
}

func TestStore_CreateAndMark(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := checkoutstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cs, err := store.Create(ctx, newSession("cs_1"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cs.Status != models.CheckoutOpen || cs.UserEmail != "buyer@x.com" {
		t.Errorf("unexpected record: %+v", cs)
	}

	again, err := store.Create(ctx, newSession("cs_1"))
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if again.ID != cs.ID {
		t.Errorf("second Create returned a new record")
	}

	if err := store.MarkSwept(ctx, "cs_1", time.Now()); err != nil {
		t.Fatalf("MarkSwept failed: %v", err)
	}
	if err := store.MarkStatus(ctx, "cs_1", models.CheckoutReconciled); err != nil {
		t.Fatalf("MarkStatus failed: %v", err)
	}
	got, err := store.GetBySessionID(ctx, "cs_1")
	if err != nil {
		t.Fatalf("GetBySessionID failed: %v", err)
	}
	if got.Status != models.CheckoutReconciled || got.Attempts != 1 || got.LastSweptAt == nil {
		t.Errorf("unexpected record: %+v", got)
	}

	if err := store.MarkStatus(ctx, "cs_unknown", models.CheckoutReconciled); err != nil {
		t.Errorf("MarkStatus on unknown session: %v", err)
	}
	if _, err := store.GetBySessionID(ctx, "cs_unknown"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown: err = %v", err)
	}
}

func TestStore_ListOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := checkoutstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, id := range []string{"cs_old", "cs_done", "cs_new"} {
		if _, err := store.Create(ctx, newSession(id)); err != nil {
			t.Fatalf("Create(%s) failed: %v", id, err)
		}
	}
	old := time.Now().Add(-time.Hour)
	for _, id := range []string{"cs_old", "cs_done"} {
		if _, err := db.Collection("checkoutSessions").UpdateOne(ctx,
			bson.M{"session_id": id}, bson.M{"$set": bson.M{"created_at": old}}); err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}
	if err := store.MarkStatus(ctx, "cs_done", models.CheckoutReconciled); err != nil {
		t.Fatalf("MarkStatus failed: %v", err)
	}

	open, err := store.ListOpen(ctx, time.Now().Add(-time.Minute), 0)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 1 || open[0].SessionID != "cs_old" {
		t.Errorf("ListOpen = %+v, want only cs_old", open)
	}
}

func TestStore_ListOpen_RotatesPastSweptSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := checkoutstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	const batch = 5
	old := time.Now().Add(-time.Hour)
	for i := 0; i < batch; i++ {
		id := fmt.Sprintf("cs_unpaid_%d", i)
		if _, err := store.Create(ctx, newSession(id)); err != nil {
			t.Fatalf("Create(%s) failed: %v", id, err)
		}
		if _, err := db.Collection("checkoutSessions").UpdateOne(ctx,
			bson.M{"session_id": id}, bson.M{"$set": bson.M{"created_at": old}}); err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}
	if _, err := store.Create(ctx, newSession("cs_paid")); err != nil {
		t.Fatalf("Create(cs_paid) failed: %v", err)
	}
	if _, err := db.Collection("checkoutSessions").UpdateOne(ctx,
		bson.M{"session_id": "cs_paid"},
		bson.M{"$set": bson.M{"created_at": time.Now().Add(-10 * time.Minute)}}); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	cutoff := time.Now().Add(-2 * time.Minute)

	first, err := store.ListOpen(ctx, cutoff, batch)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(first) != batch {
		t.Fatalf("first batch has %d sessions, want %d", len(first), batch)
	}
	for _, cs := range first {
		if cs.SessionID == "cs_paid" {
			t.Fatalf("newest session came before older unswept ones")
		}
		if err := store.MarkSwept(ctx, cs.SessionID, time.Now()); err != nil {
			t.Fatalf("MarkSwept failed: %v", err)
		}
	}

	second, err := store.ListOpen(ctx, cutoff, batch)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(second) == 0 || second[0].SessionID != "cs_paid" {
		t.Errorf("second batch = %+v, want cs_paid first", second)
	}
}
