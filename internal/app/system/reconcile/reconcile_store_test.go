package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	paymentstore "github.com/dalemusser/clubsphere/internal/app/store/payments"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/app/system/keyedmutex"
	"github.com/dalemusser/clubsphere/internal/app/system/reconcile"
	"github.com/dalemusser/clubsphere/internal/app/system/txn"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestReconcile_WithStores_JoinAndPaymentRace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClubWithFee(ctx, "Chess", "m@x.com", models.ClubApproved, 25)
	locks := keyedmutex.New()
	members := membershipstore.New(db, locks)
	gw := gateway.NewMemory()
	gw.Put(gateway.Session{
		ID: "cs_1", PaymentStatus: gateway.PaymentPaid, AmountSubtotal: 2500, Currency: "usd",
		CustomerEmail: "u@x.com", PaymentIntentID: "pi_1",
		Metadata: map[string]string{gateway.MetaClubID: club.ID.Hex(), gateway.MetaClubName: club.ClubName},
	})
	r := reconcile.New(reconcile.Deps{
		Gateway:     gw,
		Payments:    paymentstore.New(db),
		Memberships: members,
		Tx:          txn.New(db.Client(), zap.NewNop()),
		Locks:       locks,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := members.Join(ctx, "u@x.com", club.ID)
		if err != nil && !errors.Is(err, apperr.ErrAlreadyMember) {
			t.Errorf("Join: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := r.Reconcile(ctx, "cs_1"); err != nil {
			t.Errorf("Reconcile: %v", err)
		}
	}()
	wg.Wait()

	active, err := db.Collection("memberships").CountDocuments(ctx, bson.M{
		"user_email": "u@x.com", "status": models.MembershipActive,
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != 1 {
		t.Errorf("active memberships: got %d, want 1", active)
	}
}

func TestReconcile_WithStores_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClubWithFee(ctx, "Chess", "m@x.com", models.ClubApproved, 25)
	gw := gateway.NewMemory()
	gw.Put(gateway.Session{
		ID: "cs_1", PaymentStatus: gateway.PaymentPaid, AmountSubtotal: 2500,
		CustomerEmail: "u@x.com", PaymentIntentID: "pi_1",
		Metadata: map[string]string{gateway.MetaClubID: club.ID.Hex(), gateway.MetaClubName: club.ClubName},
	})
	locks := keyedmutex.New()
	r := reconcile.New(reconcile.Deps{
		Gateway:     gw,
		Payments:    paymentstore.New(db),
		Memberships: membershipstore.New(db, locks),
		Tx:          txn.New(db.Client(), zap.NewNop()),
		Locks:       locks,
	})

	for i := 0; i < 3; i++ {
		if _, err := r.Reconcile(context.Background(), "cs_1"); err != nil {
			t.Fatalf("Reconcile #%d: %v", i, err)
		}
	}

	payments, _ := db.Collection("payments").CountDocuments(ctx, bson.M{})
	memberships, _ := db.Collection("memberships").CountDocuments(ctx, bson.M{})
	if payments != 1 || memberships != 1 {
		t.Errorf("payments=%d memberships=%d, want 1 and 1", payments, memberships)
	}

	var p models.Payment
	if err := db.Collection("payments").FindOne(ctx, bson.M{"transaction_id": "pi_1"}).Decode(&p); err != nil {
		t.Fatalf("find payment: %v", err)
	}
	if p.Amount != 25.00 || p.ClubID != club.ID.Hex() {
		t.Errorf("payment = %+v", p)
	}
}
