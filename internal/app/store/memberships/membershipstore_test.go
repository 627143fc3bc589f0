package membershipstore_test

import (
	"errors"
	"sync"
	"testing"

	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Join(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)

	m, err := store.Join(ctx, "U1@x.com", club.ID.Hex())
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if m.Status != models.MembershipActive {
		t.Errorf("Status: got %q, want active", m.Status)
	}
	if m.UserEmail != "u1@x.com" {
		t.Errorf("UserEmail: got %q", m.UserEmail)
	}
	if m.ClubID != club.ID.Hex() {
		t.Errorf("ClubID: got %q, want canonical hex", m.ClubID)
	}
	if m.JoinedAt.IsZero() {
		t.Error("expected JoinedAt to be set")
	}

	// The club id accepted as an ObjectID joins the same pair.
	if _, err := store.Join(ctx, "u1@x.com", club.ID); !errors.Is(err, apperr.ErrAlreadyMember) {
		t.Errorf("second Join: err = %v, want ErrAlreadyMember", err)
	}
}

func TestStore_Join_UnknownClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Join(ctx, "u1@x.com", primitive.NewObjectID().Hex())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = store.Join(ctx, "u1@x.com", "not-an-id")
	if !errors.Is(err, apperr.ErrInvalidIdentifier) {
		t.Errorf("err = %v, want ErrInvalidIdentifier", err)
	}
}

func TestStore_Join_ConcurrentYieldsOneActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Join(ctx, "u1@x.com", club.ID.Hex())
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrAlreadyMember):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("successful joins: got %d, want 1", ok)
	}

	n, _ := db.Collection("memberships").CountDocuments(ctx, bson.M{"status": models.MembershipActive})
	if n != 1 {
		t.Errorf("active memberships: got %d, want 1", n)
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)
	m := fixtures.CreateMembership(ctx, "u1@x.com", club.ID, models.MembershipActive)

	got, err := store.SetStatus(ctx, m.ID.Hex(), "cancelled")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if got.Status != models.MembershipCancelled {
		t.Errorf("Status: got %q", got.Status)
	}

	// any → any, including back to active
	if _, err := store.SetStatus(ctx, m.ID, "active"); err != nil {
		t.Errorf("reactivate: %v", err)
	}

	if _, err := store.SetStatus(ctx, m.ID, "paused"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("bad status: err = %v", err)
	}
	if _, err := store.SetStatus(ctx, primitive.NewObjectID(), "inactive"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id: err = %v", err)
	}
}

func TestStore_SetStatus_ReactivateConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)
	old := fixtures.CreateMembership(ctx, "u1@x.com", club.ID, models.MembershipCancelled)
	fixtures.CreateMembership(ctx, "u1@x.com", club.ID, models.MembershipActive)

	_, err := store.SetStatus(ctx, old.ID, models.MembershipActive)
	if !errors.Is(err, apperr.ErrAlreadyMember) {
		t.Errorf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestStore_HasActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)
	fixtures.CreateMembership(ctx, "u1@x.com", club.ID, models.MembershipActive)
	fixtures.CreateMembership(ctx, "u2@x.com", club.ID, models.MembershipInactive)

	// A legacy row with an ObjectID-encoded club id still counts.
	other := fixtures.CreateClub(ctx, "Go", "m@x.com", models.ClubApproved)
	_, _ = db.Collection("memberships").InsertOne(ctx, bson.M{
		"user_email": "u3@x.com", "club_id": other.ID, "status": models.MembershipActive,
	})

	tests := []struct {
		email string
		club  any
		want  bool
	}{
		{"u1@x.com", club.ID.Hex(), true},
		{"U1@X.COM", club.ID, true},
		{"u2@x.com", club.ID.Hex(), false},
		{"u9@x.com", club.ID.Hex(), false},
		{"u3@x.com", other.ID.Hex(), true},
	}
	for _, tt := range tests {
		got, err := store.HasActive(ctx, tt.email, tt.club)
		if err != nil {
			t.Fatalf("HasActive(%s) failed: %v", tt.email, err)
		}
		if got != tt.want {
			t.Errorf("HasActive(%s, %v) = %v, want %v", tt.email, tt.club, got, tt.want)
		}
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c1 := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)
	c2 := fixtures.CreateClub(ctx, "Go", "m@x.com", models.ClubApproved)
	fixtures.CreateMembership(ctx, "u1@x.com", c1.ID, models.MembershipActive)
	fixtures.CreateMembership(ctx, "u1@x.com", c2.ID, models.MembershipActive)
	fixtures.CreateMembership(ctx, "u2@x.com", c1.ID, models.MembershipActive)

	tests := []struct {
		name string
		f    membershipstore.Filter
		want int
	}{
		{"all", membershipstore.Filter{}, 3},
		{"by user", membershipstore.Filter{UserEmail: "u1@x.com"}, 2},
		{"by club", membershipstore.Filter{ClubID: c1.ID.Hex()}, 2},
		{"by both", membershipstore.Filter{UserEmail: "u2@x.com", ClubID: c1.ID.Hex()}, 1},
		{"no match", membershipstore.Filter{UserEmail: "nobody@x.com"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.f)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if got == nil {
				t.Fatal("List returned nil; want empty slice")
			}
			if len(got) != tt.want {
				t.Errorf("got %d, want %d", len(got), tt.want)
			}
		})
	}

	if _, err := store.List(ctx, membershipstore.Filter{ClubID: "xyz"}); !errors.Is(err, apperr.ErrInvalidIdentifier) {
		t.Errorf("bad club id: err = %v", err)
	}
}

func TestStore_CreateFromPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Chess", "m@x.com", models.ClubApproved)

	m, err := store.CreateFromPayment(ctx, "u1@x.com", club.ID.Hex(), "pi_1")
	if err != nil {
		t.Fatalf("CreateFromPayment failed: %v", err)
	}
	if m.PaymentID != "pi_1" {
		t.Errorf("PaymentID: got %q", m.PaymentID)
	}

	byPayment, err := store.GetByPaymentID(ctx, "pi_1")
	if err != nil || byPayment.ID != m.ID {
		t.Errorf("GetByPaymentID = %v, %v", byPayment.ID, err)
	}

	if _, err := store.CreateFromPayment(ctx, "u1@x.com", club.ID.Hex(), "pi_2"); !errors.Is(err, apperr.ErrAlreadyMember) {
		t.Errorf("second payment: err = %v, want ErrAlreadyMember", err)
	}
}
