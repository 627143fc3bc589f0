package memberships_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/dalemusser/clubsphere/internal/app/features/memberships"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/app/system/keyedmutex"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := memberships.NewHandler(db, membershipstore.New(db, keyedmutex.New()), nil, zap.NewNop())
	return memberships.Routes(h), testutil.NewFixtures(t, db)
}

func TestHandleJoin(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	free := fx.CreateClub(ctx, "Free", "mgr@example.com", models.ClubApproved)
	paid := fx.CreateClubWithFee(ctx, "Paid", "mgr@example.com", models.ClubApproved, 25)
	pending := fx.CreateClub(ctx, "Pending", "mgr@example.com", models.ClubPending)
	member := testutil.MemberUser("m@example.com")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"free join", map[string]string{"clubId": free.ID.Hex()}, http.StatusCreated},
		{"second join conflicts", map[string]string{"clubId": free.ID.Hex()}, http.StatusConflict},
		{"paid club needs checkout", map[string]string{"clubId": paid.ID.Hex()}, http.StatusForbidden},
		{"pending club", map[string]string{"clubId": pending.ID.Hex()}, http.StatusForbidden},
		{"unknown club", map[string]string{"clubId": "64b7f0c2a1e4d3b2c1a09f8e"}, http.StatusNotFound},
		{"bad club id", map[string]string{"clubId": "zzz"}, http.StatusBadRequest},
		{"for someone else", map[string]string{"clubId": free.ID.Hex(), "userEmail": "x@example.com"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/", tt.body, member))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleJoin_ConcurrentYieldsOneActive(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := fx.CreateClub(ctx, "Free", "mgr@example.com", models.ClubApproved)
	member := testutil.MemberUser("m@example.com")

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/", map[string]string{"clubId": club.ID.Hex()}, member))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Errorf("created: got %d, want 1", created)
	}

	n64, err := fx.DB().Collection("memberships").CountDocuments(ctx, bson.M{"status": models.MembershipActive})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n64 != 1 {
		t.Errorf("active memberships: got %d, want 1", n64)
	}
}

func TestServeList_Scoping(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := fx.CreateClub(ctx, "Chess", "mgr@example.com", models.ClubApproved)
	other := fx.CreateClub(ctx, "Hiking", "other@example.com", models.ClubApproved)
	fx.CreateMembership(ctx, "a@example.com", club.ID, models.MembershipActive)
	fx.CreateMembership(ctx, "b@example.com", club.ID, models.MembershipActive)
	fx.CreateMembership(ctx, "a@example.com", other.ID, models.MembershipActive)

	tests := []struct {
		name   string
		target string
		user   auth.Identity
		status int
		count  int
	}{
		{"member defaults to self", "/", testutil.MemberUser("a@example.com"), http.StatusOK, 2},
		{"member reading another", "/?userEmail=b@example.com", testutil.MemberUser("a@example.com"), http.StatusForbidden, 0},
		{"manager lists own club", "/?clubId=" + club.ID.Hex(), testutil.ManagerUser("mgr@example.com"), http.StatusOK, 2},
		{"manager of other club sees only self", "/?clubId=" + other.ID.Hex(), testutil.ManagerUser("mgr@example.com"), http.StatusOK, 0},
		{"admin sees all", "/", testutil.AdminUser(), http.StatusOK, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", tt.target, tt.user))
			rec.AssertStatus(t, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var list []models.Membership
			rec.DecodeJSON(t, &list)
			if len(list) != tt.count {
				t.Errorf("got %d memberships, want %d", len(list), tt.count)
			}
		})
	}
}

func TestHandleSetStatus(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := fx.CreateClub(ctx, "Chess", "mgr@example.com", models.ClubApproved)
	m := fx.CreateMembership(ctx, "a@example.com", club.ID, models.MembershipActive)
	path := "/" + m.ID.Hex() + "/status"

	tests := []struct {
		name   string
		user   auth.Identity
		status string
		want   int
	}{
		{"member cannot", testutil.MemberUser("a@example.com"), models.MembershipCancelled, http.StatusForbidden},
		{"other manager cannot", testutil.ManagerUser("other@example.com"), models.MembershipCancelled, http.StatusForbidden},
		{"invalid status", testutil.ManagerUser("mgr@example.com"), "paused", http.StatusBadRequest},
		{"owning manager", testutil.ManagerUser("mgr@example.com"), models.MembershipInactive, http.StatusOK},
		{"admin", testutil.AdminUser(), models.MembershipActive, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("PATCH", path, map[string]string{"status": tt.status}, tt.user))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleSetStatus_ReactivateConflicts(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := fx.CreateClub(ctx, "Chess", "mgr@example.com", models.ClubApproved)
	old := fx.CreateMembership(ctx, "a@example.com", club.ID, models.MembershipCancelled)
	fx.CreateMembership(ctx, "a@example.com", club.ID, models.MembershipActive)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("PATCH", "/"+old.ID.Hex()+"/status",
		map[string]string{"status": models.MembershipActive}, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusConflict)
}
