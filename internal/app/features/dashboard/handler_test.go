package dashboard_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/features/dashboard"
	"github.com/dalemusser/clubsphere/internal/app/store/queries/summaries"
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	r := chi.NewRouter()
	dashboard.Register(r, dashboard.NewHandler(db, zap.NewNop()))
	return r, testutil.NewFixtures(t, db)
}

func TestAccess(t *testing.T) {
	router, _ := newRouter(t)

	admin := testutil.AdminUser()
	mgr := testutil.ManagerUser("mgr@example.com")
	member := testutil.MemberUser("m@example.com")

	tests := []struct {
		name   string
		target string
		user   *auth.Identity
		want   int
	}{
		{"admin summary anonymous", "/admin-summary", nil, http.StatusUnauthorized},
		{"admin summary member", "/admin-summary", &member, http.StatusForbidden},
		{"admin summary admin", "/admin-summary", &admin, http.StatusOK},
		{"manager summary own", "/club-manager-summary/mgr@example.com", &mgr, http.StatusOK},
		{"manager summary other", "/club-manager-summary/x@example.com", &mgr, http.StatusForbidden},
		{"manager summary member", "/club-manager-summary/m@example.com", &member, http.StatusForbidden},
		{"manager summary admin", "/club-manager-summary/mgr@example.com", &admin, http.StatusOK},
		{"member summary own", "/member-summary/m@example.com", &member, http.StatusOK},
		{"member summary other", "/member-summary/x@example.com", &member, http.StatusForbidden},
		{"my clubs own", "/my-clubs/M@Example.com", &member, http.StatusOK},
		{"my events anonymous", "/my-events/m@example.com", nil, http.StatusUnauthorized},
		{"total registrations own", "/total-event-registration/mgr@example.com", &mgr, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest("GET", tt.target)
			if tt.user != nil {
				req = auth.WithTestUser(req, *tt.user)
			}
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestServeManager_Example(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := fx.CreateClub(ctx, "Chess", "mgr@example.com", models.ClubApproved)
	fx.CreateMembership(ctx, "u1@example.com", club.ID, models.MembershipActive)
	e := fx.CreateEvent(ctx, club.ID, "Blitz", time.Now())
	fx.CreateRegistration(ctx, "u1@example.com", e)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/club-manager-summary/mgr@example.com", testutil.ManagerUser("mgr@example.com")))
	rec.AssertStatus(t, http.StatusOK)

	var s summaries.ManagerSummary
	rec.DecodeJSON(t, &s)
	if s.Members != 1 || s.Events != 1 {
		t.Errorf("summary: %+v, want members=1 events=1", s)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/my-events/u1@example.com", testutil.MemberUser("u1@example.com")))
	rec.AssertStatus(t, http.StatusOK)
	var rows []summaries.MyEvent
	rec.DecodeJSON(t, &rows)
	if len(rows) != 1 || rows[0].ClubName != "Chess" {
		t.Errorf("my events: %+v", rows)
	}
}

func TestServeTotalRegistrations_EmptyClubListed(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateClub(ctx, "Quiet Club", "mgr@example.com", models.ClubApproved)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/total-event-registration/mgr@example.com", testutil.ManagerUser("mgr@example.com")))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"clubName":"Quiet Club"`)
	rec.AssertContains(t, `"registrations":[]`)
}

func TestEmptyResultsAreArrays(t *testing.T) {
	router, _ := newRouter(t)
	user := testutil.MemberUser("nobody@example.com")

	for _, target := range []string{"/my-clubs/nobody@example.com", "/my-events/nobody@example.com"} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", target, user))
		rec.AssertStatus(t, http.StatusOK)
		if got := rec.Body.String(); got != "[]\n" {
			t.Errorf("%s: got %q, want []", target, got)
		}
	}
}
