package payments_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/features/payments"
	checkoutstore "github.com/dalemusser/clubsphere/internal/app/store/checkoutsessions"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	paymentstore "github.com/dalemusser/clubsphere/internal/app/store/payments"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/app/system/keyedmutex"
	"github.com/dalemusser/clubsphere/internal/app/system/ratelimit"
	"github.com/dalemusser/clubsphere/internal/app/system/reconcile"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/clubsphere/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type env struct {
	router chi.Router
	fx     *testutil.Fixtures
	gw     *gateway.Memory
}

func setup(t *testing.T, limiter *ratelimit.Limiter) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	gw := gateway.NewMemory()
	members := membershipstore.New(db, keyedmutex.New())
	rec := reconcile.New(reconcile.Deps{
		Gateway:     gw,
		Payments:    paymentstore.New(db),
		Memberships: members,
		Checkouts:   checkoutstore.New(db),
		Log:         zap.NewNop(),
	})
	h := payments.NewHandler(db, payments.Deps{
		Gateway:    gw,
		Reconciler: rec,
		Members:    members,
		Limiter:    limiter,
	}, zap.NewNop())

	r := chi.NewRouter()
	payments.Register(r, h)
	return env{router: r, fx: testutil.NewFixtures(t, db), gw: gw}
}

type checkoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

func (e env) checkout(t *testing.T, club models.Club, email string) checkoutResponse {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/payment-checkout-session",
		map[string]any{"clubId": club.ID.Hex(), "clubName": club.ClubName, "membershipFee": club.MembershipFee},
		testutil.MemberUser(email)))
	rec.AssertStatus(t, http.StatusOK)
	var out checkoutResponse
	rec.DecodeJSON(t, &out)
	return out
}

func (e env) success(sessionID, email string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("POST", "/payment-success?session_id="+sessionID,
		testutil.MemberUser(email)))
	return rec
}

func TestHandleCheckout(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	paid := e.fx.CreateClubWithFee(ctx, "Chess", "mgr@example.com", models.ClubApproved, 25)
	free := e.fx.CreateClub(ctx, "Free", "mgr@example.com", models.ClubApproved)
	pending := e.fx.CreateClubWithFee(ctx, "Pending", "mgr@example.com", models.ClubPending, 10)
	joined := e.fx.CreateClubWithFee(ctx, "Joined", "mgr@example.com", models.ClubApproved, 10)
	e.fx.CreateMembership(ctx, "m@example.com", joined.ID, models.MembershipActive)
	member := testutil.MemberUser("m@example.com")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"paid club", map[string]any{"clubId": paid.ID.Hex(), "membershipFee": 25}, http.StatusOK},
		{"fee omitted uses club fee", map[string]any{"clubId": paid.ID.Hex()}, http.StatusOK},
		{"fee mismatch", map[string]any{"clubId": paid.ID.Hex(), "membershipFee": 1}, http.StatusBadRequest},
		{"free club", map[string]any{"clubId": free.ID.Hex()}, http.StatusForbidden},
		{"pending club", map[string]any{"clubId": pending.ID.Hex()}, http.StatusForbidden},
		{"already member", map[string]any{"clubId": joined.ID.Hex()}, http.StatusConflict},
		{"unknown club", map[string]any{"clubId": "64b7f0c2a1e4d3b2c1a09f8e"}, http.StatusNotFound},
		{"for someone else", map[string]any{"clubId": paid.ID.Hex(), "userEmail": "x@example.com"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/payment-checkout-session", tt.body, member))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleCheckout_RecordsOpenSession(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := e.fx.CreateClubWithFee(ctx, "Chess", "mgr@example.com", models.ClubApproved, 25)

	out := e.checkout(t, club, "m@example.com")
	if out.URL == "" || out.SessionID == "" {
		t.Fatalf("empty checkout response: %+v", out)
	}

	cs, err := checkoutstore.New(e.fx.DB()).GetBySessionID(ctx, out.SessionID)
	if err != nil {
		t.Fatalf("checkout record: %v", err)
	}
	if cs.Status != models.CheckoutOpen || cs.AmountCents != 2500 || cs.UserEmail != "m@example.com" {
		t.Errorf("unexpected record: %+v", cs)
	}
}

func TestHandleCheckout_GatewayDown(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := e.fx.CreateClubWithFee(ctx, "Chess", "mgr@example.com", models.ClubApproved, 25)
	e.gw.Fail = errors.New("connection refused")

	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest("POST", "/payment-checkout-session",
		map[string]any{"clubId": club.ID.Hex()}, testutil.MemberUser("m@example.com")))
	rec.AssertStatus(t, http.StatusBadGateway)
}

func TestHandleSuccess_Idempotent(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	club := e.fx.CreateClubWithFee(ctx, "Chess", "mgr@example.com", models.ClubApproved, 25)
	out := e.checkout(t, club, "m@example.com")

	rec := e.success(out.SessionID, "m@example.com")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"outcome":"not_paid"`)

	if err := e.gw.Pay(out.SessionID, "pi_1"); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	rec = e.success(out.SessionID, "m@example.com")
	rec.AssertStatus(t, http.StatusOK)
	var first struct {
		Outcome string          `json:"outcome"`
		Payment *models.Payment `json:"payment"`
	}
	rec.DecodeJSON(t, &first)
	if first.Outcome != string(reconcile.OutcomeCreated) {
		t.Fatalf("outcome = %q, want created", first.Outcome)
	}
	if first.Payment == nil || first.Payment.Amount != 25 {
		t.Errorf("payment = %+v, want amount 25", first.Payment)
	}

	for i := 0; i < 3; i++ {
		rec = e.success(out.SessionID, "m@example.com")
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"outcome":"duplicate"`)
	}

	db := e.fx.DB()
	if n, _ := db.Collection("payments").CountDocuments(ctx, bson.M{"transaction_id": "pi_1"}); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}
	if n, _ := db.Collection("memberships").CountDocuments(ctx, bson.M{"user_email": "m@example.com", "status": models.MembershipActive}); n != 1 {
		t.Errorf("active memberships = %d, want 1", n)
	}
	cs, err := checkoutstore.New(db).GetBySessionID(ctx, out.SessionID)
	if err != nil {
		t.Fatalf("checkout record: %v", err)
	}
	if cs.Status != models.CheckoutReconciled {
		t.Errorf("checkout status = %q, want reconciled", cs.Status)
	}
}

func TestHandleSuccess_Errors(t *testing.T) {
	e := setup(t, nil)
	e.gw.Put(gateway.Session{ID: "cs_nometa", PaymentStatus: gateway.PaymentPaid, PaymentIntentID: "pi_x",
		Metadata: map[string]string{}})

	tests := []struct {
		name      string
		sessionID string
		want      int
	}{
		{"missing session id", "", http.StatusBadRequest},
		{"unknown session", "cs_missing", http.StatusNotFound},
		{"no metadata", "cs_nometa", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.success(tt.sessionID, "m@example.com").AssertStatus(t, tt.want)
		})
	}
}

func TestHandleSuccess_RateLimited(t *testing.T) {
	limiter := ratelimit.New(1, time.Minute)
	defer limiter.Stop()
	e := setup(t, limiter)

	e.success("cs_missing", "m@example.com").AssertStatus(t, http.StatusNotFound)
	e.success("cs_missing", "m@example.com").AssertStatus(t, http.StatusTooManyRequests)
}

func TestServeList(t *testing.T) {
	e := setup(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	chess := e.fx.CreateClubWithFee(ctx, "Chess", "mgr@example.com", models.ClubApproved, 25)
	golf := e.fx.CreateClubWithFee(ctx, "Golf", "mgr@example.com", models.ClubApproved, 40)
	e.fx.CreatePayment(ctx, "pi_1", "a@example.com", chess, 25)
	e.fx.CreatePayment(ctx, "pi_2", "b@example.com", golf, 40)

	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/payments", testutil.MemberUser("a@example.com")))
	rec.AssertStatus(t, http.StatusForbidden)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"all", "/payments", 2},
		{"by club", "/payments?clubId=" + golf.ID.Hex(), 1},
		{"by email", "/payments?email=A@Example.com", 1},
		{"no match", "/payments?email=nobody@example.com", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			e.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", tt.target, testutil.AdminUser()))
			rec.AssertStatus(t, http.StatusOK)
			var list []models.Payment
			rec.DecodeJSON(t, &list)
			if list == nil || len(list) != tt.want {
				t.Errorf("got %d payments, want %d", len(list), tt.want)
			}
		})
	}
}
