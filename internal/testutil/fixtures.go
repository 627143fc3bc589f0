package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Admin", email, models.RoleAdmin)
}

// CreateManager creates a test club manager.
func (f *Fixtures) CreateManager(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Manager", email, models.RoleClubManager)
}

// CreateMember creates a test member.
func (f *Fixtures) CreateMember(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Member", email, models.RoleMember)
}

// CreateClub creates a club with the given manager and status.
func (f *Fixtures) CreateClub(ctx context.Context, name, managerEmail, status string) models.Club {
	f.t.Helper()
	return f.CreateClubWithFee(ctx, name, managerEmail, status, 0)
}

// CreateClubWithFee creates a club that charges fee for membership.
func (f *Fixtures) CreateClubWithFee(ctx context.Context, name, managerEmail, status string, fee float64) models.Club {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Club{
		ID:            primitive.NewObjectID(),
		ManagerEmail:  managerEmail,
		ClubName:      name,
		ClubNameCI:    text.Fold(name),
		Category:      "General",
		Location:      "Test Hall",
		MembershipFee: fee,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, "clubs", c)
	return c
}

// CreateMembership creates a membership with the given status. The club
// id is stored in its string encoding, as the ledger does.
func (f *Fixtures) CreateMembership(ctx context.Context, userEmail string, clubID primitive.ObjectID, status string) models.Membership {
	f.t.Helper()
	now := time.Now().UTC()
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserEmail: userEmail,
		ClubID:    clubID.Hex(),
		Status:    status,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	f.insert(ctx, "memberships", m)
	return m
}

// CreateEvent creates an event on date. The club id is stored as an
// ObjectID, as the events collection does.
func (f *Fixtures) CreateEvent(ctx context.Context, clubID primitive.ObjectID, title string, date time.Time) models.Event {
	f.t.Helper()
	now := time.Now().UTC()
	e := models.Event{
		ID:        primitive.NewObjectID(),
		ClubID:    clubID,
		Title:     title,
		Location:  "Test Hall",
		Date:      date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "events", e)
	return e
}

// CreateRegistration registers userEmail for event.
func (f *Fixtures) CreateRegistration(ctx context.Context, userEmail string, event models.Event) models.EventRegistration {
	f.t.Helper()
	r := models.EventRegistration{
		ID:           primitive.NewObjectID(),
		UserEmail:    userEmail,
		EventID:      event.ID.Hex(),
		ClubID:       event.ClubID.Hex(),
		Status:       models.RegistrationRegistered,
		RegisteredAt: time.Now().UTC(),
	}
	f.insert(ctx, "eventRegistrations", r)
	return r
}

// CreatePayment records a paid payment for (email, club).
func (f *Fixtures) CreatePayment(ctx context.Context, transactionID, email string, club models.Club, amount float64) models.Payment {
	f.t.Helper()
	p := models.Payment{
		ID:            primitive.NewObjectID(),
		TransactionID: transactionID,
		Amount:        amount,
		Currency:      "usd",
		CustomerEmail: email,
		ClubID:        club.ID.Hex(),
		ClubName:      club.ClubName,
		PaymentStatus: models.PaymentPaid,
		PaidAt:        time.Now().UTC(),
	}
	f.insert(ctx, "payments", p)
	return p
}
