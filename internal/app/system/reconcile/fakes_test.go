package reconcile_test

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePayments struct {
	mu   sync.Mutex
	byTx map[string]models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{byTx: map[string]models.Payment{}}
}

func (f *fakePayments) Insert(_ context.Context, p models.Payment) (models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byTx[p.TransactionID]; ok {
		return models.Payment{}, apperr.ErrDuplicateTransaction
	}
	p.ID = primitive.NewObjectID()
	f.byTx[p.TransactionID] = p
	return p, nil
}

func (f *fakePayments) GetByTransactionID(_ context.Context, txID string) (models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTx[txID]
	if !ok {
		return models.Payment{}, apperr.ErrNotFound
	}
	return p, nil
}

func (f *fakePayments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byTx)
}

type fakeMemberships struct {
	mu   sync.Mutex
	rows []models.Membership
	// failNext, when set, fails the next CreateFromPayment.
	failNext error
}

func (f *fakeMemberships) GetActive(_ context.Context, email string, rawClubID any) (models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.UserEmail == email && m.ClubID == rawClubID && m.Status == models.MembershipActive {
			return m, nil
		}
	}
	return models.Membership{}, apperr.ErrNotFound
}

func (f *fakeMemberships) GetByPaymentID(_ context.Context, paymentID string) (models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.PaymentID == paymentID {
			return m, nil
		}
	}
	return models.Membership{}, apperr.ErrNotFound
}

func (f *fakeMemberships) CreateFromPayment(_ context.Context, email, clubHex, paymentID string) (models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		return models.Membership{}, err
	}
	for _, m := range f.rows {
		if m.UserEmail == email && m.ClubID == clubHex && m.Status == models.MembershipActive {
			return models.Membership{}, apperr.ErrAlreadyMember
		}
	}
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserEmail: email,
		ClubID:    clubHex,
		Status:    models.MembershipActive,
		PaymentID: paymentID,
	}
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *fakeMemberships) add(m models.Membership) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	f.rows = append(f.rows, m)
}

func (f *fakeMemberships) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.rows {
		if m.Status == models.MembershipActive {
			n++
		}
	}
	return n
}

type fakeCheckouts struct {
	mu     sync.Mutex
	status map[string]string
}

func (f *fakeCheckouts) MarkStatus(_ context.Context, sessionID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == nil {
		f.status = map[string]string{}
	}
	f.status[sessionID] = status
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.Payment
	err  error
}

func (f *fakeNotifier) MembershipActivated(_ context.Context, p models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// slowGateway blocks until the caller gives up.
type slowGateway struct{}

func (slowGateway) CreateCheckout(context.Context, gateway.CheckoutRequest) (gateway.Session, error) {
	return gateway.Session{}, errors.New("not used")
}

func (slowGateway) Retrieve(ctx context.Context, _ string) (gateway.Session, error) {
	<-ctx.Done()
	return gateway.Session{}, ctx.Err()
}
