package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/google/uuid"
)

// Memory is an in-process Gateway for development and tests. Sessions
// start unpaid; Pay marks one paid.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]Session
	// Fail, when set, is returned by every call.
	Fail error
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]Session)}
}

func (m *Memory) CreateCheckout(_ context.Context, req CheckoutRequest) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return Session{}, m.Fail
	}
	id := "cs_test_" + uuid.NewString()
	s := Session{
		ID:             id,
		URL:            "https://checkout.invalid/" + id,
		PaymentStatus:  "unpaid",
		AmountSubtotal: req.AmountCents,
		Currency:       req.Currency,
		CustomerEmail:  req.UserEmail,
		Metadata: map[string]string{
			MetaClubID:    req.ClubID,
			MetaClubName:  req.ClubName,
			MetaUserEmail: req.UserEmail,
		},
	}
	m.sessions[id] = s
	return s, nil
}

func (m *Memory) Retrieve(ctx context.Context, sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return Session{}, m.Fail
	}
	if err := ctx.Err(); err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperr.ErrGatewayUnavailable, err)
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, fmt.Errorf("checkout session %s: %w", sessionID, apperr.ErrNotFound)
	}
	return s, nil
}

// Put stores s as-is, replacing any session with the same id.
func (m *Memory) Put(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Pay marks a session paid under paymentIntentID.
func (m *Memory) Pay(sessionID, paymentIntentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return apperr.ErrNotFound
	}
	s.PaymentStatus = PaymentPaid
	s.PaymentIntentID = paymentIntentID
	m.sessions[sessionID] = s
	return nil
}
