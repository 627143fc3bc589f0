// Package reconcile turns a paid checkout session into exactly one payment
// and one active membership, however many times it is asked to.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/store/audit"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/app/system/idnorm"
	"github.com/dalemusser/clubsphere/internal/app/system/keyedmutex"
	"github.com/dalemusser/clubsphere/internal/app/system/normalize"
	"github.com/dalemusser/clubsphere/internal/app/system/timeouts"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.uber.org/zap"
)

// Outcome classifies a reconciliation.
type Outcome string

const (
	// OutcomeCreated: this call wrote the payment (and usually the membership).
	OutcomeCreated Outcome = "created"
	// OutcomeDuplicate: the payment was already recorded; nothing new written.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeAlreadyMember: the user already held an active membership
	// from another payment or a free join; nothing written.
	OutcomeAlreadyMember Outcome = "already_member"
	// OutcomeNotPaid: the session is not paid yet; nothing written.
	OutcomeNotPaid Outcome = "not_paid"
)

// Result is what Reconcile reports back.
type Result struct {
	Outcome       Outcome            `json:"outcome"`
	SessionID     string             `json:"sessionId"`
	TransactionID string             `json:"transactionId,omitempty"`
	Payment       *models.Payment    `json:"payment,omitempty"`
	Membership    *models.Membership `json:"membership,omitempty"`
}

// Payments is the payment ledger.
type Payments interface {
	Insert(ctx context.Context, p models.Payment) (models.Payment, error)
	GetByTransactionID(ctx context.Context, txID string) (models.Payment, error)
}

// Memberships is the membership ledger.
type Memberships interface {
	GetActive(ctx context.Context, userEmail string, rawClubID any) (models.Membership, error)
	GetByPaymentID(ctx context.Context, paymentID string) (models.Membership, error)
	CreateFromPayment(ctx context.Context, userEmail, clubHex, paymentID string) (models.Membership, error)
}

// Checkouts tracks the local checkout session records.
type Checkouts interface {
	MarkStatus(ctx context.Context, sessionID, status string) error
}

// Notifier is told about freshly activated paid memberships.
type Notifier interface {
	MembershipActivated(ctx context.Context, p models.Payment) error
}

// TxRunner runs fn as one unit of work where the store supports it.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps wires a Reconciler. Checkouts, Tx, Audit and Notifier are optional.
type Deps struct {
	Gateway     gateway.Gateway
	Payments    Payments
	Memberships Memberships
	Checkouts   Checkouts
	Tx          TxRunner
	Locks       *keyedmutex.Map
	Audit       *auditlog.Logger
	Notifier    Notifier
	Log         *zap.Logger
	// Timeout bounds the gateway lookup; zero uses timeouts.Gateway().
	Timeout time.Duration
	// Currency is used when the gateway does not report one.
	Currency string
}

type Reconciler struct {
	d Deps
}

func New(d Deps) *Reconciler {
	if d.Locks == nil {
		d.Locks = keyedmutex.New()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Currency == "" {
		d.Currency = "usd"
	}
	return &Reconciler{d: d}
}

// Reconcile brings local state in line with the gateway's record of
// sessionID. It is safe to call any number of times, concurrently.
func (r *Reconciler) Reconcile(ctx context.Context, sessionID string) (Result, error) {
	if sessionID == "" {
		return Result{}, fmt.Errorf("session_id: %w", apperr.ErrMissingField)
	}
	log := r.d.Log.With(zap.String("session_id", sessionID))

	s, err := r.retrieve(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	// Unpaid sessions report not_paid whatever their metadata holds.
	res := Result{SessionID: sessionID, TransactionID: s.PaymentIntentID}
	if s.PaymentStatus != gateway.PaymentPaid {
		res.Outcome = OutcomeNotPaid
		return res, nil
	}

	email, clubHex, clubName, err := metadata(s)
	if err != nil {
		log.Warn("rejecting checkout session", zap.Error(err))
		r.d.Audit.PaymentReconciled(ctx, auditlog.Reconciliation{
			EventType:     audit.EventPaymentRejected,
			SessionID:     sessionID,
			TransactionID: s.PaymentIntentID,
			UserEmail:     s.Email(),
			FailureReason: err.Error(),
		})
		return Result{}, err
	}
	if s.PaymentIntentID == "" {
		err := fmt.Errorf("paid session has no payment intent: %w", apperr.ErrInvalidMetadata)
		log.Error("rejecting checkout session", zap.Error(err))
		return Result{}, err
	}
	log = log.With(zap.String("transaction_id", s.PaymentIntentID))

	unlockTx := r.d.Locks.Lock("payment:" + s.PaymentIntentID)
	defer unlockTx()
	unlockPair := r.d.Locks.Lock(membershipstore.PairKey(email, clubHex))
	defer unlockPair()

	newPayment := models.Payment{
		TransactionID: s.PaymentIntentID,
		SessionID:     sessionID,
		Amount:        float64(s.AmountSubtotal) / 100,
		Currency:      s.Currency,
		CustomerEmail: email,
		ClubID:        clubHex,
		ClubName:      clubName,
		PaymentStatus: models.PaymentPaid,
		PaidAt:        time.Now().UTC(),
	}
	if newPayment.Currency == "" {
		newPayment.Currency = r.d.Currency
	}

	res, err = r.apply(ctx, log, res, newPayment)
	if err != nil {
		return Result{}, err
	}
	r.after(ctx, log, res)
	return res, nil
}

func (r *Reconciler) retrieve(ctx context.Context, sessionID string) (gateway.Session, error) {
	timeout := r.d.Timeout
	if timeout <= 0 {
		timeout = timeouts.Gateway()
	}
	gctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s, err := r.d.Gateway.Retrieve(gctx, sessionID)
	if err == nil {
		return s, nil
	}
	switch {
	case errors.Is(err, apperr.ErrGatewayUnavailable):
		return gateway.Session{}, err
	case gctx.Err() != nil:
		return gateway.Session{}, fmt.Errorf("%w: %v", apperr.ErrGatewayUnavailable, err)
	case apperr.As(err) != nil:
		return gateway.Session{}, err
	}
	return gateway.Session{}, fmt.Errorf("%w: %v", apperr.ErrGatewayUnavailable, err)
}

// metadata extracts the buyer and club the session was opened for.
func metadata(s gateway.Session) (email, clubHex, clubName string, err error) {
	clubHex, idErr := idnorm.Hex(s.Metadata[gateway.MetaClubID])
	clubName = s.Metadata[gateway.MetaClubName]
	email = normalize.Email(s.Email())

	switch {
	case idErr != nil:
		return "", "", "", fmt.Errorf("clubId %q: %w", s.Metadata[gateway.MetaClubID], apperr.ErrInvalidMetadata)
	case clubName == "":
		return "", "", "", fmt.Errorf("clubName: %w", apperr.ErrInvalidMetadata)
	case email == "" || !validate.SimpleEmailValid(email):
		return "", "", "", fmt.Errorf("customer email %q: %w", email, apperr.ErrInvalidMetadata)
	}
	return email, clubHex, clubName, nil
}

// apply runs with the transaction and pair locks held.
func (r *Reconciler) apply(ctx context.Context, log *zap.Logger, res Result, p models.Payment) (Result, error) {
	existing, err := r.d.Payments.GetByTransactionID(ctx, p.TransactionID)
	switch {
	case err == nil:
		return r.duplicate(ctx, log, res, existing)
	case !errors.Is(err, apperr.ErrNotFound):
		return Result{}, storeErr("look up payment", err)
	}

	active, err := r.d.Memberships.GetActive(ctx, p.CustomerEmail, p.ClubID)
	switch {
	case err == nil && active.PaymentID == p.TransactionID:
		// Membership written by an earlier run that never got to the payment.
		saved, err := r.d.Payments.Insert(ctx, p)
		if errors.Is(err, apperr.ErrDuplicateTransaction) {
			return r.reread(ctx, log, res)
		}
		if err != nil {
			return Result{}, storeErr("insert payment", err)
		}
		log.Info("payment restored for existing membership")
		res.Outcome = OutcomeCreated
		res.Payment, res.Membership = &saved, &active
		return res, nil
	case err == nil:
		log.Warn("paid for a club the user already belongs to; refund is an operator decision",
			zap.String("user_email", p.CustomerEmail),
			zap.String("club_id", p.ClubID),
			zap.String("membership_id", active.ID.Hex()),
			zap.String("membership_payment_id", active.PaymentID))
		res.Outcome = OutcomeAlreadyMember
		res.Membership = &active
		return res, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return Result{}, storeErr("look up membership", err)
	}

	var saved models.Payment
	var m models.Membership
	run := func(ctx context.Context) error {
		var err error
		if saved, err = r.d.Payments.Insert(ctx, p); err != nil {
			return err
		}
		m, err = r.d.Memberships.CreateFromPayment(ctx, p.CustomerEmail, p.ClubID, p.TransactionID)
		return err
	}
	if r.d.Tx != nil {
		err = r.d.Tx.Run(ctx, run)
	} else {
		err = run(ctx)
	}

	switch {
	case err == nil:
		log.Info("payment reconciled", zap.String("membership_id", m.ID.Hex()))
		res.Outcome = OutcomeCreated
		res.Payment, res.Membership = &saved, &m
		return res, nil
	case errors.Is(err, apperr.ErrDuplicateTransaction):
		// Another replica got there first.
		return r.reread(ctx, log, res)
	case errors.Is(err, apperr.ErrAlreadyMember):
		active, gerr := r.d.Memberships.GetActive(ctx, p.CustomerEmail, p.ClubID)
		if gerr != nil {
			return Result{}, storeErr("look up membership", gerr)
		}
		log.Warn("membership activated concurrently by another writer",
			zap.String("membership_id", active.ID.Hex()))
		res.Outcome = OutcomeAlreadyMember
		res.Membership = &active
		return res, nil
	}
	return Result{}, storeErr("record payment", err)
}

// duplicate handles a transaction that already has a payment, restoring
// the membership if an earlier run stopped between the two writes.
func (r *Reconciler) duplicate(ctx context.Context, log *zap.Logger, res Result, p models.Payment) (Result, error) {
	res.Outcome = OutcomeDuplicate
	res.Payment = &p

	m, err := r.d.Memberships.GetByPaymentID(ctx, p.TransactionID)
	if err == nil {
		res.Membership = &m
		return res, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return Result{}, storeErr("look up membership", err)
	}

	m, err = r.d.Memberships.GetActive(ctx, p.CustomerEmail, p.ClubID)
	if err == nil {
		res.Membership = &m
		return res, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return Result{}, storeErr("look up membership", err)
	}

	m, err = r.d.Memberships.CreateFromPayment(ctx, p.CustomerEmail, p.ClubID, p.TransactionID)
	if errors.Is(err, apperr.ErrAlreadyMember) {
		m, err = r.d.Memberships.GetActive(ctx, p.CustomerEmail, p.ClubID)
	}
	if err != nil {
		return Result{}, storeErr("restore membership", err)
	}
	log.Info("membership restored for existing payment", zap.String("membership_id", m.ID.Hex()))
	res.Membership = &m
	return res, nil
}

func (r *Reconciler) reread(ctx context.Context, log *zap.Logger, res Result) (Result, error) {
	p, err := r.d.Payments.GetByTransactionID(ctx, res.TransactionID)
	if err != nil {
		return Result{}, storeErr("look up payment", err)
	}
	return r.duplicate(ctx, log, res, p)
}

// after performs the bookkeeping that must never fail a reconciliation.
func (r *Reconciler) after(ctx context.Context, log *zap.Logger, res Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()

	if r.d.Checkouts != nil {
		if err := r.d.Checkouts.MarkStatus(ctx, res.SessionID, models.CheckoutReconciled); err != nil {
			log.Warn("mark checkout reconciled", zap.Error(err))
		}
	}

	rec := auditlog.Reconciliation{
		SessionID:     res.SessionID,
		TransactionID: res.TransactionID,
	}
	switch res.Outcome {
	case OutcomeCreated:
		rec.EventType = audit.EventPaymentReconciled
	case OutcomeDuplicate:
		rec.EventType = audit.EventPaymentDuplicate
	case OutcomeAlreadyMember:
		rec.EventType = audit.EventPaymentAlreadyMember
		rec.FailureReason = "already an active member"
	}
	if res.Payment != nil {
		rec.UserEmail, rec.ClubID = res.Payment.CustomerEmail, res.Payment.ClubID
	} else if res.Membership != nil {
		rec.UserEmail, rec.ClubID = res.Membership.UserEmail, res.Membership.ClubID
	}
	r.d.Audit.PaymentReconciled(ctx, rec)

	if res.Outcome == OutcomeCreated && r.d.Notifier != nil && res.Payment != nil {
		if err := r.d.Notifier.MembershipActivated(ctx, *res.Payment); err != nil {
			log.Warn("send membership receipt", zap.Error(err))
		}
	}
}

// storeErr reports a store failure as retryable unless it is already
// classified.
func storeErr(op string, err error) error {
	if apperr.As(err) != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, apperr.ErrStoreUnavailable, err)
}
