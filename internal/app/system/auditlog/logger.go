// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/clubsphere/internal/app/store/audit"
	"github.com/dalemusser/clubsphere/internal/app/system/ratelimit"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for a category of audit events.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for admin and manager actions (role, club,
	// membership and event changes).
	Admin string
	// Payment controls logging for checkout and reconciliation events.
	Payment string
}

// Uniform returns a Config sending every category to the same destination.
func Uniform(setting string) Config {
	return Config{Admin: setting, Payment: setting}
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor_email", event.ActorEmail))
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.ClubID != "" {
		fields = append(fields, zap.String("club_id", event.ClubID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryPayment:
		setting = l.config.Payment
	}
	if setting == "" {
		setting = All
	}

	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Admin Events ---

// UserRoleChanged logs an admin changing a user's role.
func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actor string, u models.User) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventUserRoleChanged,
		ActorEmail: actor,
		Subject:    u.Email,
		Success:    true,
		Details:    map[string]string{"role": u.Role},
	}))
}

// ClubCreated logs a manager submitting a club for approval.
func (l *Logger) ClubCreated(ctx context.Context, r *http.Request, actor string, c models.Club) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventClubCreated,
		ActorEmail: actor,
		ClubID:     c.ID.Hex(),
		Success:    true,
		Details:    map[string]string{"club_name": c.ClubName},
	}))
}

// ClubUpdated logs an edit to a club's details.
func (l *Logger) ClubUpdated(ctx context.Context, r *http.Request, actor string, c models.Club) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventClubUpdated,
		ActorEmail: actor,
		ClubID:     c.ID.Hex(),
		Success:    true,
	}))
}

// ClubStatusChanged logs an approval decision.
func (l *Logger) ClubStatusChanged(ctx context.Context, r *http.Request, actor string, c models.Club) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventClubStatusChanged,
		ActorEmail: actor,
		ClubID:     c.ID.Hex(),
		Success:    true,
		Details:    map[string]string{"status": c.Status},
	}))
}

// MembershipStatusChanged logs a manager changing a membership.
func (l *Logger) MembershipStatusChanged(ctx context.Context, r *http.Request, actor string, m models.Membership) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventMembershipStatusChanged,
		ActorEmail: actor,
		Subject:    m.UserEmail,
		ClubID:     m.ClubID,
		Success:    true,
		Details: map[string]string{
			"membership_id": m.ID.Hex(),
			"status":        m.Status,
		},
	}))
}

// EventChanged logs creation, update or deletion of a club event.
// eventType is one of the audit.EventEvent* constants.
func (l *Logger) EventChanged(ctx context.Context, r *http.Request, actor, eventType string, e models.Event) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		ActorEmail: actor,
		ClubID:     e.ClubID.Hex(),
		Success:    true,
		Details: map[string]string{
			"event_id": e.ID.Hex(),
			"title":    e.Title,
		},
	}))
}

// --- Payment Events ---

// CheckoutOpened logs a checkout session handed to a user.
func (l *Logger) CheckoutOpened(ctx context.Context, r *http.Request, cs models.CheckoutSession) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryPayment,
		EventType:  audit.EventCheckoutOpened,
		ActorEmail: cs.UserEmail,
		ClubID:     cs.ClubID,
		Success:    true,
		Details:    map[string]string{"session_id": cs.SessionID},
	}))
}

// CheckoutExpired logs the sweeper giving up on a session.
func (l *Logger) CheckoutExpired(ctx context.Context, cs models.CheckoutSession) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryPayment,
		EventType:     audit.EventCheckoutExpired,
		Subject:       cs.UserEmail,
		ClubID:        cs.ClubID,
		Success:       false,
		FailureReason: "never paid",
		Details:       map[string]string{"session_id": cs.SessionID},
	})
}

// Reconciliation describes one reconciliation outcome.
type Reconciliation struct {
	EventType     string
	SessionID     string
	TransactionID string
	UserEmail     string
	ClubID        string
	FailureReason string
}

// PaymentReconciled logs the outcome of reconciling a checkout session.
// Outcomes other than a fresh or duplicate payment are logged as failures.
func (l *Logger) PaymentReconciled(ctx context.Context, rec Reconciliation) {
	ok := rec.EventType == audit.EventPaymentReconciled || rec.EventType == audit.EventPaymentDuplicate
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryPayment,
		EventType:     rec.EventType,
		Subject:       rec.UserEmail,
		ClubID:        rec.ClubID,
		Success:       ok,
		FailureReason: rec.FailureReason,
		Details: map[string]string{
			"session_id":     rec.SessionID,
			"transaction_id": rec.TransactionID,
		},
	})
}
