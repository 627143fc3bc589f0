// internal/app/system/tasks/sweep.go
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/system/apperr"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"github.com/dalemusser/clubsphere/internal/app/system/reconcile"
	"github.com/dalemusser/clubsphere/internal/domain/models"
	"go.uber.org/zap"
)

// sweepBatch caps how many sessions one run looks at.
const sweepBatch = 100

// OpenSessions is the part of the checkout session store the sweep needs.
type OpenSessions interface {
	ListOpen(ctx context.Context, cutoff time.Time, limit int64) ([]models.CheckoutSession, error)
	MarkSwept(ctx context.Context, sessionID string, at time.Time) error
	MarkStatus(ctx context.Context, sessionID, status string) error
}

// Reconciler reconciles one checkout session.
type Reconciler interface {
	Reconcile(ctx context.Context, sessionID string) (reconcile.Result, error)
}

// ReconcileSweep re-runs reconciliation for checkout sessions that are
// still open, catching payments whose success redirect never arrived.
type ReconcileSweep struct {
	Sessions   OpenSessions
	Reconciler Reconciler
	Audit      *auditlog.Logger
	Log        *zap.Logger
	// MinAge skips sessions the buyer may still be completing.
	MinAge time.Duration
	// MaxAge is how long an unpaid session stays open before it is expired.
	MaxAge time.Duration
	// Now is time.Now unless a test overrides it.
	Now func() time.Time
}

// SweepStats counts what one sweep did.
type SweepStats struct {
	Checked    int
	Reconciled int
	Pending    int
	Expired    int
	Failed     int
	Retryable  int
}

// Sweep processes one batch of open sessions, least recently swept first.
// Per-session errors are logged and counted; only a failure to list
// sessions is returned.
func (s *ReconcileSweep) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	now := s.now()

	open, err := s.Sessions.ListOpen(ctx, now.Add(-s.MinAge), sweepBatch)
	if err != nil {
		return stats, err
	}

	for _, cs := range open {
		if ctx.Err() != nil {
			break
		}
		stats.Checked++
		log := s.log().With(zap.String("session_id", cs.SessionID))

		if err := s.Sessions.MarkSwept(ctx, cs.SessionID, now); err != nil {
			log.Warn("could not count sweep attempt", zap.Error(err))
		}

		res, err := s.Reconciler.Reconcile(ctx, cs.SessionID)
		switch {
		case err == nil && res.Outcome != reconcile.OutcomeNotPaid:
			stats.Reconciled++
			log.Info("sweep reconciled checkout session", zap.String("outcome", string(res.Outcome)))

		case err == nil:
			if s.MaxAge > 0 && cs.CreatedAt.Before(now.Add(-s.MaxAge)) {
				if err := s.Sessions.MarkStatus(ctx, cs.SessionID, models.CheckoutExpired); err != nil {
					log.Warn("could not expire checkout session", zap.Error(err))
					continue
				}
				s.Audit.CheckoutExpired(ctx, cs)
				stats.Expired++
				continue
			}
			stats.Pending++

		case errors.Is(err, apperr.ErrInvalidMetadata), errors.Is(err, apperr.ErrNotFound):
			// Nothing a later retry can fix.
			if err := s.Sessions.MarkStatus(ctx, cs.SessionID, models.CheckoutFailed); err != nil {
				log.Warn("could not mark checkout session failed", zap.Error(err))
				continue
			}
			stats.Failed++
			log.Warn("checkout session cannot be reconciled", zap.Error(err))

		default:
			stats.Retryable++
			log.Warn("sweep reconciliation failed; will retry", zap.Error(err))
		}
	}

	if stats.Checked > 0 {
		s.log().Info("reconcile sweep finished",
			zap.Int("checked", stats.Checked),
			zap.Int("reconciled", stats.Reconciled),
			zap.Int("pending", stats.Pending),
			zap.Int("expired", stats.Expired),
			zap.Int("failed", stats.Failed),
			zap.Int("retryable", stats.Retryable))
	}
	return stats, nil
}

// Job returns the sweep as a scheduled Job.
func (s *ReconcileSweep) Job(schedule string) Job {
	return Job{
		Name:     "reconcile-sweep",
		Schedule: schedule,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := s.Sweep(ctx)
			return err
		},
	}
}

func (s *ReconcileSweep) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ReconcileSweep) log() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
