// internal/app/bootstrap/services.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/clubsphere/internal/app/store/audit"
	checkoutstore "github.com/dalemusser/clubsphere/internal/app/store/checkoutsessions"
	membershipstore "github.com/dalemusser/clubsphere/internal/app/store/memberships"
	paymentstore "github.com/dalemusser/clubsphere/internal/app/store/payments"
	"github.com/dalemusser/clubsphere/internal/app/system/auditlog"
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/app/system/gateway"
	"github.com/dalemusser/clubsphere/internal/app/system/keyedmutex"
	"github.com/dalemusser/clubsphere/internal/app/system/mailer"
	"github.com/dalemusser/clubsphere/internal/app/system/ratelimit"
	"github.com/dalemusser/clubsphere/internal/app/system/reconcile"
	"github.com/dalemusser/clubsphere/internal/app/system/tasks"
	"github.com/dalemusser/clubsphere/internal/app/system/txn"
	"go.uber.org/zap"
)

// Success callbacks allowed per client address per minute.
const successCallsPerMinute = 20

// services are the long-lived collaborators shared by the HTTP handlers
// and the background sweep. The membership ledger in particular must be
// one instance so free joins and reconciliations serialize on the same
// (email, club) locks.
type services struct {
	ready bool

	Verifier   auth.Verifier
	Gateway    gateway.Gateway
	Members    *membershipstore.Store
	Reconciler *reconcile.Reconciler
	Checkouts  *checkoutstore.Store
	Audit      *auditlog.Logger
	Limiter    *ratelimit.Limiter
	Scheduler  *tasks.Scheduler
}

func (s *services) init(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if s.ready {
		return nil
	}
	db := deps.MongoDatabase

	verifier, err := newVerifier(ctx, appCfg)
	if err != nil {
		return err
	}

	var gw gateway.Gateway
	if appCfg.StripeSecretKey != "" {
		gw = gateway.NewStripe(gateway.StripeConfig{
			SecretKey:  appCfg.StripeSecretKey,
			SiteDomain: appCfg.SiteDomain,
		})
	} else {
		logger.Warn("stripe_secret_key not set; using the in-memory payment gateway")
		gw = gateway.NewMemory()
	}

	var sender mailer.Sender = mailer.Nop{}
	var mailLog *zap.Logger
	if appCfg.SendGridAPIKey != "" {
		sender = mailer.NewSendGrid(mailer.Config{
			APIKey:   appCfg.SendGridAPIKey,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		})
		mailLog = logger
	}

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Uniform(appCfg.AuditLog))
	members := membershipstore.New(db, keyedmutex.New())
	checkouts := checkoutstore.New(db)

	s.Verifier = verifier
	s.Gateway = gw
	s.Members = members
	s.Checkouts = checkouts
	s.Audit = auditLog
	s.Limiter = ratelimit.New(successCallsPerMinute, time.Minute)
	s.Reconciler = reconcile.New(reconcile.Deps{
		Gateway:     gw,
		Payments:    paymentstore.New(db),
		Memberships: members,
		Checkouts:   checkouts,
		Tx:          txn.New(deps.MongoClient, logger),
		Audit:       auditLog,
		Notifier: mailer.Receipts{
			Sender:       sender,
			SiteName:     appCfg.MailFromName,
			DashboardURL: appCfg.SiteDomain + "/dashboard",
			Log:          mailLog,
		},
		Log:      logger,
		Timeout:  appCfg.GatewayTimeout,
		Currency: appCfg.PaymentCurrency,
	})
	s.ready = true
	return nil
}

func newVerifier(ctx context.Context, appCfg AppConfig) (auth.Verifier, error) {
	switch appCfg.AuthMode {
	case AuthJWT:
		v, err := auth.NewJWTVerifier(appCfg.JWTSecret, 0)
		if err != nil {
			return nil, fmt.Errorf("jwt verifier: %w", err)
		}
		return v, nil
	case AuthFirebase:
		v, err := auth.NewFirebaseVerifier(ctx, auth.FirebaseConfig{
			ProjectID:       appCfg.FirebaseProjectID,
			CredentialsFile: appCfg.FirebaseCredentialsFile,
			CredentialsJSON: appCfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("firebase verifier: %w", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown auth_mode %q", appCfg.AuthMode)
}

// startSweep schedules the reconciliation sweep. A blank schedule leaves
// it off.
func (s *services) startSweep(appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.SweepSchedule == "" {
		logger.Info("reconciliation sweep disabled")
		return nil
	}
	sweep := &tasks.ReconcileSweep{
		Sessions:   s.Checkouts,
		Reconciler: s.Reconciler,
		Audit:      s.Audit,
		Log:        logger.Named("sweep"),
		MinAge:     appCfg.SweepMinAge,
		MaxAge:     appCfg.SweepMaxAge,
	}
	sched := tasks.NewScheduler(logger)
	if err := sched.Add(sweep.Job(appCfg.SweepSchedule)); err != nil {
		return err
	}
	sched.Start()
	s.Scheduler = sched
	logger.Info("reconciliation sweep scheduled", zap.String("schedule", appCfg.SweepSchedule))
	return nil
}
