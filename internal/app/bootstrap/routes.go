// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	auditfeature "github.com/dalemusser/clubsphere/internal/app/features/auditlog"
	clubsfeature "github.com/dalemusser/clubsphere/internal/app/features/clubs"
	dashboardfeature "github.com/dalemusser/clubsphere/internal/app/features/dashboard"
	eventsfeature "github.com/dalemusser/clubsphere/internal/app/features/events"
	healthfeature "github.com/dalemusser/clubsphere/internal/app/features/health"
	homefeature "github.com/dalemusser/clubsphere/internal/app/features/home"
	membershipsfeature "github.com/dalemusser/clubsphere/internal/app/features/memberships"
	paymentsfeature "github.com/dalemusser/clubsphere/internal/app/features/payments"
	registrationsfeature "github.com/dalemusser/clubsphere/internal/app/features/registrations"
	userinfofeature "github.com/dalemusser/clubsphere/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/clubsphere/internal/app/features/users"
	userstore "github.com/dalemusser/clubsphere/internal/app/store/users"
	"github.com/dalemusser/clubsphere/internal/app/system/auth"
	"github.com/dalemusser/clubsphere/internal/app/system/limits"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every route speaks JSON; identity comes
// from the bearer token verified by the global auth middleware, and each
// feature applies its own role guards.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.services
	if svc == nil {
		return nil, fmt.Errorf("bootstrap: services not initialized; was ConnectDB run?")
	}
	if err := svc.init(context.Background(), appCfg, deps, logger); err != nil {
		return nil, err
	}
	db := deps.MongoDatabase

	authMW := &auth.Middleware{
		Verifier: svc.Verifier,
		Roles:    userstore.New(db),
		Log:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestSize(limits.MaxJSONBody))
	r.Use(authMW.Authenticate)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	usersHandler := usersfeature.NewHandler(db, svc.Audit, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	clubsHandler := clubsfeature.NewHandler(db, svc.Audit, logger)
	r.Mount("/clubs", clubsfeature.Routes(clubsHandler))

	membershipsHandler := membershipsfeature.NewHandler(db, svc.Members, svc.Audit, logger)
	r.Mount("/memberships", membershipsfeature.Routes(membershipsHandler))

	eventsHandler := eventsfeature.NewHandler(db, svc.Audit, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	registrationsHandler := registrationsfeature.NewHandler(db, svc.Members, logger)
	r.Mount("/eventRegistrations", registrationsfeature.Routes(registrationsHandler))

	auditHandler := auditfeature.NewHandler(db, logger)
	r.Mount("/audit", auditfeature.Routes(auditHandler))

	// Top-level paths
	paymentsHandler := paymentsfeature.NewHandler(db, paymentsfeature.Deps{
		Gateway:    svc.Gateway,
		Reconciler: svc.Reconciler,
		Members:    svc.Members,
		AuditLog:   svc.Audit,
		Limiter:    svc.Limiter,
		Currency:   appCfg.PaymentCurrency,
	}, logger)
	paymentsfeature.Register(r, paymentsHandler)

	dashboardHandler := dashboardfeature.NewHandler(db, logger)
	dashboardfeature.Register(r, dashboardHandler)

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	return r, nil
}
