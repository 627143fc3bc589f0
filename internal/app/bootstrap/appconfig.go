// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging and CORS. Everything specific to ClubSphere lives here and is
// passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // full connection string; built from the cluster fields when those are set
	MongoUser        string // Atlas user (with MongoCluster)
	MongoPass        string // Atlas password (with MongoCluster)
	MongoCluster     string // Atlas host, e.g. cluster0.abcde.mongodb.net
	MongoAppName     string // appName reported to the cluster
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Payments
	StripeSecretKey string        // blank selects the in-memory gateway (development only)
	PaymentCurrency string        // ISO currency for every checkout, lower case
	SiteDomain      string        // public origin of the web client, for checkout redirects
	GatewayTimeout  time.Duration // bound on every gateway call

	// Authentication
	AuthMode                string // "firebase" or "jwt"
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	FirebaseProjectID       string
	JWTSecret               string // auth_mode=jwt only

	// Receipt email
	SendGridAPIKey string // blank disables receipts
	MailFrom       string
	MailFromName   string

	// Reconciliation sweep
	SweepSchedule string        // cron spec; blank disables the sweep
	SweepMinAge   time.Duration // leave sessions younger than this to the success redirect
	SweepMaxAge   time.Duration // expire unpaid sessions older than this

	// Audit logging: all, db, log or off
	AuditLog string

	// Promoted to admin (created if needed) on every start.
	AdminEmail string
}
