// Package timeouts provides centralized timeout values for handler operations.
//
// These timeouts are used with context.WithTimeout for database operations
// and outbound gateway calls. Values can be configured at startup using
// Configure(); until then the defaults below apply.
//
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, moderate writes
//   - Long: aggregations and writes touching multiple collections
//   - Gateway: calls to the payment gateway
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultMedium  = 10 * time.Second
	DefaultLong    = 30 * time.Second
	DefaultGateway = 10 * time.Second
)

var mu sync.RWMutex

var (
	ping    = DefaultPing
	short   = DefaultShort
	medium  = DefaultMedium
	long    = DefaultLong
	gateway = DefaultGateway
)

// Ping returns the timeout used by the health endpoint.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for summaries and multi-collection writes.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Gateway returns the bound on a single payment-gateway round trip.
func Gateway() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return gateway
}

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Medium  time.Duration
	Long    time.Duration
	Gateway time.Duration
}

// Configure sets custom timeout values. Call during startup before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Gateway > 0 {
		gateway = cfg.Gateway
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	gateway = DefaultGateway
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long, Gateway: gateway}
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline, rather than the caller, ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Gateway(), log, "retrieve checkout session")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
