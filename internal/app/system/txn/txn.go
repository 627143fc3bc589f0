// Package txn runs a unit of work inside a MongoDB transaction when the
// deployment supports one, and directly otherwise.
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions are unavailable
// (standalone server, or a session option the topology rejects).
var unsupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation
	51:  true, // legacy illegal operation
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if unsupportedCodes[ce.Code] {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "illegal operation") {
		return true
	}
	if strings.Contains(msg, "transaction") &&
		(strings.Contains(msg, "replica set") || strings.Contains(msg, "session")) {
		return true
	}
	return strings.Contains(msg, "session") && strings.Contains(msg, "not supported")
}

// Runner executes functions transactionally against one client.
type Runner struct {
	client      *mongo.Client
	log         *zap.Logger
	unsupported atomic.Bool
}

// New returns a Runner. A nil client yields a Runner that always runs
// fn directly, which is what unit tests with in-memory stores want.
func New(client *mongo.Client, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{client: client, log: log}
}

// Run invokes fn inside a transaction. When the server reports that
// transactions are not supported, fn is run directly and every later
// call skips the attempt. fn must be safe to run more than once: the
// driver retries it on transient transaction errors.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.client == nil || r.unsupported.Load() {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.markUnsupported(err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.markUnsupported(err)
		return fn(ctx)
	}
	return err
}

// Supported reports whether the last attempt ran inside a transaction.
func (r *Runner) Supported() bool {
	return r != nil && r.client != nil && !r.unsupported.Load()
}

func (r *Runner) markUnsupported(err error) {
	if r.unsupported.CompareAndSwap(false, true) {
		r.log.Warn("mongo transactions not supported; writes will run without a transaction",
			zap.Error(err))
	}
}
