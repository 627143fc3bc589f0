package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/clubsphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsNotSupported(t *testing.T) {
	standalone := mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"standalone server", standalone, true},
		{"standalone wrapped by a store", fmt.Errorf("insert payment: %w", standalone), true},
		{"legacy illegal operation", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"command not allowed in transaction", mongo.CommandError{Code: 263, Message: "Cannot run 'createIndexes' in a multi-document transaction"}, true},
		{"code 263 wrapped", fmt.Errorf("mark checkout reconciled: %w", mongo.CommandError{Code: 263}), true},
		{"duplicate key", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}, false},
		{"write conflict", mongo.CommandError{Code: 112, Message: "WriteConflict error", Labels: []string{"TransientTransactionError"}}, false},
		{"sessions not supported by server", errors.New("Sessions are NOT SUPPORTED by this deployment"), true},
		{"transaction on non replica set", errors.New("Transaction requires a Replica Set"), true},
		{"unrelated transaction failure", errors.New("transaction aborted"), false},
		{"context deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunner_NoClientRunsDirectly(t *testing.T) {
	r := New(nil, nil)
	if r.Supported() {
		t.Error("runner without a client reports transactions as supported")
	}

	calls := 0
	err := r.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Run() err = %v, calls = %d; want nil, 1", err, calls)
	}

	boom := errors.New("boom")
	if err := r.Run(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Run() err = %v, want %v", err, boom)
	}
}

func TestRunner_NilReceiver(t *testing.T) {
	var r *Runner
	called := false
	if err := r.Run(context.Background(), func(context.Context) error { called = true; return nil }); err != nil || !called {
		t.Errorf("nil runner: err = %v, called = %v", err, called)
	}
}

// On a standalone server the transactional attempt fails with code 20 and
// the write lands through the direct fallback; on a replica set it commits
// inside the transaction. Either way exactly one document is written.
func TestRunner_WithTransactionOrFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core, logs := observer.New(zap.WarnLevel)
	r := New(db.Client(), zap.New(core))
	coll := db.Collection("txn_writes")

	calls := 0
	write := func(id string) func(context.Context) error {
		return func(ctx context.Context) error {
			calls++
			_, err := coll.InsertOne(ctx, bson.M{"_id": id})
			return err
		}
	}

	if err := r.Run(ctx, write("first")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	switch {
	case r.Supported() && calls != 1:
		t.Errorf("transactional run called fn %d times, want 1", calls)
	case !r.Supported() && calls != 2:
		t.Errorf("fallback run called fn %d times, want 2", calls)
	case !r.Supported() && logs.Len() != 1:
		t.Errorf("fallback logged %d warnings, want 1", logs.Len())
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": "first"})
	if err != nil || n != 1 {
		t.Fatalf("count = %d, err = %v; want 1", n, err)
	}

	calls = 0
	if err := r.Run(ctx, write("second")); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("second run called fn %d times, want 1", calls)
	}
	if !r.Supported() && logs.Len() != 1 {
		t.Errorf("unsupported deployment warned %d times, want once", logs.Len())
	}
}
