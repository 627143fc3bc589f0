package timeouts

import (
	"context"
	"testing"
	"time"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Gateway: 3 * time.Second})

	if got := Gateway(); got != 3*time.Second {
		t.Errorf("Gateway() = %v, want 3s", got)
	}
	if got := Short(); got != DefaultShort {
		t.Errorf("Short() = %v, want default %v", got, DefaultShort)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Minute, Long: time.Hour})
	Reset()

	want := Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong, Gateway: DefaultGateway}
	if got := Current(); got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
}

func TestWithTimeout_NilLogger(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, nil, "test")
	<-ctx.Done()
	cancel()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
