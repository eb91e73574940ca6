package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})
	if Short() != 7*time.Second {
		t.Errorf("Short() = %s, want 7s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium() = %s, want default %s", Medium(), DefaultMedium)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer Reset()

	t.Setenv("TIMEOUT_BATCH", "2m")
	t.Setenv("TIMEOUT_PING", "not-a-duration")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv() = %d, want 1", n)
	}
	if Batch() != 2*time.Minute {
		t.Errorf("Batch() = %s, want 2m", Batch())
	}
	if Ping() != DefaultPing {
		t.Errorf("Ping() = %s, want default", Ping())
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test op")
	<-ctx.Done()
	cancel()

	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
