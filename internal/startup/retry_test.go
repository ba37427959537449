package startup

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/butinmaker/butinmaker/internal/tracker"
)

func fastBackoff() Backoff {
	return Backoff{Initial: time.Millisecond, Max: 2 * time.Millisecond, Multiplier: 2, MaxAttempts: 3}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"tracker timeout", fmt.Errorf("meta: %w", tracker.ErrTimeout), true},
		{"rate limited", &tracker.Error{StatusCode: 429}, true},
		{"server error", &tracker.Error{StatusCode: 502}, true},
		{"unauthorized", &tracker.Error{StatusCode: 401}, false},
		{"dial", errors.New("dial tcp 1.2.3.4:443: connect: connection refused"), true},
		{"dns", errors.New("lookup la-cale.space: no such host"), true},
		{"canceled", context.Canceled, false},
		{"missing key", tracker.ErrAPIKeyMissing, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, "taxonomy", fastBackoff(), log, func(context.Context) error {
			calls++
			if calls < 3 {
				return &tracker.Error{StatusCode: 503}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, "taxonomy", fastBackoff(), log, func(context.Context) error {
			calls++
			return tracker.ErrAPIKeyMissing
		})
		assert.ErrorIs(t, err, tracker.ErrAPIKeyMissing)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, "taxonomy", fastBackoff(), log, func(context.Context) error {
			calls++
			return tracker.ErrTimeout
		})
		assert.ErrorIs(t, err, tracker.ErrTimeout)
		assert.Equal(t, 3, calls)
	})

	t.Run("context canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		b := fastBackoff()
		b.Initial = time.Hour
		err := Retry(cctx, "taxonomy", b, log, func(context.Context) error {
			return tracker.ErrTimeout
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBackoffCap(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, 10*time.Second, b.next(5*time.Second))
	assert.Equal(t, 5*time.Minute, b.next(4*time.Minute))
}
