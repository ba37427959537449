// Package startup retries the network-bound warm-up steps run when the
// service boots.
package startup

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/tracker"
)

// Backoff controls how often and how long a step is retried.
type Backoff struct {
	Initial     time.Duration
	Max         time.Duration
	Multiplier  float64
	MaxAttempts int
}

// DefaultBackoff waits 5s, 10s, 20s, 40s between five attempts.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial:     5 * time.Second,
		Max:         5 * time.Minute,
		Multiplier:  2,
		MaxAttempts: 5,
	}
}

func (b Backoff) next(d time.Duration) time.Duration {
	n := time.Duration(float64(d) * b.Multiplier)
	if n > b.Max {
		return b.Max
	}
	return n
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"no route to host",
	"i/o timeout",
	"temporary failure in name resolution",
}

// IsTransient reports whether err is worth retrying: network failures,
// tracker timeouts, rate limiting and tracker 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, tracker.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var te *tracker.Error
	if errors.As(err, &te) {
		return te.StatusCode == 429 || te.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Retry runs fn until it succeeds, fails with a permanent error, runs out
// of attempts or ctx is done. It returns the last error.
func Retry(ctx context.Context, name string, b Backoff, logger zerolog.Logger, fn func(context.Context) error) error {
	delay := b.Initial
	var err error

	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			if attempt > 1 {
				logger.Info().Str("step", name).Int("attempt", attempt).Msg("Startup step succeeded after retry")
			}
			return nil
		}
		if !IsTransient(err) {
			logger.Error().Err(err).Str("step", name).Msg("Startup step failed")
			return err
		}
		if attempt == b.MaxAttempts {
			break
		}

		logger.Warn().Err(err).
			Str("step", name).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Startup step failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = b.next(delay)
	}

	logger.Error().Err(err).Str("step", name).Int("attempts", b.MaxAttempts).Msg("Startup step gave up")
	return err
}
