package generation

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryConfig configures the retry decorator.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// BaseDelay is the first backoff duration; it doubles each retry.
	BaseDelay time.Duration
	// MaxJitter caps the random jitter added to each backoff.
	MaxJitter time.Duration

	// Sleep waits for the backoff duration. Overridable in tests; the
	// default honors context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
	// Jitter draws a random duration in [0, max). Overridable in tests.
	Jitter func(max time.Duration) time.Duration
}

// DefaultRetryConfig returns the production retry policy: two retries,
// one second base delay, up to half a second of jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		MaxJitter:  500 * time.Millisecond,
	}
}

func (c RetryConfig) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (c RetryConfig) jitter() time.Duration {
	if c.Jitter != nil {
		return c.Jitter(c.MaxJitter)
	}
	if c.MaxJitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(c.MaxJitter)))
}

// Retry executes fn, retrying transiently-classified failures with
// exponential backoff plus jitter. Non-transient failures and exhausted
// retries propagate the operation's own error unchanged, so callers can
// still distinguish the original cause.
func Retry[T any](ctx context.Context, cfg RetryConfig, log *zap.Logger, operation string, fn func(context.Context) (T, error)) (T, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info("retry succeeded",
					zap.String("operation", operation),
					zap.Int("attempt", attempt+1))
			}
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == cfg.MaxRetries {
			return zero, err
		}

		delay := time.Duration(float64(cfg.BaseDelay)*math.Pow(2, float64(attempt))) + cfg.jitter()
		log.Warn("generation service busy, backing off",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", cfg.MaxRetries+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := cfg.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
