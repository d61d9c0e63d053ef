package retry

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

type RetryPolicy interface {
	Execute(ctx context.Context, fn func() error) error
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	// Retryable decides whether a failed attempt is worth repeating.
	// Nil falls back to IsTransient.
	Retryable func(error) bool
}

// DefaultConfig returns conservative defaults for backoff retries.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	}
}

func (c *Config) retryable(err error) bool {
	if c.Retryable != nil {
		return c.Retryable(err)
	}
	return IsTransient(err)
}

// ExponentialBackoff retries with exponential delay between attempts.
type ExponentialBackoff struct {
	config *Config
}

// NewExponentialBackoff applies defaults when config is nil.
func NewExponentialBackoff(config *Config) *ExponentialBackoff {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &ExponentialBackoff{config: config}
}

func (eb *ExponentialBackoff) Execute(ctx context.Context, fn func() error) error {
	return run(ctx, eb.config, fn, eb.calculateDelay)
}

func (eb *ExponentialBackoff) calculateDelay(attempt int) time.Duration {
	delay := float64(eb.config.BaseDelay) * math.Pow(eb.config.Multiplier, float64(attempt-1))
	if eb.config.MaxDelay > 0 && delay > float64(eb.config.MaxDelay) {
		delay = float64(eb.config.MaxDelay)
	}

	return time.Duration(delay)
}

// FixedDelay retries with a constant delay between attempts.
type FixedDelay struct {
	config *Config
}

// NewFixedDelay applies defaults when config is nil.
func NewFixedDelay(config *Config) *FixedDelay {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &FixedDelay{config: config}
}

func (fd *FixedDelay) Execute(ctx context.Context, fn func() error) error {
	return run(ctx, fd.config, fn, func(int) time.Duration { return fd.config.BaseDelay })
}

func run(ctx context.Context, cfg *Config, fn func() error, delayFor func(attempt int) time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if !cfg.retryable(err) {
			return err
		}

		timer := time.NewTimer(delayFor(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	if cfg.MaxAttempts == 1 {
		return lastErr
	}

	return &MaxRetriesExceededError{
		LastError:   lastErr,
		MaxAttempts: cfg.MaxAttempts,
	}
}

// IsTransient matches error text produced by flaky networks and overloaded backends.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"database is locked",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// MaxRetriesExceededError indicates that all retry attempts were exhausted.
type MaxRetriesExceededError struct {
	LastError   error
	MaxAttempts int
}

func (e *MaxRetriesExceededError) Error() string {
	if e.LastError != nil {
		return "max retries exceeded: " + e.LastError.Error()
	}
	return "max retries exceeded"
}

func (e *MaxRetriesExceededError) Unwrap() error {
	return e.LastError
}

// IsMaxRetriesExceeded reports whether err is a MaxRetriesExceededError.
func IsMaxRetriesExceeded(err error) bool {
	var maxRetriesErr *MaxRetriesExceededError
	return errors.As(err, &maxRetriesErr)
}
