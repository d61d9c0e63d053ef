package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vijayesvar/PLEDG-MF/pkg/circuitbreaker"
	"github.com/Vijayesvar/PLEDG-MF/pkg/retry"
)

// ResilientSlot retries transient failures of a remote slot and stops calling it
// once the circuit breaker opens. One exhausted retry sequence counts as one
// breaker failure.
type ResilientSlot struct {
	inner   Slot
	policy  retry.RetryPolicy
	breaker circuitbreaker.CircuitBreaker
}

func NewResilientSlot(inner Slot, policy retry.RetryPolicy, breaker circuitbreaker.CircuitBreaker) *ResilientSlot {
	if policy == nil {
		policy = retry.NewExponentialBackoff(nil)
	}
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(nil)
	}
	return &ResilientSlot{inner: inner, policy: policy, breaker: breaker}
}

func (s *ResilientSlot) Key() string { return s.inner.Key() }

// Breaker exposes the breaker for health reporting.
func (s *ResilientSlot) Breaker() circuitbreaker.CircuitBreaker { return s.breaker }

func (s *ResilientSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var (
		data    []byte
		present bool
	)
	err := s.call(ctx, func() error {
		var err error
		data, present, err = s.inner.Read(ctx)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return data, present, nil
}

func (s *ResilientSlot) Write(ctx context.Context, data []byte) error {
	return s.call(ctx, func() error {
		return s.inner.Write(ctx, data)
	})
}

func (s *ResilientSlot) Remove(ctx context.Context) error {
	return s.call(ctx, func() error {
		return s.inner.Remove(ctx)
	})
}

// Ping reports an open circuit as unavailable without touching the backend.
func (s *ResilientSlot) Ping(ctx context.Context) error {
	if s.breaker.State() == circuitbreaker.Open {
		return fmt.Errorf("%w: %s: %w", ErrSlotUnavailable, s.inner.Key(), circuitbreaker.ErrCircuitOpen)
	}
	return s.inner.Ping(ctx)
}

func (s *ResilientSlot) call(ctx context.Context, fn func() error) error {
	err := s.breaker.Call(func() error {
		return s.policy.Execute(ctx, fn)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return fmt.Errorf("%w: %s: %w", ErrSlotUnavailable, s.inner.Key(), err)
	}
	return err
}
