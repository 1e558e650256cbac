package backend

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerClient wraps a Client with a circuit breaker. While the circuit is
// open, calls fail fast with a "circuit_open" TransportError instead of
// hammering a backend that is already struggling.
type BreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker
}

// BreakerSettings tunes the circuit breaker. Zero values fall back to
// defaults: trip after 5 consecutive failures, half-open after 30 seconds.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

func NewBreakerClient(inner Client, settings BreakerSettings) *BreakerClient {
	if settings.Name == "" {
		settings.Name = "backend"
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    settings.Name,
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
	})

	return &BreakerClient{inner: inner, breaker: cb}
}

func (b *BreakerClient) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	result, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Invoke(ctx, prompt, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", NewTransportError(CategoryCircuitOpen, "circuit breaker open", err)
		}
		return "", err
	}
	text, _ := result.(string)
	return text, nil
}

// State exposes the current breaker state for reporting.
func (b *BreakerClient) State() gobreaker.State {
	return b.breaker.State()
}
