// Package decorators wraps Store implementations with cross-cutting
// behavior (circuit breaking, metrics) without the concept modules
// knowing about either.
package decorators

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// CircuitBreakerConfig tunes when the breaker trips.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns the settings used for store access.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreakerStore shields the backing store from being hammered while
// it is failing. Only transport failures count against the breaker;
// NOT_FOUND and the other domain outcomes pass through as successes.
type CircuitBreakerStore[T store.Document] struct {
	inner   store.Store[T]
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// WithCircuitBreaker wraps a store with a circuit breaker.
func WithCircuitBreaker[T store.Document](inner store.Store[T], config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreakerStore[T] {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !pkgerrors.IsDatabase(err)
		},
	})

	return &CircuitBreakerStore[T]{inner: inner, breaker: breaker, logger: logger}
}

func (s *CircuitBreakerStore[T]) execute(op func() (any, error)) (any, error) {
	out, err := s.breaker.Execute(op)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, pkgerrors.NewDatabaseError("circuit", err)
	}
	return out, err
}

// Create implements store.Store.
func (s *CircuitBreakerStore[T]) Create(ctx context.Context, doc T) (string, error) {
	out, err := s.execute(func() (any, error) {
		return s.inner.Create(ctx, doc)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// FindOne implements store.Store.
func (s *CircuitBreakerStore[T]) FindOne(ctx context.Context, criteria store.Criteria) (T, error) {
	var zero T
	out, err := s.execute(func() (any, error) {
		return s.inner.FindOne(ctx, criteria)
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// FindMany implements store.Store.
func (s *CircuitBreakerStore[T]) FindMany(ctx context.Context, criteria store.Criteria) ([]T, error) {
	out, err := s.execute(func() (any, error) {
		return s.inner.FindMany(ctx, criteria)
	})
	if err != nil {
		return nil, err
	}
	return out.([]T), nil
}

// UpdateOne implements store.Store.
func (s *CircuitBreakerStore[T]) UpdateOne(ctx context.Context, criteria store.Criteria, patch store.Patch) (T, error) {
	var zero T
	out, err := s.execute(func() (any, error) {
		return s.inner.UpdateOne(ctx, criteria, patch)
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// DeleteOne implements store.Store.
func (s *CircuitBreakerStore[T]) DeleteOne(ctx context.Context, criteria store.Criteria) error {
	_, err := s.execute(func() (any, error) {
		return nil, s.inner.DeleteOne(ctx, criteria)
	})
	return err
}
