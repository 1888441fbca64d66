package decorators

import (
	"context"
	"time"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
	"mosaic-backend/pkg/observability"
)

// MetricsStore records a counter and latency observation per store call.
type MetricsStore[T store.Document] struct {
	inner      store.Store[T]
	collection string
	metrics    *observability.Metrics
}

// WithMetrics wraps a store with Prometheus instrumentation.
func WithMetrics[T store.Document](inner store.Store[T], collection string, metrics *observability.Metrics) *MetricsStore[T] {
	return &MetricsStore[T]{inner: inner, collection: collection, metrics: metrics}
}

func (s *MetricsStore[T]) observe(operation string, started time.Time, err error) {
	result := "ok"
	switch {
	case err == nil:
	case pkgerrors.IsNotFound(err):
		result = "not_found"
	default:
		result = "error"
	}
	s.metrics.ObserveStoreOperation(s.collection, operation, result, time.Since(started))
}

// Create implements store.Store.
func (s *MetricsStore[T]) Create(ctx context.Context, doc T) (string, error) {
	started := time.Now()
	id, err := s.inner.Create(ctx, doc)
	s.observe("create", started, err)
	return id, err
}

// FindOne implements store.Store.
func (s *MetricsStore[T]) FindOne(ctx context.Context, criteria store.Criteria) (T, error) {
	started := time.Now()
	doc, err := s.inner.FindOne(ctx, criteria)
	s.observe("find_one", started, err)
	return doc, err
}

// FindMany implements store.Store.
func (s *MetricsStore[T]) FindMany(ctx context.Context, criteria store.Criteria) ([]T, error) {
	started := time.Now()
	docs, err := s.inner.FindMany(ctx, criteria)
	s.observe("find_many", started, err)
	return docs, err
}

// UpdateOne implements store.Store.
func (s *MetricsStore[T]) UpdateOne(ctx context.Context, criteria store.Criteria, patch store.Patch) (T, error) {
	started := time.Now()
	doc, err := s.inner.UpdateOne(ctx, criteria, patch)
	s.observe("update_one", started, err)
	return doc, err
}

// DeleteOne implements store.Store.
func (s *MetricsStore[T]) DeleteOne(ctx context.Context, criteria store.Criteria) error {
	started := time.Now()
	err := s.inner.DeleteOne(ctx, criteria)
	s.observe("delete_one", started, err)
	return err
}
