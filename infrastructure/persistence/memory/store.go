// Package memory provides a mutex-guarded in-memory Store implementation.
// Tests and local development use it to get fully isolated store instances
// per test instead of shared singletons.
package memory

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Store keeps one collection of records in memory. All operations are
// atomic under the store mutex, so a conditional UpdateOne observes the
// same compare-and-set semantics as the networked store.
type Store[T store.Document] struct {
	mu         sync.RWMutex
	collection string
	docs       map[string]map[string]any
	logger     *zap.Logger
	now        func() time.Time
}

// NewStore creates an empty in-memory collection.
func NewStore[T store.Document](collection string, logger *zap.Logger) *Store[T] {
	return &Store[T]{
		collection: collection,
		docs:       make(map[string]map[string]any),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source. Tests use it to make
// createdAt ordering deterministic.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	s.now = now
	return s
}

// Create stores a new record under a freshly allocated id.
func (s *Store[T]) Create(ctx context.Context, doc T) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	store.Prepare(doc, id, s.now())

	fields, err := store.Fields(doc)
	if err != nil {
		return "", pkgerrors.NewDatabaseError("create", err)
	}
	s.docs[id] = fields

	s.logger.Debug("record created",
		zap.String("collection", s.collection),
		zap.String("id", id),
	)
	return id, nil
}

// FindOne returns the first record matching the criteria.
func (s *Store[T]) FindOne(ctx context.Context, criteria store.Criteria) (T, error) {
	var zero T

	// match returns the live field maps, so decoding must happen before
	// the lock is released or a concurrent UpdateOne can mutate them
	// mid-marshal.
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.match(criteria)
	if len(matches) == 0 {
		return zero, pkgerrors.NewNotFoundError("record")
	}
	return decode[T](matches[0])
}

// FindMany returns every record matching the criteria in sort order.
func (s *Store[T]) FindMany(ctx context.Context, criteria store.Criteria) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.match(criteria)
	if criteria.Limit > 0 && len(matches) > criteria.Limit {
		matches = matches[:criteria.Limit]
	}

	out := make([]T, 0, len(matches))
	for _, fields := range matches {
		doc, err := decode[T](fields)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// UpdateOne merges the patch into the first matching record and bumps
// updatedAt. The filter is re-evaluated under the store mutex, so a record
// that no longer matches yields NOT_FOUND rather than a silent overwrite.
func (s *Store[T]) UpdateOne(ctx context.Context, criteria store.Criteria, patch store.Patch) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := s.match(criteria)
	if len(matches) == 0 {
		return zero, pkgerrors.NewNotFoundError("record")
	}

	fields := matches[0]
	for k, v := range patch {
		fields[k] = store.NormalizeValue(v)
	}
	fields["updatedAt"] = store.NormalizeValue(s.now())

	id, _ := fields["id"].(string)
	s.docs[id] = fields

	s.logger.Debug("record updated",
		zap.String("collection", s.collection),
		zap.String("id", id),
	)
	return decode[T](fields)
}

// DeleteOne removes the first matching record.
func (s *Store[T]) DeleteOne(ctx context.Context, criteria store.Criteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := s.match(criteria)
	if len(matches) == 0 {
		return pkgerrors.NewNotFoundError("record")
	}

	id, _ := matches[0]["id"].(string)
	delete(s.docs, id)

	s.logger.Debug("record deleted",
		zap.String("collection", s.collection),
		zap.String("id", id),
	)
	return nil
}

// match collects matching records ordered by the criteria sort, falling
// back to createdAt so results are deterministic. Callers hold the lock.
func (s *Store[T]) match(criteria store.Criteria) []map[string]any {
	var matches []map[string]any
	for _, fields := range s.docs {
		if store.Matches(fields, criteria.Filters) {
			matches = append(matches, fields)
		}
	}

	order := append([]store.SortOption{}, criteria.Sort...)
	order = append(order,
		store.SortOption{Field: "createdAt", Order: store.SortAscending},
		store.SortOption{Field: "id", Order: store.SortAscending},
	)
	sort.SliceStable(matches, func(i, j int) bool {
		return store.Less(matches[i], matches[j], order)
	})
	return matches
}

func decode[T store.Document](fields map[string]any) (T, error) {
	var zero T

	raw, err := json.Marshal(fields)
	if err != nil {
		return zero, pkgerrors.NewDatabaseError("decode", err)
	}

	elem := reflect.TypeOf(zero).Elem()
	doc := reflect.New(elem).Interface().(T)
	if err := json.Unmarshal(raw, doc); err != nil {
		return zero, pkgerrors.NewDatabaseError("decode", err)
	}
	return doc, nil
}
