// Package store defines the generic per-entity-type collection every
// concept module persists through. Implementations are database-agnostic;
// concept modules never see the backing engine.
package store

import (
	"context"
	"time"
)

// Document is implemented by every record kept in a Store. Records embed
// Base, which provides the identity and timestamp fields the store manages.
type Document interface {
	DocumentID() string
	assignID(id string)
	stamp(createdAt, updatedAt time.Time)
}

// Prepare assigns a freshly allocated id and creation timestamps to a
// record before it is persisted. Store implementations call this; concept
// code never does.
func Prepare(doc Document, id string, now time.Time) {
	doc.assignID(id)
	doc.stamp(now, now)
}

// Base carries the store-managed fields shared by all records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentID returns the record's opaque unique id.
func (b *Base) DocumentID() string { return b.ID }

func (b *Base) assignID(id string) { b.ID = id }

func (b *Base) stamp(createdAt, updatedAt time.Time) {
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
}

// Patch holds the fields an update merges into a record. Unset fields are
// never clobbered.
type Patch map[string]any

// Op is a filter comparison operator.
type Op string

const (
	OpEqual              Op = "eq"
	OpNotEqual           Op = "ne"
	OpGreaterThan        Op = "gt"
	OpGreaterThanOrEqual Op = "gte"
	OpLessThan           Op = "lt"
	OpLessThanOrEqual    Op = "lte"
	OpIn                 Op = "in"
)

// Filter is one query condition. Field names follow the record's json tags.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// SortOrder is the direction of a sort field.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// SortOption orders query results by one field.
type SortOption struct {
	Field string
	Order SortOrder
}

// Criteria describes a query: filter conditions, ordering and an optional
// limit. An empty Criteria matches every record in the collection.
type Criteria struct {
	Filters []Filter
	Sort    []SortOption
	Limit   int
}

// Where is a convenience constructor for a single equality criteria.
func Where(field string, value any) Criteria {
	return Criteria{Filters: []Filter{{Field: field, Op: OpEqual, Value: value}}}
}

// And appends an equality condition to the criteria.
func (c Criteria) And(field string, value any) Criteria {
	c.Filters = append(c.Filters, Filter{Field: field, Op: OpEqual, Value: value})
	return c
}

// OrderBy appends a sort field to the criteria.
func (c Criteria) OrderBy(field string, order SortOrder) Criteria {
	c.Sort = append(c.Sort, SortOption{Field: field, Order: order})
	return c
}

// ByID builds criteria matching a record's id.
func ByID(id string) Criteria { return Where("id", id) }

// Store is the generic keyed collection over one record type.
//
// Create allocates a globally unique id, sets createdAt=updatedAt=now and
// returns the id. FindOne and UpdateOne return a NOT_FOUND error when no
// record matches; UpdateOne merges the patch and bumps updatedAt only while
// the record still matches every filter condition, which is the
// compare-and-set primitive concept modules build on. Transport failures
// surface as DATABASE errors, never as NOT_FOUND.
type Store[T Document] interface {
	Create(ctx context.Context, doc T) (string, error)
	FindOne(ctx context.Context, criteria Criteria) (T, error)
	FindMany(ctx context.Context, criteria Criteria) ([]T, error)
	UpdateOne(ctx context.Context, criteria Criteria, patch Patch) (T, error)
	DeleteOne(ctx context.Context, criteria Criteria) error
}
