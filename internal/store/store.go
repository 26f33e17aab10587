// Package store persists admin panel records in SQL backends (SQLite or
// Postgres). Records are schemaless JSON documents keyed by primary key,
// one table per registered model, so panels can serve arbitrary models
// without migrations.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a primary key does not exist.
var ErrNotFound = errors.New("record not found")

// Record is one stored object, decoded from its JSON document.
type Record = map[string]any

// Records is the narrow data access surface views see for one model.
type Records interface {
	Get(ctx context.Context, pk string) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Put(ctx context.Context, pk string, rec Record) error
	Delete(ctx context.Context, pk string) error
}
