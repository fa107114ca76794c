// Package store abstracts the hierarchical document database behind a narrow
// get/set/update/delete/query surface so services can be tested against an
// in-memory implementation.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("store: document not found")
	ErrInvalidPath = errors.New("store: invalid document path")
)

// Document is a raw document snapshot. Field decoding stays with the caller;
// the store gives no schema or ordering guarantees.
type Document struct {
	ID   string
	Data map[string]interface{}
}

type Store interface {
	// Get returns ErrNotFound when no document exists at p.
	Get(ctx context.Context, p DocPath) (*Document, error)
	// Set creates or fully replaces the document at p.
	Set(ctx context.Context, p DocPath, data map[string]interface{}) error
	// Update merges the given fields into an existing document and returns
	// ErrNotFound when it does not exist.
	Update(ctx context.Context, p DocPath, updates map[string]interface{}) error
	// Delete removes the document at p. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, p DocPath) error
	// Add creates a document with a generated id and returns that id.
	Add(ctx context.Context, c CollectionPath, data map[string]interface{}) (string, error)
	// Documents returns every document directly inside c, in no particular
	// order.
	Documents(ctx context.Context, c CollectionPath) ([]Document, error)
}

// StringField reads a string field, empty when absent or mistyped.
func StringField(d *Document, key string) string {
	if d == nil {
		return ""
	}
	s, _ := d.Data[key].(string)
	return s
}

// TimeField reads a timestamp field, zero when absent or mistyped.
func TimeField(d *Document, key string) time.Time {
	if d == nil {
		return time.Time{}
	}
	t, _ := d.Data[key].(time.Time)
	return t
}
