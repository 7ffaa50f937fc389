// Package docstore abstracts the document database the engagement engine
// writes to. The engine only relies on two guarantees: a batch either fully
// applies or not at all, and numeric increments are commutative under
// concurrent application (never a read-then-overwrite of the field).
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/craftfolio/backend/errs"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("docstore: document not found")

// Document is a stored document together with its full path. The final path
// segment is the document id.
type Document struct {
	Path string
	Data map[string]any
}

// ID returns the last segment of the document's path.
func (d Document) ID() string {
	segs := strings.Split(d.Path, "/")
	return segs[len(segs)-1]
}

// EventType describes a change observed by Watch.
type EventType int

const (
	EventAdded EventType = iota
	EventModified
	EventRemoved
)

// Event is a single change in a watched collection.
type Event struct {
	Type EventType
	Doc  Document
}

// Batch stages writes that commit atomically. Staged operations are applied
// in order within the batch; Increment creates the field (and the document)
// when absent.
type Batch interface {
	Set(path string, data map[string]any)
	Delete(path string)
	Increment(path, field string, delta int64)
	Commit(ctx context.Context) error
}

// Store is the document store adapter. Paths alternate collection and
// document segments ("articles/a1", "articles/a1/likes/u9").
type Store interface {
	Get(ctx context.Context, path string) (map[string]any, error)
	Exists(ctx context.Context, path string) (bool, error)
	Set(ctx context.Context, path string, data map[string]any) error
	Delete(ctx context.Context, path string) error

	// List returns every document directly inside the collection path.
	List(ctx context.Context, collection string) ([]Document, error)

	Batch() Batch

	// Watch emits an event per change in the collection until ctx ends.
	Watch(ctx context.Context, collection string) (<-chan Event, error)
}

// ValidDocPath reports whether path names a document (an even, non-zero
// number of non-empty segments).
func ValidDocPath(path string) bool {
	segs := strings.Split(path, "/")
	if len(segs) == 0 || len(segs)%2 != 0 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}

// ValidCollectionPath reports whether path names a collection (an odd number
// of non-empty segments).
func ValidCollectionPath(path string) bool {
	segs := strings.Split(path, "/")
	if len(segs)%2 != 1 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}

func checkDocPath(path string) error {
	if !ValidDocPath(path) {
		return errs.PathInvalid
	}
	return nil
}

// Timestamp normalizes the created-at representations the concrete stores
// hand back (time.Time from the drivers, or an int64 written by older
// clients) so callers can sort on it.
func Timestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case int64:
		return time.UnixMilli(t)
	case float64:
		return time.UnixMilli(int64(t))
	default:
		return time.Time{}
	}
}
