package docstore

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/craftfolio/backend/errs"
)

// MemoryStore is an in-process Store used by tests and local development.
// Batches apply under one lock so they are atomic with respect to every
// other operation on the store.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]map[string]any
	watches map[string][]chan Event

	failNext error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]map[string]any),
		watches: make(map[string][]chan Event),
	}
}

// FailNext makes the next mutating call (Set, Delete, or Batch.Commit)
// return err instead of applying. Used by tests to exercise rollback paths.
func (s *MemoryStore) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *MemoryStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *MemoryStore) Get(ctx context.Context, path string) (map[string]any, error) {
	if err := checkDocPath(path); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(doc), nil
}

func (s *MemoryStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := checkDocPath(path); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[path]
	return ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, data map[string]any) error {
	if err := checkDocPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	existed := s.docs[path] != nil
	s.docs[path] = deepCopy(data)
	s.notify(path, existed)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := checkDocPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if doc, ok := s.docs[path]; ok {
		delete(s.docs, path)
		s.emit(Event{Type: EventRemoved, Doc: Document{Path: path, Data: deepCopy(doc)}})
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if !ValidCollectionPath(collection) {
		return nil, errs.PathInvalid
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := collection + "/"
	var out []Document
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if strings.Contains(path[len(prefix):], "/") {
			continue // document in a deeper sub-collection
		}
		out = append(out, Document{Path: path, Data: deepCopy(doc)})
	}
	return out, nil
}

func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

func (s *MemoryStore) Watch(ctx context.Context, collection string) (<-chan Event, error) {
	if !ValidCollectionPath(collection) {
		return nil, errs.PathInvalid
	}
	ch := make(chan Event, 32)
	s.mu.Lock()
	s.watches[collection] = append(s.watches[collection], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.watches[collection]
		for i, sub := range subs {
			if sub == ch {
				s.watches[collection] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}()
	return ch, nil
}

// notify emits an added or modified event for path. Caller holds the lock.
func (s *MemoryStore) notify(path string, existed bool) {
	typ := EventAdded
	if existed {
		typ = EventModified
	}
	s.emit(Event{Type: typ, Doc: Document{Path: path, Data: deepCopy(s.docs[path])}})
}

// emit delivers an event to watchers of the document's parent collection.
// Caller holds the lock; slow watchers are skipped rather than blocked on.
func (s *MemoryStore) emit(ev Event) {
	idx := strings.LastIndex(ev.Doc.Path, "/")
	if idx < 0 {
		return
	}
	for _, ch := range s.watches[ev.Doc.Path[:idx]] {
		select {
		case ch <- ev:
		default:
		}
	}
}

type batchOp struct {
	kind  int // 0 set, 1 delete, 2 increment
	path  string
	data  map[string]any
	field string
	delta int64
}

type memoryBatch struct {
	store *MemoryStore
	ops   []batchOp
}

func (b *memoryBatch) Set(path string, data map[string]any) {
	b.ops = append(b.ops, batchOp{kind: 0, path: path, data: deepCopy(data)})
}

func (b *memoryBatch) Delete(path string) {
	b.ops = append(b.ops, batchOp{kind: 1, path: path})
}

func (b *memoryBatch) Increment(path, field string, delta int64) {
	b.ops = append(b.ops, batchOp{kind: 2, path: path, field: field, delta: delta})
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	for _, op := range b.ops {
		if err := checkDocPath(op.path); err != nil {
			return err
		}
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, op := range b.ops {
		switch op.kind {
		case 0:
			existed := s.docs[op.path] != nil
			s.docs[op.path] = deepCopy(op.data)
			s.notify(op.path, existed)
		case 1:
			if doc, ok := s.docs[op.path]; ok {
				delete(s.docs, op.path)
				s.emit(Event{Type: EventRemoved, Doc: Document{Path: op.path, Data: doc}})
			}
		case 2:
			doc, existed := s.docs[op.path]
			if !existed {
				doc = make(map[string]any)
				s.docs[op.path] = doc
			}
			incrementField(doc, op.field, op.delta)
			s.notify(op.path, existed)
		}
	}
	return nil
}

// incrementField adds delta to a possibly dotted field ("stats.likeCount"),
// creating intermediate maps as needed.
func incrementField(doc map[string]any, field string, delta int64) {
	parts := strings.Split(field, ".")
	m := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	leaf := parts[len(parts)-1]
	m[leaf] = toInt64(m[leaf]) + delta
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func deepCopy(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := maps.Clone(src)
	for k, v := range dst {
		if m, ok := v.(map[string]any); ok {
			dst[k] = deepCopy(m)
		}
	}
	return dst
}
