package docstore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/craftfolio/backend/errs"
)

// FirestoreStore implements Store on Cloud Firestore. A Firestore write
// batch is atomic, and firestore.Increment is a server-side transform, so
// both adapter guarantees hold natively.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, path string) (map[string]any, error) {
	if err := checkDocPath(path); err != nil {
		return nil, err
	}
	snap, err := s.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := checkDocPath(path); err != nil {
		return false, err
	}
	snap, err := s.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return snap.Exists(), nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, data map[string]any) error {
	if err := checkDocPath(path); err != nil {
		return err
	}
	_, err := s.client.Doc(path).Set(ctx, data)
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	if err := checkDocPath(path); err != nil {
		return err
	}
	_, err := s.client.Doc(path).Delete(ctx)
	return err
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	if !ValidCollectionPath(collection) {
		return nil, errs.PathInvalid
	}
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{
			Path: collection + "/" + snap.Ref.ID,
			Data: snap.Data(),
		})
	}
	return docs, nil
}

func (s *FirestoreStore) Batch() Batch {
	return &firestoreBatch{client: s.client, batch: s.client.Batch()}
}

func (s *FirestoreStore) Watch(ctx context.Context, collection string) (<-chan Event, error) {
	if !ValidCollectionPath(collection) {
		return nil, errs.PathInvalid
	}
	iter := s.client.Collection(collection).Snapshots(ctx)
	ch := make(chan Event, 32)
	go func() {
		defer close(ch)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				return
			}
			for _, change := range snap.Changes {
				ev := Event{Doc: Document{
					Path: collection + "/" + change.Doc.Ref.ID,
					Data: change.Doc.Data(),
				}}
				switch change.Kind {
				case firestore.DocumentAdded:
					ev.Type = EventAdded
				case firestore.DocumentModified:
					ev.Type = EventModified
				case firestore.DocumentRemoved:
					ev.Type = EventRemoved
				}
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

type firestoreBatch struct {
	client *firestore.Client
	batch  *firestore.WriteBatch
	err    error
}

func (b *firestoreBatch) Set(path string, data map[string]any) {
	if err := checkDocPath(path); err != nil {
		b.err = err
		return
	}
	b.batch.Set(b.client.Doc(path), data)
}

func (b *firestoreBatch) Delete(path string) {
	if err := checkDocPath(path); err != nil {
		b.err = err
		return
	}
	b.batch.Delete(b.client.Doc(path))
}

func (b *firestoreBatch) Increment(path, field string, delta int64) {
	if err := checkDocPath(path); err != nil {
		b.err = err
		return
	}
	// Set-with-merge so the increment also works on a missing document.
	b.batch.Set(b.client.Doc(path), nestedValue(field, firestore.Increment(delta)), firestore.MergeAll)
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	_, err := b.batch.Commit(ctx)
	return err
}

// nestedValue turns a dotted field path into the nested map shape Firestore
// expects for merges ("stats.likeCount" -> {stats: {likeCount: v}}).
func nestedValue(field string, v any) map[string]any {
	parts := strings.Split(field, ".")
	out := map[string]any{parts[len(parts)-1]: v}
	for i := len(parts) - 2; i >= 0; i-- {
		out = map[string]any{parts[i]: out}
	}
	return out
}
