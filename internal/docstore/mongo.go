package docstore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftfolio/backend/errs"
)

// MongoStore implements Store on MongoDB. Sub-collection paths map onto
// flat collections named by their collection segments ("articles/a1/likes/u9"
// lands in "articles_likes"), with the full path as _id and the parent
// collection path denormalized for listing. Batches run inside a session
// transaction, so a replica set (or mongos) is required; `$inc` supplies the
// commutative increment.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore wraps a connected client and database name.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

// collectionFor derives the flat Mongo collection name from a document or
// collection path.
func collectionFor(path string) string {
	segs := strings.Split(path, "/")
	names := make([]string, 0, (len(segs)+1)/2)
	for i := 0; i < len(segs); i += 2 {
		names = append(names, segs[i])
	}
	return strings.Join(names, "_")
}

func parentOf(path string) string {
	return path[:strings.LastIndex(path, "/")]
}

func (s *MongoStore) Get(ctx context.Context, path string) (map[string]any, error) {
	if err := checkDocPath(path); err != nil {
		return nil, err
	}
	var raw bson.M
	err := s.db.Collection(collectionFor(path)).FindOne(ctx, bson.M{"_id": path}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return normalizeDoc(raw), nil
}

func (s *MongoStore) Exists(ctx context.Context, path string) (bool, error) {
	if err := checkDocPath(path); err != nil {
		return false, err
	}
	count, err := s.db.Collection(collectionFor(path)).CountDocuments(ctx, bson.M{"_id": path}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoStore) Set(ctx context.Context, path string, data map[string]any) error {
	if err := checkDocPath(path); err != nil {
		return err
	}
	doc := bson.M{"_id": path, "_parent": parentOf(path)}
	for k, v := range data {
		doc[k] = v
	}
	_, err := s.db.Collection(collectionFor(path)).
		ReplaceOne(ctx, bson.M{"_id": path}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, path string) error {
	if err := checkDocPath(path); err != nil {
		return err
	}
	_, err := s.db.Collection(collectionFor(path)).DeleteOne(ctx, bson.M{"_id": path})
	return err
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	if !ValidCollectionPath(collection) {
		return nil, errs.PathInvalid
	}
	cursor, err := s.db.Collection(collectionFor(collection)).Find(ctx, bson.M{"_parent": collection})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		path, _ := raw["_id"].(string)
		out = append(out, Document{Path: path, Data: normalizeDoc(raw)})
	}
	return out, cursor.Err()
}

func (s *MongoStore) Batch() Batch {
	return &mongoBatch{store: s}
}

func (s *MongoStore) Watch(ctx context.Context, collection string) (<-chan Event, error) {
	if !ValidCollectionPath(collection) {
		return nil, errs.PathInvalid
	}
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{
		"$or": bson.A{
			bson.M{"fullDocument._parent": collection},
			bson.M{"operationType": "delete"},
		},
	}}}}
	stream, err := s.db.Collection(collectionFor(collection)).
		Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 32)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var change struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
				FullDocument bson.M `bson:"fullDocument"`
			}
			if err := stream.Decode(&change); err != nil {
				return
			}
			ev := Event{Doc: Document{Path: change.DocumentKey.ID, Data: normalizeDoc(change.FullDocument)}}
			switch change.OperationType {
			case "insert":
				ev.Type = EventAdded
			case "delete":
				if parentOf(change.DocumentKey.ID) != collection {
					continue
				}
				ev.Type = EventRemoved
			default:
				ev.Type = EventModified
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

type mongoBatch struct {
	store *MongoStore
	ops   []func(ctx context.Context) error
	err   error
}

func (b *mongoBatch) Set(path string, data map[string]any) {
	if err := checkDocPath(path); err != nil {
		b.err = err
		return
	}
	doc := bson.M{"_id": path, "_parent": parentOf(path)}
	for k, v := range data {
		doc[k] = v
	}
	coll := b.store.db.Collection(collectionFor(path))
	b.ops = append(b.ops, func(ctx context.Context) error {
		_, err := coll.ReplaceOne(ctx, bson.M{"_id": path}, doc, options.Replace().SetUpsert(true))
		return err
	})
}

func (b *mongoBatch) Delete(path string) {
	if err := checkDocPath(path); err != nil {
		b.err = err
		return
	}
	coll := b.store.db.Collection(collectionFor(path))
	b.ops = append(b.ops, func(ctx context.Context) error {
		_, err := coll.DeleteOne(ctx, bson.M{"_id": path})
		return err
	})
}

func (b *mongoBatch) Increment(path, field string, delta int64) {
	if err := checkDocPath(path); err != nil {
		b.err = err
		return
	}
	coll := b.store.db.Collection(collectionFor(path))
	b.ops = append(b.ops, func(ctx context.Context) error {
		_, err := coll.UpdateOne(ctx, bson.M{"_id": path}, bson.M{
			"$inc":         bson.M{field: delta},
			"$setOnInsert": bson.M{"_parent": parentOf(path)},
		}, options.Update().SetUpsert(true))
		return err
	})
}

func (b *mongoBatch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	session, err := b.store.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		for _, op := range b.ops {
			if err := op(sc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// normalizeDoc strips adapter bookkeeping fields and converts BSON types to
// the plain Go shapes the rest of the engine works with.
func normalizeDoc(raw bson.M) map[string]any {
	if raw == nil {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" || k == "_parent" {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case primitive.DateTime:
		return t.Time()
	case int32:
		return int64(t)
	default:
		return v
	}
}
