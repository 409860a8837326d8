package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// mongoCodeUnauthorized is the server error code for a rejected command.
const mongoCodeUnauthorized = 13

// Mongo stores playlist documents in a MongoDB collection. It does not
// implement Updater; callers serialize read-modify-write themselves.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo dials uri and ensures the owner/creation index on the
// collection.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{client: client, coll: client.Database(database).Collection(collection)}
	_, err = m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create mongo index: %w", mapMongoError(err))
	}
	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Get(ctx context.Context, id string) (Document, error) {
	var doc Document
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("get playlist %s: %w", id, mapMongoError(err))
	}
	if doc.Items == nil {
		doc.Items = []media.Item{}
	}
	return doc, nil
}

func (m *Mongo) Set(ctx context.Context, doc Document) error {
	if doc.Items == nil {
		doc.Items = []media.Item{}
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set playlist %s: %w", doc.ID, mapMongoError(err))
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete playlist %s: %w", id, mapMongoError(err))
	}
	return nil
}

func (m *Mongo) ListByOwner(ctx context.Context, userID string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", mapMongoError(err))
	}
	docs := []Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list playlists decode: %w", mapMongoError(err))
	}
	for i := range docs {
		if docs[i].Items == nil {
			docs[i].Items = []media.Item{}
		}
	}
	return docs, nil
}

func mapMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(mongoCodeUnauthorized) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
