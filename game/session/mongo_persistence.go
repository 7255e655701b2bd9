package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPersistence stores one document per session. The session record is
// kept as its JSON encoding in payload, with a few fields lifted out for
// querying from the mongo shell.
type MongoPersistence struct {
	collection *mongo.Collection
	timeout    time.Duration
}

type sessionDocument struct {
	ID             string    `bson:"_id"`
	ConfigID       string    `bson:"configId"`
	LastAccessedAt time.Time `bson:"lastAccessedAt"`
	Payload        []byte    `bson:"payload"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

// NewMongoPersistence creates a store on the given database and collection
func NewMongoPersistence(client *mongo.Client, dbName, collectionName string) *MongoPersistence {
	return &MongoPersistence{
		collection: client.Database(dbName).Collection(collectionName),
		timeout:    2 * time.Second,
	}
}

func (mp *MongoPersistence) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, mp.timeout)
}

// Save upserts the session document
func (mp *MongoPersistence) Save(ctx context.Context, data *PersistedSessionData) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	ctx, cancel := mp.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": strings.ToLower(data.ID)}
	update := bson.M{
		"$set": bson.M{
			"configId":       data.ConfigID,
			"lastAccessedAt": data.LastAccessedAt,
			"payload":        payload,
			"updatedAt":      time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := mp.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load fetches a session document by ID
func (mp *MongoPersistence) Load(ctx context.Context, id string) (*PersistedSessionData, error) {
	ctx, cancel := mp.withTimeout(ctx)
	defer cancel()

	var doc sessionDocument
	if err := mp.collection.FindOne(ctx, bson.M{"_id": strings.ToLower(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return &data, nil
}

// Delete removes a session document
func (mp *MongoPersistence) Delete(ctx context.Context, id string) error {
	ctx, cancel := mp.withTimeout(ctx)
	defer cancel()

	res, err := mp.collection.DeleteOne(ctx, bson.M{"_id": strings.ToLower(id)})
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// ListAll returns the IDs of every stored session
func (mp *MongoPersistence) ListAll(ctx context.Context) ([]string, error) {
	ctx, cancel := mp.withTimeout(ctx)
	defer cancel()

	cursor, err := mp.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode session ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Exists checks for a session document
func (mp *MongoPersistence) Exists(ctx context.Context, id string) bool {
	ctx, cancel := mp.withTimeout(ctx)
	defer cancel()

	n, err := mp.collection.CountDocuments(ctx, bson.M{"_id": strings.ToLower(id)}, options.Count().SetLimit(1))
	return err == nil && n > 0
}
