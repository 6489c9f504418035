package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counters allocates monotonically increasing numeric uids per entity name
// using an atomic $inc upsert on a dedicated collection.
type Counters struct {
	collection *mongo.Collection
}

// NewCounters creates a counter allocator backed by the given database.
func NewCounters(db *mongo.Database) *Counters {
	return &Counters{
		collection: db.Collection("counters"),
	}
}

// Next returns the next uid in the named sequence, starting at 1.
func (c *Counters) Next(ctx context.Context, name string) (int64, error) {
	res := c.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to allocate uid for %q: %w", name, err)
	}
	return doc.Seq, nil
}
