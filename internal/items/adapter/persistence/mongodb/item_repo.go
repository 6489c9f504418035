package mongodb

import (
	"context"
	"errors"
	"fmt"

	"stashbox/internal/items/domain/model"
	"stashbox/internal/items/usecase"
	"stashbox/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const itemCounterName = "items"

// MongoItemRepository implements the ItemRepository interface using MongoDB.
type MongoItemRepository struct {
	collection *mongo.Collection
	counters   *database.Counters
}

// NewMongoItemRepository creates a new MongoDB item repository and ensures its
// indexes.
func NewMongoItemRepository(db *mongo.Database, counters *database.Counters) (*MongoItemRepository, error) {
	repo := &MongoItemRepository{
		collection: db.Collection("items"),
		counters:   counters,
	}

	ownerPlaceIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_uid", Value: 1},
			{Key: "place_uid", Value: 1},
		},
	}
	if _, err := repo.collection.Indexes().CreateOne(context.Background(), ownerPlaceIndex); err != nil {
		return nil, fmt.Errorf("failed to create item index: %w", err)
	}

	return repo, nil
}

func (r *MongoItemRepository) aclFilter(ownerUID int64, extra bson.M) bson.M {
	filter := bson.M{"owner_uid": ownerUID}
	for key, value := range extra {
		filter[key] = value
	}
	return filter
}

// Create inserts a new item, allocating its uid.
func (r *MongoItemRepository) Create(ctx context.Context, item *model.Item) error {
	if item == nil {
		return errors.New("item cannot be nil")
	}

	uid, err := r.counters.Next(ctx, itemCounterName)
	if err != nil {
		return err
	}
	item.UID = uid

	_, err = r.collection.InsertOne(ctx, item)
	return err
}

// GetByUID retrieves a visible item by uid.
func (r *MongoItemRepository) GetByUID(ctx context.Context, uid, ownerUID int64) (*model.Item, error) {
	var item model.Item
	err := r.collection.FindOne(ctx, r.aclFilter(ownerUID, bson.M{"_id": uid})).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// List returns all items owned by the user.
func (r *MongoItemRepository) List(ctx context.Context, ownerUID int64) ([]*model.Item, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_uid": ownerUID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*model.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the mutable fields of an item.
func (r *MongoItemRepository) Update(ctx context.Context, item *model.Item) error {
	update := bson.M{
		"$set": bson.M{
			"name":          item.Name,
			"description":   item.Description,
			"price":         item.Price,
			"currency_code": item.CurrencyCode,
			"quantity":      item.Quantity,
			"place_uid":     item.PlaceUID,
		},
	}
	res, err := r.collection.UpdateOne(ctx, r.aclFilter(item.OwnerUID, bson.M{"_id": item.UID}), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrItemNotFound
	}
	return nil
}

// Delete removes a visible item.
func (r *MongoItemRepository) Delete(ctx context.Context, uid, ownerUID int64) error {
	res, err := r.collection.DeleteOne(ctx, r.aclFilter(ownerUID, bson.M{"_id": uid}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrItemNotFound
	}
	return nil
}

// DetachPlace nulls place_uid on every item stored in the place.
func (r *MongoItemRepository) DetachPlace(ctx context.Context, placeUID, ownerUID int64) error {
	_, err := r.collection.UpdateMany(ctx,
		r.aclFilter(ownerUID, bson.M{"place_uid": placeUID}),
		bson.M{"$set": bson.M{"place_uid": nil}},
	)
	return err
}

// PurgeOwner removes every item owned by the user.
func (r *MongoItemRepository) PurgeOwner(ctx context.Context, ownerUID int64) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"owner_uid": ownerUID})
	return err
}
