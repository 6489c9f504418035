package mongodb

import (
	"context"
	"errors"
	"fmt"

	"stashbox/internal/places/domain/model"
	"stashbox/internal/places/usecase"
	"stashbox/internal/shared/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const placeCounterName = "places"

// MongoPlaceRepository implements the PlaceRepository interface using MongoDB.
type MongoPlaceRepository struct {
	collection *mongo.Collection
	counters   *database.Counters
}

// NewMongoPlaceRepository creates a new MongoDB place repository and ensures
// its indexes.
func NewMongoPlaceRepository(db *mongo.Database, counters *database.Counters) (*MongoPlaceRepository, error) {
	repo := &MongoPlaceRepository{
		collection: db.Collection("places"),
		counters:   counters,
	}

	ctx := context.Background()

	// Every query is owner-scoped; parent_uid serves the children lookup on
	// delete and the root/subtree listings.
	ownerParentIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_uid", Value: 1},
			{Key: "parent_uid", Value: 1},
		},
	}
	if _, err := repo.collection.Indexes().CreateOne(ctx, ownerParentIndex); err != nil {
		return nil, fmt.Errorf("failed to create place index: %w", err)
	}

	return repo, nil
}

// aclFilter returns the owner-scoped visibility condition merged with extra
// criteria. ACL denial and absence are indistinguishable by construction.
func aclFilter(ownerUID int64, extra bson.M) bson.M {
	filter := bson.M{"owner_uid": ownerUID}
	for key, value := range extra {
		filter[key] = value
	}
	return filter
}

// Create inserts a new place, allocating its uid.
func (r *MongoPlaceRepository) Create(ctx context.Context, place *model.Place) error {
	if place == nil {
		return errors.New("place cannot be nil")
	}

	uid, err := r.counters.Next(ctx, placeCounterName)
	if err != nil {
		return err
	}
	place.UID = uid

	_, err = r.collection.InsertOne(ctx, place)
	return err
}

// GetByUID retrieves a visible place by uid.
func (r *MongoPlaceRepository) GetByUID(ctx context.Context, uid, ownerUID int64) (*model.Place, error) {
	var place model.Place
	err := r.collection.FindOne(ctx, aclFilter(ownerUID, bson.M{"_id": uid})).Decode(&place)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrPlaceNotFound
		}
		return nil, err
	}
	return &place, nil
}

// List returns all visible places matching the filter, in the filter's order.
func (r *MongoPlaceRepository) List(ctx context.Context, ownerUID int64, filter model.ListFilter) ([]*model.Place, error) {
	conditions := bson.M{}
	if filter.ParentSet {
		if filter.ParentUID == nil {
			conditions["parent_uid"] = nil
		} else {
			conditions["parent_uid"] = *filter.ParentUID
		}
	}

	findOpts := options.Find()
	if filter.OrderField != "" {
		direction := 1
		if filter.OrderDirection == model.Descending {
			direction = -1
		}
		findOpts.SetSort(bson.D{{Key: filter.OrderField, Value: direction}})
	}

	cursor, err := r.collection.Find(ctx, aclFilter(ownerUID, conditions), findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var places []*model.Place
	if err := cursor.All(ctx, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// Update overwrites the mutable fields of a place.
func (r *MongoPlaceRepository) Update(ctx context.Context, place *model.Place) error {
	update := bson.M{
		"$set": bson.M{
			"name":       place.Name,
			"parent_uid": place.ParentUID,
		},
	}
	res, err := r.collection.UpdateOne(ctx, aclFilter(place.OwnerUID, bson.M{"_id": place.UID}), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrPlaceNotFound
	}
	return nil
}

// Delete removes the node after re-parenting its children to null. The two
// writes belong in one surrounding transaction; this mirrors the relational
// ON DELETE SET NULL referential action.
func (r *MongoPlaceRepository) Delete(ctx context.Context, uid, ownerUID int64) error {
	_, err := r.collection.UpdateMany(ctx,
		aclFilter(ownerUID, bson.M{"parent_uid": uid}),
		bson.M{"$set": bson.M{"parent_uid": nil}},
	)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, aclFilter(ownerUID, bson.M{"_id": uid}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrPlaceNotFound
	}
	return nil
}

// PurgeOwner removes every place owned by the user.
func (r *MongoPlaceRepository) PurgeOwner(ctx context.Context, ownerUID int64) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"owner_uid": ownerUID})
	return err
}
