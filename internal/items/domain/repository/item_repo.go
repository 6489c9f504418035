package repository

import (
	"context"

	"stashbox/internal/items/domain/model"
)

// ItemRepository defines persistence for inventory items. Reads are
// owner-scoped the same way as places.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByUID(ctx context.Context, uid, ownerUID int64) (*model.Item, error)
	List(ctx context.Context, ownerUID int64) ([]*model.Item, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, uid, ownerUID int64) error

	// DetachPlace nulls place_uid on every item in the place. Place-deletion
	// cascade only.
	DetachPlace(ctx context.Context, placeUID, ownerUID int64) error

	// PurgeOwner removes every item owned by the user. Account-deletion
	// cascade only.
	PurgeOwner(ctx context.Context, ownerUID int64) error
}
