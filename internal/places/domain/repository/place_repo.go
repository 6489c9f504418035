package repository

import (
	"context"

	"stashbox/internal/places/domain/model"
)

// PlaceRepository defines persistence for the place forest. Every read takes
// the acting owner's uid and applies the ACL condition; a row owned by
// someone else is indistinguishable from an absent one.
type PlaceRepository interface {
	Create(ctx context.Context, place *model.Place) error
	GetByUID(ctx context.Context, uid, ownerUID int64) (*model.Place, error)
	List(ctx context.Context, ownerUID int64, filter model.ListFilter) ([]*model.Place, error)
	Update(ctx context.Context, place *model.Place) error

	// Delete removes the node and re-parents its children to null, the
	// storage-level equivalent of ON DELETE SET NULL.
	Delete(ctx context.Context, uid, ownerUID int64) error

	// PurgeOwner removes every place owned by the user. Account-deletion
	// cascade only.
	PurgeOwner(ctx context.Context, ownerUID int64) error
}
