package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stashbox/internal/places/domain/model"
	"stashbox/internal/places/domain/repository"
)

var (
	ErrPlaceNotFound  = errors.New("place not found")
	ErrParentNotFound = errors.New("parent place not found")
	ErrCycleDetected  = errors.New("cycle detected")
)

const (
	minNameLength = 1
	maxNameLength = 64
)

// PlacePatch is a partial update. A nil field was absent from the payload and
// leaves the stored value unchanged. ParentSet distinguishes "parent_uid not
// sent" from "parent_uid: null" (detach).
type PlacePatch struct {
	Name      *string
	ParentUID *int64
	ParentSet bool
}

// ParentRead is the shallow one-level view of a node's immediate parent.
type ParentRead struct {
	UID       int64  `json:"uid"`
	Name      string `json:"name"`
	ParentUID *int64 `json:"parent_uid"`
}

// PlaceRead is the read projection of a place: its own fields plus, when
// joined, a one-level parent view. Never deeper than one level.
type PlaceRead struct {
	UID    int64       `json:"uid"`
	Name   string      `json:"name"`
	Parent *ParentRead `json:"parent"`
}

// PlacesUsecaseInterface defines the contract for place tree operations.
type PlacesUsecaseInterface interface {
	Create(ctx context.Context, ownerUID int64, name string, parentUID *int64) (*model.Place, error)
	Get(ctx context.Context, uid, ownerUID int64, joinParent bool) (*model.Place, *model.Place, error)
	List(ctx context.Context, ownerUID int64, filter model.ListFilter) ([]*model.Place, error)
	Update(ctx context.Context, ownerUID int64, place *model.Place, patch PlacePatch) (*model.Place, error)
	Delete(ctx context.Context, place *model.Place) error
}

// PlacesUsecase implements CRUD over a per-owner forest with cycle safety.
type PlacesUsecase struct {
	repo repository.PlaceRepository
}

// NewPlacesUsecase creates a new instance of PlacesUsecase.
func NewPlacesUsecase(repo repository.PlaceRepository) *PlacesUsecase {
	return &PlacesUsecase{repo: repo}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return "", fmt.Errorf("place name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	return name, nil
}

// Create persists a new node. A given parent must exist and be visible to the
// owner; the ACL denial surfaces as the same ErrParentNotFound as absence.
func (uc *PlacesUsecase) Create(ctx context.Context, ownerUID int64, name string, parentUID *int64) (*model.Place, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	if parentUID != nil {
		if _, err := uc.repo.GetByUID(ctx, *parentUID, ownerUID); err != nil {
			if errors.Is(err, ErrPlaceNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
	}

	place := &model.Place{
		Name:      name,
		ParentUID: parentUID,
		OwnerUID:  ownerUID,
	}
	if err := uc.repo.Create(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

// Get fetches a visible place. With joinParent the immediate parent is
// attached for the read projection; a dangling parent link degrades to no
// parent rather than an error.
func (uc *PlacesUsecase) Get(ctx context.Context, uid, ownerUID int64, joinParent bool) (*model.Place, *model.Place, error) {
	place, err := uc.repo.GetByUID(ctx, uid, ownerUID)
	if err != nil {
		return nil, nil, err
	}

	var parent *model.Place
	if joinParent && place.ParentUID != nil {
		parent, err = uc.repo.GetByUID(ctx, *place.ParentUID, ownerUID)
		if err != nil && !errors.Is(err, ErrPlaceNotFound) {
			return nil, nil, err
		}
	}
	return place, parent, nil
}

// List returns all visible places matching the filter.
func (uc *PlacesUsecase) List(ctx context.Context, ownerUID int64, filter model.ListFilter) ([]*model.Place, error) {
	return uc.repo.List(ctx, ownerUID, filter)
}

// Update applies a partial update with overwrite semantics: fields absent
// from the patch keep their stored value. A parent change to a non-null
// target is validated against the ancestor closure of the proposed parent —
// the one edge through which a cycle could enter the forest.
func (uc *PlacesUsecase) Update(ctx context.Context, ownerUID int64, place *model.Place, patch PlacePatch) (*model.Place, error) {
	if patch.ParentSet && !parentEqual(place.ParentUID, patch.ParentUID) {
		if patch.ParentUID == nil || *patch.ParentUID == 0 {
			place.ParentUID = nil
		} else {
			parent, err := uc.repo.GetByUID(ctx, *patch.ParentUID, ownerUID)
			if err != nil {
				if errors.Is(err, ErrPlaceNotFound) {
					return nil, ErrParentNotFound
				}
				return nil, err
			}

			closure, err := uc.ancestorClosure(ctx, ownerUID, parent)
			if err != nil {
				return nil, err
			}
			if _, ok := closure[place.UID]; ok {
				return nil, ErrCycleDetected
			}
			place.ParentUID = patch.ParentUID
		}
	}

	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return nil, err
		}
		place.Name = name
	}

	if err := uc.repo.Update(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

// Delete removes the node. Children are re-parented to null by the
// repository's referential action, never deleted.
func (uc *PlacesUsecase) Delete(ctx context.Context, place *model.Place) error {
	return uc.repo.Delete(ctx, place.UID, place.OwnerUID)
}

// ToReadSchema is the pure projection of a place and its optional joined
// parent into the read shape.
func ToReadSchema(place *model.Place, parent *model.Place) PlaceRead {
	read := PlaceRead{
		UID:  place.UID,
		Name: place.Name,
	}
	if parent != nil {
		read.Parent = &ParentRead{
			UID:       parent.UID,
			Name:      parent.Name,
			ParentUID: parent.ParentUID,
		}
	}
	return read
}

// ancestorClosure walks parent links upward from start, start itself
// included, and collects every uid reached. The traversal is iterative and
// guarded by the closure set itself: if the stored forest already contains a
// cycle the walk stops at the first repeated node instead of looping. A
// dangling parent link terminates the walk as if the chain ended at a root.
func (uc *PlacesUsecase) ancestorClosure(ctx context.Context, ownerUID int64, start *model.Place) (map[int64]struct{}, error) {
	closure := make(map[int64]struct{})

	node := start
	for node != nil {
		if _, seen := closure[node.UID]; seen {
			break
		}
		closure[node.UID] = struct{}{}

		if node.ParentUID == nil {
			break
		}
		parent, err := uc.repo.GetByUID(ctx, *node.ParentUID, ownerUID)
		if err != nil {
			if errors.Is(err, ErrPlaceNotFound) {
				break
			}
			return nil, err
		}
		node = parent
	}
	return closure, nil
}

func parentEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Ensure PlacesUsecase implements PlacesUsecaseInterface
var _ PlacesUsecaseInterface = (*PlacesUsecase)(nil)
