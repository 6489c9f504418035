package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stashbox/internal/items/domain/model"
	"stashbox/internal/items/domain/repository"
	placesusecase "stashbox/internal/places/usecase"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

const (
	minNameLength = 1
	maxNameLength = 128
)

// ItemPatch is a partial update. Nil fields were absent from the payload;
// PlaceSet distinguishes "place_uid not sent" from "place_uid: null".
type ItemPatch struct {
	Name         *string
	Description  *string
	Price        *float64
	CurrencyCode *string
	Quantity     *int64
	PlaceUID     *int64
	PlaceSet     bool
}

// ItemCreate carries the fields of a new item.
type ItemCreate struct {
	Name         string
	Description  *string
	Price        *float64
	CurrencyCode *string
	Quantity     int64
	PlaceUID     *int64
}

// ItemsUsecaseInterface defines the contract for item operations.
type ItemsUsecaseInterface interface {
	Create(ctx context.Context, ownerUID int64, create ItemCreate) (*model.Item, error)
	Get(ctx context.Context, uid, ownerUID int64) (*model.Item, error)
	List(ctx context.Context, ownerUID int64) ([]*model.Item, error)
	Update(ctx context.Context, ownerUID int64, item *model.Item, patch ItemPatch) (*model.Item, error)
	Delete(ctx context.Context, uid, ownerUID int64) error
}

// ItemsUsecase implements thin CRUD over items with place existence checks.
type ItemsUsecase struct {
	repo   repository.ItemRepository
	places placesusecase.PlacesUsecaseInterface
}

// NewItemsUsecase creates a new instance of ItemsUsecase.
func NewItemsUsecase(repo repository.ItemRepository, places placesusecase.PlacesUsecaseInterface) *ItemsUsecase {
	return &ItemsUsecase{repo: repo, places: places}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return "", fmt.Errorf("item name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	return name, nil
}

// checkPlace verifies the target place exists and is visible to the owner.
func (uc *ItemsUsecase) checkPlace(ctx context.Context, placeUID, ownerUID int64) error {
	if _, _, err := uc.places.Get(ctx, placeUID, ownerUID, false); err != nil {
		return err
	}
	return nil
}

// Create persists a new item. A given place must exist and be visible.
func (uc *ItemsUsecase) Create(ctx context.Context, ownerUID int64, create ItemCreate) (*model.Item, error) {
	name, err := validateName(create.Name)
	if err != nil {
		return nil, err
	}
	if create.Quantity < 0 {
		return nil, errors.New("quantity must not be negative")
	}
	if create.PlaceUID != nil {
		if err := uc.checkPlace(ctx, *create.PlaceUID, ownerUID); err != nil {
			return nil, err
		}
	}

	item := &model.Item{
		Name:         name,
		Description:  create.Description,
		Price:        create.Price,
		CurrencyCode: create.CurrencyCode,
		Quantity:     create.Quantity,
		PlaceUID:     create.PlaceUID,
		OwnerUID:     ownerUID,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get fetches a visible item.
func (uc *ItemsUsecase) Get(ctx context.Context, uid, ownerUID int64) (*model.Item, error) {
	return uc.repo.GetByUID(ctx, uid, ownerUID)
}

// List returns all items owned by the user.
func (uc *ItemsUsecase) List(ctx context.Context, ownerUID int64) ([]*model.Item, error) {
	return uc.repo.List(ctx, ownerUID)
}

// Update applies a partial update with overwrite semantics.
func (uc *ItemsUsecase) Update(ctx context.Context, ownerUID int64, item *model.Item, patch ItemPatch) (*model.Item, error) {
	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return nil, err
		}
		item.Name = name
	}
	if patch.Description != nil {
		item.Description = patch.Description
	}
	if patch.Price != nil {
		item.Price = patch.Price
	}
	if patch.CurrencyCode != nil {
		item.CurrencyCode = patch.CurrencyCode
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return nil, errors.New("quantity must not be negative")
		}
		item.Quantity = *patch.Quantity
	}
	if patch.PlaceSet {
		if patch.PlaceUID == nil {
			item.PlaceUID = nil
		} else {
			if err := uc.checkPlace(ctx, *patch.PlaceUID, ownerUID); err != nil {
				return nil, err
			}
			item.PlaceUID = patch.PlaceUID
		}
	}

	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item.
func (uc *ItemsUsecase) Delete(ctx context.Context, uid, ownerUID int64) error {
	return uc.repo.Delete(ctx, uid, ownerUID)
}

// Ensure ItemsUsecase implements ItemsUsecaseInterface
var _ ItemsUsecaseInterface = (*ItemsUsecase)(nil)
