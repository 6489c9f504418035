package usecase_test

import (
	"context"
	"testing"

	"stashbox/internal/items/domain/model"
	"stashbox/internal/items/usecase"
	placesmodel "stashbox/internal/places/domain/model"
	placesusecase "stashbox/internal/places/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Mock item repository
type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) Create(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) GetByUID(ctx context.Context, uid, ownerUID int64) (*model.Item, error) {
	args := m.Called(ctx, uid, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *mockItemRepository) List(ctx context.Context, ownerUID int64) ([]*model.Item, error) {
	args := m.Called(ctx, ownerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Item), args.Error(1)
}

func (m *mockItemRepository) Update(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) Delete(ctx context.Context, uid, ownerUID int64) error {
	args := m.Called(ctx, uid, ownerUID)
	return args.Error(0)
}

func (m *mockItemRepository) DetachPlace(ctx context.Context, placeUID, ownerUID int64) error {
	args := m.Called(ctx, placeUID, ownerUID)
	return args.Error(0)
}

func (m *mockItemRepository) PurgeOwner(ctx context.Context, ownerUID int64) error {
	args := m.Called(ctx, ownerUID)
	return args.Error(0)
}

// stubPlaces answers place visibility checks from a fixed set of uids.
type stubPlaces struct {
	placesusecase.PlacesUsecaseInterface
	visible map[int64]bool
}

func (s *stubPlaces) Get(ctx context.Context, uid, ownerUID int64, joinParent bool) (*placesmodel.Place, *placesmodel.Place, error) {
	if !s.visible[uid] {
		return nil, nil, placesusecase.ErrPlaceNotFound
	}
	return &placesmodel.Place{UID: uid, OwnerUID: ownerUID}, nil, nil
}

type ItemsUsecaseTestSuite struct {
	suite.Suite
	mockRepo *mockItemRepository
	places   *stubPlaces
	usecase  *usecase.ItemsUsecase
}

func (suite *ItemsUsecaseTestSuite) SetupTest() {
	suite.mockRepo = new(mockItemRepository)
	suite.places = &stubPlaces{visible: map[int64]bool{1: true}}
	suite.usecase = usecase.NewItemsUsecase(suite.mockRepo, suite.places)
}

func (suite *ItemsUsecaseTestSuite) TestCreate_Unplaced() {
	// Arrange
	ctx := context.Background()
	suite.mockRepo.On("Create", ctx, mock.MatchedBy(func(item *model.Item) bool {
		return item.Name == "Hammer" && item.PlaceUID == nil && item.OwnerUID == 42
	})).Return(nil)

	// Act
	item, err := suite.usecase.Create(ctx, 42, usecase.ItemCreate{Name: "Hammer", Quantity: 1})

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Hammer", item.Name)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ItemsUsecaseTestSuite) TestCreate_PlaceMustBeVisible() {
	// Arrange
	ctx := context.Background()
	missing := int64(999)

	// Act
	_, err := suite.usecase.Create(ctx, 42, usecase.ItemCreate{Name: "Hammer", PlaceUID: &missing})

	// Assert
	assert.ErrorIs(suite.T(), err, placesusecase.ErrPlaceNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *ItemsUsecaseTestSuite) TestCreate_NegativeQuantityRejected() {
	_, err := suite.usecase.Create(context.Background(), 42, usecase.ItemCreate{Name: "Hammer", Quantity: -1})
	assert.Error(suite.T(), err)
}

func (suite *ItemsUsecaseTestSuite) TestUpdate_PlaceTriState() {
	ctx := context.Background()
	placeUID := int64(1)

	suite.Run("absent leaves place", func() {
		item := &model.Item{UID: 5, Name: "Hammer", PlaceUID: &placeUID, OwnerUID: 42}
		suite.mockRepo.On("Update", ctx, item).Return(nil).Once()

		newName := "Sledgehammer"
		updated, err := suite.usecase.Update(ctx, 42, item, usecase.ItemPatch{Name: &newName})

		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), updated.PlaceUID)
		assert.Equal(suite.T(), placeUID, *updated.PlaceUID)
	})

	suite.Run("null detaches", func() {
		item := &model.Item{UID: 5, Name: "Hammer", PlaceUID: &placeUID, OwnerUID: 42}
		suite.mockRepo.On("Update", ctx, item).Return(nil).Once()

		updated, err := suite.usecase.Update(ctx, 42, item, usecase.ItemPatch{PlaceSet: true})

		require.NoError(suite.T(), err)
		assert.Nil(suite.T(), updated.PlaceUID)
	})

	suite.Run("target place must be visible", func() {
		item := &model.Item{UID: 5, Name: "Hammer", OwnerUID: 42}
		missing := int64(999)

		_, err := suite.usecase.Update(ctx, 42, item, usecase.ItemPatch{PlaceUID: &missing, PlaceSet: true})

		assert.ErrorIs(suite.T(), err, placesusecase.ErrPlaceNotFound)
	})
}

func TestItemsUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(ItemsUsecaseTestSuite))
}
