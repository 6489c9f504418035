package usecase_test

import (
	"context"
	"testing"

	"stashbox/internal/places/domain/model"
	"stashbox/internal/places/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakePlaceRepository is an in-memory PlaceRepository. Tree-shape tests need
// real parent-chain walks, which canned mock returns make awkward.
type fakePlaceRepository struct {
	nextUID int64
	rows    map[int64]*model.Place
}

func newFakePlaceRepository() *fakePlaceRepository {
	return &fakePlaceRepository{rows: make(map[int64]*model.Place)}
}

func (f *fakePlaceRepository) Create(ctx context.Context, place *model.Place) error {
	f.nextUID++
	place.UID = f.nextUID
	clone := *place
	f.rows[place.UID] = &clone
	return nil
}

func (f *fakePlaceRepository) GetByUID(ctx context.Context, uid, ownerUID int64) (*model.Place, error) {
	row, ok := f.rows[uid]
	if !ok || row.OwnerUID != ownerUID {
		return nil, usecase.ErrPlaceNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakePlaceRepository) List(ctx context.Context, ownerUID int64, filter model.ListFilter) ([]*model.Place, error) {
	var out []*model.Place
	for _, row := range f.rows {
		if row.OwnerUID != ownerUID {
			continue
		}
		if filter.ParentSet {
			if filter.ParentUID == nil {
				if row.ParentUID != nil {
					continue
				}
			} else if row.ParentUID == nil || *row.ParentUID != *filter.ParentUID {
				continue
			}
		}
		clone := *row
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakePlaceRepository) Update(ctx context.Context, place *model.Place) error {
	row, ok := f.rows[place.UID]
	if !ok || row.OwnerUID != place.OwnerUID {
		return usecase.ErrPlaceNotFound
	}
	clone := *place
	f.rows[place.UID] = &clone
	return nil
}

func (f *fakePlaceRepository) Delete(ctx context.Context, uid, ownerUID int64) error {
	row, ok := f.rows[uid]
	if !ok || row.OwnerUID != ownerUID {
		return usecase.ErrPlaceNotFound
	}
	for _, child := range f.rows {
		if child.OwnerUID == ownerUID && child.ParentUID != nil && *child.ParentUID == uid {
			child.ParentUID = nil
		}
	}
	delete(f.rows, uid)
	return nil
}

func (f *fakePlaceRepository) PurgeOwner(ctx context.Context, ownerUID int64) error {
	for uid, row := range f.rows {
		if row.OwnerUID == ownerUID {
			delete(f.rows, uid)
		}
	}
	return nil
}

type PlacesUsecaseTestSuite struct {
	suite.Suite
	repo    *fakePlaceRepository
	usecase *usecase.PlacesUsecase
}

func (suite *PlacesUsecaseTestSuite) SetupTest() {
	suite.repo = newFakePlaceRepository()
	suite.usecase = usecase.NewPlacesUsecase(suite.repo)
}

const ownerUID = int64(1)

// mustCreate seeds a place and fails the test on error.
func (suite *PlacesUsecaseTestSuite) mustCreate(owner int64, name string, parentUID *int64) *model.Place {
	place, err := suite.usecase.Create(context.Background(), owner, name, parentUID)
	require.NoError(suite.T(), err)
	return place
}

func (suite *PlacesUsecaseTestSuite) TestCreate_Root() {
	place := suite.mustCreate(ownerUID, "Garage", nil)

	assert.NotZero(suite.T(), place.UID)
	assert.Equal(suite.T(), "Garage", place.Name)
	assert.Nil(suite.T(), place.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestCreate_WithParent() {
	root := suite.mustCreate(ownerUID, "Garage", nil)

	child := suite.mustCreate(ownerUID, "Shelf", &root.UID)

	require.NotNil(suite.T(), child.ParentUID)
	assert.Equal(suite.T(), root.UID, *child.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestCreate_ParentMissing() {
	missing := int64(999)

	_, err := suite.usecase.Create(context.Background(), ownerUID, "Shelf", &missing)

	assert.ErrorIs(suite.T(), err, usecase.ErrParentNotFound)
}

func (suite *PlacesUsecaseTestSuite) TestCreate_ParentOwnedBySomeoneElse() {
	// ACL denial must look exactly like absence.
	other := suite.mustCreate(2, "Their Garage", nil)

	_, err := suite.usecase.Create(context.Background(), ownerUID, "Shelf", &other.UID)

	assert.ErrorIs(suite.T(), err, usecase.ErrParentNotFound)
}

func (suite *PlacesUsecaseTestSuite) TestCreate_NameValidation() {
	_, err := suite.usecase.Create(context.Background(), ownerUID, "   ", nil)
	assert.Error(suite.T(), err)

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	_, err = suite.usecase.Create(context.Background(), ownerUID, string(long), nil)
	assert.Error(suite.T(), err)
}

func (suite *PlacesUsecaseTestSuite) TestGet_JoinsParentOneLevel() {
	root := suite.mustCreate(ownerUID, "Garage", nil)
	mid := suite.mustCreate(ownerUID, "Shelf", &root.UID)
	leaf := suite.mustCreate(ownerUID, "Box", &mid.UID)

	place, parent, err := suite.usecase.Get(context.Background(), leaf.UID, ownerUID, true)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), leaf.UID, place.UID)
	require.NotNil(suite.T(), parent)
	assert.Equal(suite.T(), mid.UID, parent.UID)

	read := usecase.ToReadSchema(place, parent)
	require.NotNil(suite.T(), read.Parent)
	assert.Equal(suite.T(), mid.Name, read.Parent.Name)
	// The parent view carries its own parent as a bare uid, never a nested
	// object.
	require.NotNil(suite.T(), read.Parent.ParentUID)
	assert.Equal(suite.T(), root.UID, *read.Parent.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestGet_OtherOwnerIsNotFound() {
	place := suite.mustCreate(2, "Their Garage", nil)

	_, _, err := suite.usecase.Get(context.Background(), place.UID, ownerUID, false)

	assert.ErrorIs(suite.T(), err, usecase.ErrPlaceNotFound)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_NameOnlyKeepsParent() {
	root := suite.mustCreate(ownerUID, "Garage", nil)
	child := suite.mustCreate(ownerUID, "Shelf", &root.UID)

	newName := "Tool Shelf"
	updated, err := suite.usecase.Update(context.Background(), ownerUID, child, usecase.PlacePatch{Name: &newName})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Tool Shelf", updated.Name)
	require.NotNil(suite.T(), updated.ParentUID)
	assert.Equal(suite.T(), root.UID, *updated.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_DetachParentWithNull() {
	root := suite.mustCreate(ownerUID, "Garage", nil)
	child := suite.mustCreate(ownerUID, "Shelf", &root.UID)

	updated, err := suite.usecase.Update(context.Background(), ownerUID, child, usecase.PlacePatch{ParentSet: true})

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), updated.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_Reparent() {
	a := suite.mustCreate(ownerUID, "A", nil)
	b := suite.mustCreate(ownerUID, "B", nil)
	child := suite.mustCreate(ownerUID, "Child", &a.UID)

	updated, err := suite.usecase.Update(context.Background(), ownerUID, child, usecase.PlacePatch{ParentUID: &b.UID, ParentSet: true})

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), updated.ParentUID)
	assert.Equal(suite.T(), b.UID, *updated.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_SelfParentRejected() {
	place := suite.mustCreate(ownerUID, "Garage", nil)

	_, err := suite.usecase.Update(context.Background(), ownerUID, place, usecase.PlacePatch{ParentUID: &place.UID, ParentSet: true})

	assert.ErrorIs(suite.T(), err, usecase.ErrCycleDetected)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_DescendantParentRejected() {
	// Moving a node under its own grandchild would close a cycle.
	root := suite.mustCreate(ownerUID, "Root", nil)
	mid := suite.mustCreate(ownerUID, "Mid", &root.UID)
	leaf := suite.mustCreate(ownerUID, "Leaf", &mid.UID)

	_, err := suite.usecase.Update(context.Background(), ownerUID, root, usecase.PlacePatch{ParentUID: &leaf.UID, ParentSet: true})

	assert.ErrorIs(suite.T(), err, usecase.ErrCycleDetected)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_SameParentNoCycleCheck() {
	// Re-sending the current parent is a no-op, not a cycle.
	root := suite.mustCreate(ownerUID, "Root", nil)
	child := suite.mustCreate(ownerUID, "Child", &root.UID)

	updated, err := suite.usecase.Update(context.Background(), ownerUID, child, usecase.PlacePatch{ParentUID: &root.UID, ParentSet: true})

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), updated.ParentUID)
	assert.Equal(suite.T(), root.UID, *updated.ParentUID)
}

func (suite *PlacesUsecaseTestSuite) TestUpdate_ParentNotVisible() {
	place := suite.mustCreate(ownerUID, "Mine", nil)
	other := suite.mustCreate(2, "Theirs", nil)

	_, err := suite.usecase.Update(context.Background(), ownerUID, place, usecase.PlacePatch{ParentUID: &other.UID, ParentSet: true})

	assert.ErrorIs(suite.T(), err, usecase.ErrParentNotFound)
}

func (suite *PlacesUsecaseTestSuite) TestDelete_ChildrenBecomeRoots() {
	root := suite.mustCreate(ownerUID, "Root", nil)
	childA := suite.mustCreate(ownerUID, "A", &root.UID)
	childB := suite.mustCreate(ownerUID, "B", &root.UID)

	err := suite.usecase.Delete(context.Background(), root)
	require.NoError(suite.T(), err)

	_, _, err = suite.usecase.Get(context.Background(), root.UID, ownerUID, false)
	assert.ErrorIs(suite.T(), err, usecase.ErrPlaceNotFound)

	for _, uid := range []int64{childA.UID, childB.UID} {
		place, _, err := suite.usecase.Get(context.Background(), uid, ownerUID, false)
		require.NoError(suite.T(), err)
		assert.Nil(suite.T(), place.ParentUID)
	}
}

func (suite *PlacesUsecaseTestSuite) TestList_ParentFilter() {
	root := suite.mustCreate(ownerUID, "Root", nil)
	suite.mustCreate(ownerUID, "A", &root.UID)
	suite.mustCreate(ownerUID, "B", &root.UID)
	suite.mustCreate(ownerUID, "Other Root", nil)
	suite.mustCreate(2, "Not Mine", nil)

	children, err := suite.usecase.List(context.Background(), ownerUID, model.ListFilter{ParentUID: &root.UID, ParentSet: true})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), children, 2)

	roots, err := suite.usecase.List(context.Background(), ownerUID, model.ListFilter{ParentSet: true})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), roots, 2)

	all, err := suite.usecase.List(context.Background(), ownerUID, model.ListFilter{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 4)
}

func TestPlacesUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(PlacesUsecaseTestSuite))
}
