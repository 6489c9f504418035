package places

import (
	"fmt"

	"stashbox/internal/audit"
	authhttp "stashbox/internal/auth/adapter/http"
	placeshttp "stashbox/internal/places/adapter/http"
	"stashbox/internal/places/adapter/persistence/mongodb"
	"stashbox/internal/places/domain/repository"
	"stashbox/internal/places/usecase"
	"stashbox/internal/shared/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// PlacesModule represents the complete place-tree module.
type PlacesModule struct {
	repository repository.PlaceRepository
	usecase    usecase.PlacesUsecaseInterface
	handler    *placeshttp.PlacesHTTPHandler
}

// NewPlacesModule creates a new places module instance.
func NewPlacesModule(
	db *mongo.Database,
	counters *database.Counters,
	tx database.TxRunner,
	auditor audit.Recorder,
) (*PlacesModule, error) {
	placeRepo, err := mongodb.NewMongoPlaceRepository(db, counters)
	if err != nil {
		return nil, fmt.Errorf("failed to create place repository: %w", err)
	}

	placesUsecase := usecase.NewPlacesUsecase(placeRepo)
	handler := placeshttp.NewPlacesHTTPHandler(placesUsecase, tx, auditor)

	return &PlacesModule{
		repository: placeRepo,
		usecase:    placesUsecase,
		handler:    handler,
	}, nil
}

// RegisterRoutes registers place routes with the provided router.
func (pm *PlacesModule) RegisterRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	pm.handler.SetupPlacesRoutes(router, middleware)
}

// AddUnlinkers registers place unlinkers from modules that reference places.
func (pm *PlacesModule) AddUnlinkers(unlinkers ...placeshttp.PlaceUnlinker) {
	pm.handler.AddUnlinkers(unlinkers...)
}

// GetUsecase returns the places usecase for external access.
func (pm *PlacesModule) GetUsecase() usecase.PlacesUsecaseInterface {
	return pm.usecase
}

// Purger returns the owner-data purger wired into the account-deletion
// cascade.
func (pm *PlacesModule) Purger() authhttp.OwnerDataPurger {
	return pm.repository
}
