package items

import (
	"fmt"

	authhttp "stashbox/internal/auth/adapter/http"
	itemshttp "stashbox/internal/items/adapter/http"
	"stashbox/internal/items/adapter/persistence/mongodb"
	"stashbox/internal/items/domain/repository"
	"stashbox/internal/items/usecase"
	placeshttp "stashbox/internal/places/adapter/http"
	placesusecase "stashbox/internal/places/usecase"
	"stashbox/internal/shared/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// ItemsModule represents the complete items module.
type ItemsModule struct {
	repository repository.ItemRepository
	usecase    usecase.ItemsUsecaseInterface
	handler    *itemshttp.ItemsHTTPHandler
}

// NewItemsModule creates a new items module instance.
func NewItemsModule(
	db *mongo.Database,
	counters *database.Counters,
	tx database.TxRunner,
	places placesusecase.PlacesUsecaseInterface,
) (*ItemsModule, error) {
	itemRepo, err := mongodb.NewMongoItemRepository(db, counters)
	if err != nil {
		return nil, fmt.Errorf("failed to create item repository: %w", err)
	}

	itemsUsecase := usecase.NewItemsUsecase(itemRepo, places)
	handler := itemshttp.NewItemsHTTPHandler(itemsUsecase, tx)

	return &ItemsModule{
		repository: itemRepo,
		usecase:    itemsUsecase,
		handler:    handler,
	}, nil
}

// RegisterRoutes registers item routes with the provided router.
func (im *ItemsModule) RegisterRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	im.handler.SetupItemsRoutes(router, middleware)
}

// Purger returns the owner-data purger wired into the account-deletion
// cascade.
func (im *ItemsModule) Purger() authhttp.OwnerDataPurger {
	return im.repository
}

// Unlinker returns the place unlinker wired into the place-deletion cascade.
func (im *ItemsModule) Unlinker() placeshttp.PlaceUnlinker {
	return im.repository
}
