package auth

import (
	"fmt"

	"stashbox/internal/audit"
	authhttp "stashbox/internal/auth/adapter/http"
	"stashbox/internal/auth/adapter/persistence/mongodb"
	"stashbox/internal/auth/adapter/security"
	"stashbox/internal/auth/config"
	"stashbox/internal/auth/domain/repository"
	"stashbox/internal/auth/usecase"
	"stashbox/internal/shared/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthModule represents the complete authentication module.
type AuthModule struct {
	repository repository.AuthRepository
	codec      repository.TokenCodec
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	config     *config.Config
}

// NewAuthModule creates a new authentication module instance.
func NewAuthModule(
	db *mongo.Database,
	counters *database.Counters,
	tx database.TxRunner,
	auditor audit.Recorder,
	cfg *config.Config,
) (*AuthModule, error) {
	authRepo, err := mongodb.NewMongoAuthRepository(db, counters)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth repository: %w", err)
	}

	codec, err := security.NewJWTokenCodec(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	authUsecase := usecase.NewAuthUsecase(authRepo, codec, security.NewArgon2Hasher(), cfg)
	handler := authhttp.NewAuthHTTPHandler(authUsecase, tx, auditor, cfg)

	return &AuthModule{
		repository: authRepo,
		codec:      codec,
		usecase:    authUsecase,
		handler:    handler,
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router.
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.SetupAuthRoutes(router, am.GetMiddleware())
}

// AddPurgers registers owner-data purgers composed into the account-deletion
// cascade. Called by modules owning user data, before routes are served.
func (am *AuthModule) AddPurgers(purgers ...authhttp.OwnerDataPurger) {
	am.handler.AddPurgers(purgers...)
}

// GetUsecase returns the auth usecase for external access.
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware.
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return authhttp.NewAuthMiddleware(am.usecase)
}
