package database

import (
	"context"
	"fmt"

	"stashbox/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner scopes a unit of work to one transaction: fn's writes commit
// atomically on success, and any error returned by fn rolls everything back
// before it is propagated. Handlers compose usecase calls inside one run so a
// cancelled or failed request never leaves partial state behind.
type TxRunner interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner implements TxRunner on a MongoDB client session.
type MongoTxRunner struct {
	client *mongo.Client
	logger logger.Logger
}

// NewMongoTxRunner creates a transaction runner for the given client.
func NewMongoTxRunner(client *mongo.Client, log logger.Logger) *MongoTxRunner {
	return &MongoTxRunner{
		client: client,
		logger: log.WithComponent("database"),
	}
}

// RunTransaction implements TxRunner. The context passed to fn is a session
// context; repository operations issued with it participate in the
// transaction.
func (r *MongoTxRunner) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		r.logger.Errorf("failed to start session: %v", err)
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if err := fn(sc); err != nil {
			if abortErr := session.AbortTransaction(sc); abortErr != nil {
				r.logger.Errorf("failed to abort transaction: %v", abortErr)
			}
			return err
		}

		if err := session.CommitTransaction(sc); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// NopTxRunner runs fn directly without transaction scoping. Used by tests and
// by deployments whose MongoDB topology has no replica set.
type NopTxRunner struct{}

// RunTransaction implements TxRunner.
func (NopTxRunner) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	_ TxRunner = (*MongoTxRunner)(nil)
	_ TxRunner = NopTxRunner{}
)
