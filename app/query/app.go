package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridian-network/stationstats/app/query/types"
	"github.com/meridian-network/stationstats/pkg/db/postgres"
	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
	"github.com/meridian-network/stationstats/pkg/logging"
)

// Initialize initializes the query application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, err := statsdb.New(ctx, logger, &postgres.PoolConfig{
		MinConns:  2,
		MaxConns:  10,
		Component: "query",
	})
	if err != nil {
		logger.Fatal("Unable to initialize stats database", zap.Error(err))
	}

	if err := db.Init(ctx); err != nil {
		logger.Fatal("Unable to initialize stats tables", zap.Error(err))
	}

	return &types.App{
		DB:     db,
		Logger: logger,
	}
}
