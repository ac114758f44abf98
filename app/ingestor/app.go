package ingestor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-network/stationstats/pkg/db/postgres"
	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
	"github.com/meridian-network/stationstats/pkg/logging"
	"github.com/meridian-network/stationstats/pkg/redis"
	"github.com/meridian-network/stationstats/pkg/stats"
	"github.com/meridian-network/stationstats/pkg/utils"
)

// App consumes measurement batches from the intake stream and folds them
// into the per-day detail tables. Batches are processed concurrently on a
// worker pool; each batch is one transaction, and the additive upserts keep
// concurrent batches from losing counts.
type App struct {
	Logger   *zap.Logger
	DB       *statsdb.DB
	Redis    *redis.Client
	Consumer *redis.StreamConsumer
	Stats    *stats.Context
}

// Initialize wires the ingestor: logger, store (with schema bootstrap),
// Redis intake stream, and the measurement-processing context.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, err := statsdb.New(ctx, logger, &postgres.PoolConfig{
		MinConns:        2,
		MaxConns:        int32(utils.EnvInt("POSTGRES_MAX_CONNS", 10)),
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		Component:       "ingestor",
	})
	if err != nil {
		logger.Fatal("Unable to initialize stats database", zap.Error(err))
	}

	if err := db.Init(ctx); err != nil {
		logger.Fatal("Unable to initialize stats tables", zap.Error(err))
	}

	redisClient, err := redis.NewClient(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to connect to Redis", zap.Error(err))
	}

	consumer, err := redis.NewStreamConsumer(redisClient, redis.StreamConsumerConfig{
		Stream:      utils.Env("MEASUREMENTS_STREAM", "measurements:batches"),
		Group:       utils.Env("MEASUREMENTS_GROUP", "stats-ingestors"),
		Consumer:    utils.Env("HOSTNAME", "ingestor-1"),
		Count:       int64(utils.EnvInt("INGEST_BATCH_COUNT", 50)),
		Concurrency: utils.EnvInt("INGEST_CONCURRENCY", 4),
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Unable to create stream consumer", zap.Error(err))
	}

	return &App{
		Logger:   logger,
		DB:       db,
		Redis:    redisClient,
		Consumer: consumer,
		Stats:    stats.NewContext(logger, db),
	}
}

// Start blocks consuming the intake stream until the context is cancelled.
func (a *App) Start(ctx context.Context) {
	a.Logger.Info("Ingestor started")
	if err := a.Consumer.Run(ctx, a.handleMessage); err != nil && ctx.Err() == nil {
		a.Logger.Fatal("Stream consumer stopped", zap.Error(err))
	}
	a.Stop()
}

// Stop releases the store and Redis connections.
func (a *App) Stop() {
	a.DB.Close()
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn("Error closing Redis client", zap.Error(err))
	}
	a.Logger.Info("Ingestor stopped")
}

// handleMessage decodes one stream entry and folds it into the detail
// tables. A returned error leaves the entry pending for redelivery.
func (a *App) handleMessage(ctx context.Context, msg redis.Message) error {
	batch, err := stats.ParseBatchMessage(msg.Values)
	if err != nil {
		// A malformed entry will never parse; log it and acknowledge so
		// it does not wedge the group.
		a.Logger.Error("Dropping malformed batch entry",
			zap.String("id", msg.ID),
			zap.Error(err))
		return nil
	}

	day, err := batch.ResolveDay(time.Now())
	if err != nil {
		a.Logger.Error("Dropping batch with invalid day",
			zap.String("id", msg.ID),
			zap.Error(err))
		return nil
	}

	if err := a.Stats.UpdatePlatformStats(ctx, batch.Measurements, day); err != nil {
		return err
	}

	a.Logger.Debug("Ingested measurement batch",
		zap.String("id", msg.ID),
		zap.Time("day", day),
		zap.Int("measurements", len(batch.Measurements)))
	return nil
}
