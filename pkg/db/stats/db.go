package stats

import (
	"context"

	"go.uber.org/zap"

	"github.com/meridian-network/stationstats/pkg/db/postgres"
)

// DB is the store for the platform-statistics tables. All methods resolve
// their executor through the client context, so they transparently join a
// transaction opened with Client.BeginFunc + Client.WithTx.
type DB struct {
	Client *postgres.Client
	Logger *zap.Logger
}

// New connects to Postgres and returns a store. It does not create tables;
// call Init for that.
func New(ctx context.Context, logger *zap.Logger, poolConfig ...*postgres.PoolConfig) (*DB, error) {
	client, err := postgres.New(ctx, logger, poolConfig...)
	if err != nil {
		return nil, err
	}
	return &DB{Client: client, Logger: logger}, nil
}

// Init creates all tables and indexes if they do not exist.
func (db *DB) Init(ctx context.Context) error {
	inits := []func(context.Context) error{
		db.initParticipants,
		db.initStationDetails,
		db.initActiveStations,
		db.initParticipantSubnets,
		db.initDailyParticipants,
		db.initDailyPlatformStats,
		db.initMonthlyActiveStationCount,
		db.initTopMeasurementParticipants,
	}
	for _, init := range inits {
		if err := init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Health verifies the underlying connection is alive.
func (db *DB) Health(ctx context.Context) error {
	return db.Client.Ping(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() {
	if db.Client != nil {
		db.Client.Close()
	}
}
