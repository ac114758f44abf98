package aggregator

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/meridian-network/stationstats/pkg/db/postgres"
	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
	"github.com/meridian-network/stationstats/pkg/logging"
	"github.com/meridian-network/stationstats/pkg/stats"
	"github.com/meridian-network/stationstats/pkg/utils"
)

// App runs the scheduled maintenance jobs: the leaderboard refresh, the
// daily rollup-and-retention pass, and the monthly active-station rollup.
// Jobs run strictly in sequence on every cron tick, each on its own
// connection, and one failing job never blocks the rest.
type App struct {
	Logger   *zap.Logger
	Cron     *cron.Cron
	CronSpec string
	Jobs     []stats.Job
}

// Initialize wires the aggregator and bootstraps the schema once, so the
// jobs never race table creation.
func Initialize(ctx context.Context) *App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, err := openStore(ctx, logger)
	if err != nil {
		logger.Fatal("Unable to initialize stats database", zap.Error(err))
	}
	if err := db.Init(ctx); err != nil {
		logger.Fatal("Unable to initialize stats tables", zap.Error(err))
	}
	db.Close()

	app := &App{
		Logger:   logger,
		CronSpec: utils.Env("REFRESH_CRON", "0 0 * * * *"), // hourly, with seconds field
		Jobs:     stats.DefaultJobs(logger),
	}

	if err := app.setupScheduler(ctx); err != nil {
		logger.Fatal("Unable to set up scheduler", zap.Error(err))
	}

	return app
}

func (a *App) setupScheduler(ctx context.Context) error {
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := a.Cron.AddFunc(a.CronSpec, func() {
		// keep each run bounded
		rctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		a.refresh(rctx)
	})
	return err
}

// refresh runs all jobs once, each on a fresh connection.
func (a *App) refresh(ctx context.Context) {
	stats.RefreshDatabase(ctx, a.Logger, func(ctx context.Context) (*statsdb.DB, error) {
		return openStore(ctx, a.Logger)
	}, a.Jobs)
}

func openStore(ctx context.Context, logger *zap.Logger) (*statsdb.DB, error) {
	return statsdb.New(ctx, logger, &postgres.PoolConfig{
		MinConns:        1,
		MaxConns:        2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		Component:       "aggregator",
	})
}

// Start runs one refresh immediately, then follows the cron schedule until
// the context is cancelled.
func (a *App) Start(ctx context.Context) {
	a.refresh(ctx)

	a.Cron.Start()
	a.Logger.Info("Aggregator cron started", zap.String("cronSpec", a.CronSpec))

	<-ctx.Done()
	a.Stop()
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (a *App) Stop() {
	stopCtx := a.Cron.Stop()
	<-stopCtx.Done()
	a.Logger.Info("Aggregator stopped")
}
