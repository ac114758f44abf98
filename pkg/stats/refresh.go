package stats

import (
	"context"
	"time"

	"go.uber.org/zap"

	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
)

// Job is one named maintenance task run by RefreshDatabase.
type Job struct {
	Name string
	Run  func(ctx context.Context, db *statsdb.DB) error
}

// StoreFactory opens a fresh store for one job. Each job gets its own
// connection so a failing job cannot corrupt connection state for the next.
type StoreFactory func(ctx context.Context) (*statsdb.DB, error)

// RefreshDatabase runs the jobs strictly in sequence. A failure in one job
// is logged with the job's identity and does not stop the rest, so a broken
// rollup never blocks the monthly job or the leaderboard refresh.
func RefreshDatabase(ctx context.Context, logger *zap.Logger, open StoreFactory, jobs []Job) {
	for _, job := range jobs {
		db, err := open(ctx)
		if err != nil {
			logger.Error("Failed to open store for job",
				zap.String("job", job.Name),
				zap.Error(err))
			continue
		}

		start := time.Now()
		if err := job.Run(ctx, db); err != nil {
			logger.Error("Job failed",
				zap.String("job", job.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		} else {
			logger.Info("Job finished",
				zap.String("job", job.Name),
				zap.Duration("elapsed", time.Since(start)))
		}

		db.Close()
	}
}

// DefaultJobs returns the scheduled maintenance jobs in their required
// order: the leaderboard refresh reads yesterday's detail rows, so it runs
// before the rollup that deletes them.
func DefaultJobs(logger *zap.Logger) []Job {
	run := func(fn func(c *Context, ctx context.Context, today time.Time) error) func(ctx context.Context, db *statsdb.DB) error {
		return func(ctx context.Context, db *statsdb.DB) error {
			return fn(NewContext(logger, db), ctx, time.Now().UTC())
		}
	}

	return []Job{
		{
			Name: "update_top_measurement_participants",
			Run: run(func(c *Context, ctx context.Context, today time.Time) error {
				return c.UpdateTopMeasurementParticipants(ctx, today)
			}),
		},
		{
			Name: "aggregate_and_clean_up_recent_data",
			Run: run(func(c *Context, ctx context.Context, today time.Time) error {
				return c.AggregateAndCleanUpRecentData(ctx, today)
			}),
		},
		{
			Name: "update_monthly_active_station_count",
			Run: run(func(c *Context, ctx context.Context, today time.Time) error {
				return c.UpdateMonthlyActiveStationCount(ctx, today)
			}),
		},
	}
}
