package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AggregateAndCleanUpRecentData rolls every detail day outside the
// retention window up into one daily_platform_stats row and deletes the
// consumed detail and subnet rows. Summary upsert and deletion for a day
// share one transaction, so a crash between them cannot lose data, and a
// re-run finds no eligible days and is a no-op.
//
// today is injected rather than read from the clock so the job is testable
// and free of midnight boundary races.
func (c *Context) AggregateAndCleanUpRecentData(ctx context.Context, today time.Time) error {
	cutoff := RollupCutoff(today)

	days, err := c.DB.ListDetailDaysBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		c.Logger.Debug("No detail days eligible for rollup", zap.Time("cutoff", cutoff))
		return nil
	}

	for _, day := range days {
		if err := c.rollUpDay(ctx, day); err != nil {
			return fmt.Errorf("rollup for %s: %w", day.Format("2006-01-02"), err)
		}
	}
	return nil
}

func (c *Context) rollUpDay(ctx context.Context, day time.Time) error {
	return c.DB.Client.BeginFunc(ctx, func(tx pgx.Tx) error {
		txCtx := c.DB.Client.WithTx(ctx, tx)

		summary, err := c.DB.AggregateDay(txCtx, day)
		if err != nil {
			return err
		}
		if err := c.DB.UpsertDailyPlatformStats(txCtx, summary); err != nil {
			return err
		}
		if err := c.DB.DeleteStationDetails(txCtx, day); err != nil {
			return err
		}
		if err := c.DB.DeleteParticipantSubnets(txCtx, day); err != nil {
			return err
		}

		c.Logger.Info("Rolled up detail rows into daily summary",
			zap.Time("day", day),
			zap.Int64("accepted", summary.AcceptedMeasurementCount),
			zap.Int64("total", summary.TotalMeasurementCount),
			zap.Int64("stations", summary.StationCount),
			zap.Int64("participants", summary.ParticipantAddressCount),
			zap.Int64("subnets", summary.InetGroupCount))
		return nil
	})
}
