package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UpdateMonthlyActiveStationCount summarizes every fully elapsed month that
// still has active-station rows into one monthly_active_station_count row
// and deletes the consumed rows. Upsert and deletion share one transaction
// per month; once a month's rows are gone, re-running is a no-op.
func (c *Context) UpdateMonthlyActiveStationCount(ctx context.Context, today time.Time) error {
	currentMonth := MonthOf(today)

	months, err := c.DB.ListActiveStationMonthsBefore(ctx, currentMonth)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		c.Logger.Debug("No elapsed months with active-station rows", zap.Time("current_month", currentMonth))
		return nil
	}

	for _, month := range months {
		if err := c.rollUpMonth(ctx, month); err != nil {
			return fmt.Errorf("monthly rollup for %s: %w", month.Format("2006-01"), err)
		}
	}
	return nil
}

func (c *Context) rollUpMonth(ctx context.Context, month time.Time) error {
	return c.DB.Client.BeginFunc(ctx, func(tx pgx.Tx) error {
		txCtx := c.DB.Client.WithTx(ctx, tx)

		count, err := c.DB.CountDistinctActiveStations(txCtx, month)
		if err != nil {
			return err
		}
		if err := c.DB.UpsertMonthlyActiveStationCount(txCtx, month, count); err != nil {
			return err
		}
		if err := c.DB.DeleteActiveStationsInMonth(txCtx, month); err != nil {
			return err
		}

		c.Logger.Info("Recorded monthly active-station count",
			zap.Time("month", month),
			zap.Int64("stations", count))
		return nil
	})
}
