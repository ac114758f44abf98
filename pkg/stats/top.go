package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UpdateTopMeasurementParticipants rebuilds the "top participants as of
// yesterday" leaderboard wholesale from the detail tables. It reads data
// the rollup may not have cleaned up yet, so the orchestrator runs it
// before the rollup touches yesterday's rows. The delete-and-reinsert swap
// runs in one transaction so readers never see an empty leaderboard.
func (c *Context) UpdateTopMeasurementParticipants(ctx context.Context, today time.Time) error {
	yesterday := Yesterday(today)

	err := c.DB.Client.BeginFunc(ctx, func(tx pgx.Tx) error {
		txCtx := c.DB.Client.WithTx(ctx, tx)
		return c.DB.RebuildTopMeasurementParticipants(txCtx, yesterday)
	})
	if err != nil {
		return err
	}

	c.Logger.Info("Rebuilt top-participants leaderboard", zap.Time("day", yesterday))
	return nil
}
