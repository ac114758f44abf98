package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UpdatePlatformStats is the single ingestion entry point: it resolves the
// batch's participant identities, folds the batch into the per-day detail
// tables, and records the day's participants. Counts are additive, so
// re-submitting the same batch double-counts; deduplication is the
// submission pipeline's responsibility.
func (c *Context) UpdatePlatformStats(ctx context.Context, batch []Measurement, day time.Time) error {
	if len(batch) == 0 {
		return nil
	}

	ids, err := c.MapParticipantIDs(ctx, DistinctAddresses(batch))
	if err != nil {
		return err
	}

	if err := c.UpdateStationsAndParticipants(ctx, batch, ids, day); err != nil {
		return err
	}

	deltas, err := FoldMeasurements(batch, ids, day)
	if err != nil {
		return err
	}
	return c.UpdateDailyParticipants(ctx, deltas.ParticipantIDs, day)
}

// UpdateStationsAndParticipants folds a measurement batch into the detail,
// active-station, and participant-subnet tables. The whole batch is applied
// in one transaction so concurrent readers never observe a half-applied
// batch. The id mapping must cover every address in the batch.
func (c *Context) UpdateStationsAndParticipants(ctx context.Context, batch []Measurement, ids map[string]int64, day time.Time) error {
	deltas, err := FoldMeasurements(batch, ids, day)
	if err != nil {
		return err
	}

	return c.DB.Client.BeginFunc(ctx, func(tx pgx.Tx) error {
		txCtx := c.DB.Client.WithTx(ctx, tx)

		if err := c.DB.UpsertStationDetails(txCtx, deltas.Details); err != nil {
			return err
		}
		if err := c.DB.InsertActiveStations(txCtx, deltas.ActiveStations); err != nil {
			return err
		}
		return c.DB.InsertParticipantSubnets(txCtx, deltas.Subnets)
	})
}

// UpdateDailyParticipants records that the given participants were seen on
// the given day, regardless of how their measurements were evaluated.
func (c *Context) UpdateDailyParticipants(ctx context.Context, participantIDs []int64, day time.Time) error {
	if len(participantIDs) == 0 {
		return nil
	}
	if err := c.DB.InsertDailyParticipants(ctx, DayOf(day), participantIDs); err != nil {
		return err
	}
	c.Logger.Debug("Recorded daily participants",
		zap.Time("day", DayOf(day)),
		zap.Int("participants", len(participantIDs)))
	return nil
}
