package stats

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridian-network/stationstats/pkg/db/models"
	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
)

// newTestContext connects to the database named by POSTGRES_URL, resets
// every table, and returns a ready Context. Tests are skipped when no
// database is available.
func newTestContext(t *testing.T) (*Context, context.Context) {
	t.Helper()
	if os.Getenv("POSTGRES_URL") == "" {
		t.Skip("POSTGRES_URL not set; skipping integration test")
	}

	ctx := context.Background()
	db, err := statsdb.New(ctx, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Init(ctx))

	require.NoError(t, db.Client.Exec(ctx, `
		TRUNCATE recent_station_details, recent_active_stations,
		         recent_participant_subnets, daily_participants,
		         daily_platform_stats, monthly_active_station_count,
		         top_measurement_participants_yesterday;
	`))
	require.NoError(t, db.Client.Exec(ctx, `TRUNCATE participants RESTART IDENTITY CASCADE`))

	return NewContext(zap.NewNop(), db), ctx
}

func countRows(t *testing.T, c *Context, ctx context.Context, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, c.DB.Client.QueryRow(ctx, query, args...).Scan(&count))
	return count
}

func TestUpdatePlatformStats(t *testing.T) {
	c, ctx := newTestContext(t)
	day := date(2026, 8, 20)

	require.NoError(t, c.UpdatePlatformStats(ctx, exampleBatch(), day))

	ids, err := c.MapParticipantIDs(ctx, []string{"0x10", "0x20"})
	require.NoError(t, err)

	d1, err := c.DB.GetStationDetail(ctx, day, "station1", ids["0x10"])
	require.NoError(t, err)
	assert.Equal(t, int64(2), d1.AcceptedMeasurementCount)
	assert.Equal(t, int64(3), d1.TotalMeasurementCount)

	d2, err := c.DB.GetStationDetail(ctx, day, "station2", ids["0x20"])
	require.NoError(t, err)
	assert.Equal(t, int64(1), d2.AcceptedMeasurementCount)
	assert.Equal(t, int64(1), d2.TotalMeasurementCount)

	assert.Equal(t, int64(2), countRows(t, c, ctx,
		`SELECT COUNT(*) FROM recent_active_stations WHERE day = $1`, day))
	assert.Equal(t, int64(3), countRows(t, c, ctx,
		`SELECT COUNT(*) FROM recent_participant_subnets WHERE day = $1`, day))

	// Every participant in the batch was seen, including the one whose
	// task was not in round.
	seen, err := c.DB.CountDailyParticipants(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seen)
}

// TestDetailUpdaterAdditivity verifies the updater is additive by design:
// re-ingesting the same batch doubles the counts.
func TestDetailUpdaterAdditivity(t *testing.T) {
	c, ctx := newTestContext(t)
	day := date(2026, 8, 20)

	require.NoError(t, c.UpdatePlatformStats(ctx, exampleBatch(), day))
	require.NoError(t, c.UpdatePlatformStats(ctx, exampleBatch(), day))

	ids, err := c.MapParticipantIDs(ctx, []string{"0x10"})
	require.NoError(t, err)

	d, err := c.DB.GetStationDetail(ctx, day, "station1", ids["0x10"])
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.AcceptedMeasurementCount)
	assert.Equal(t, int64(6), d.TotalMeasurementCount)

	// The set-valued tables are unchanged by the repeat.
	assert.Equal(t, int64(2), countRows(t, c, ctx,
		`SELECT COUNT(*) FROM recent_active_stations WHERE day = $1`, day))
	assert.Equal(t, int64(3), countRows(t, c, ctx,
		`SELECT COUNT(*) FROM recent_participant_subnets WHERE day = $1`, day))
}

func seedDetailDay(t *testing.T, c *Context, ctx context.Context, day time.Time) {
	t.Helper()

	ids, err := c.MapParticipantIDs(ctx, []string{"0x10", "0x20"})
	require.NoError(t, err)

	require.NoError(t, c.DB.UpsertStationDetails(ctx, []models.StationDetail{
		{Day: day, StationID: "station1", ParticipantID: ids["0x10"], AcceptedMeasurementCount: 10, TotalMeasurementCount: 20},
		{Day: day, StationID: "station2", ParticipantID: ids["0x20"], AcceptedMeasurementCount: 5, TotalMeasurementCount: 10},
	}))
	require.NoError(t, c.DB.InsertParticipantSubnets(ctx, []models.ParticipantSubnet{
		{Day: day, ParticipantID: ids["0x10"], Subnet: "subnet1"},
		{Day: day, ParticipantID: ids["0x20"], Subnet: "subnet2"},
	}))
}

// TestRollupIdempotence runs the rollup twice and expects exactly one
// summary row per eligible day and no leftover detail, both times.
func TestRollupIdempotence(t *testing.T) {
	c, ctx := newTestContext(t)

	today := date(2026, 8, 25)
	oldDay := today.AddDate(0, 0, -3)
	seedDetailDay(t, c, ctx, oldDay)

	for run := 0; run < 2; run++ {
		require.NoError(t, c.AggregateAndCleanUpRecentData(ctx, today))

		summary, err := c.DB.GetDailyPlatformStatsForDay(ctx, oldDay)
		require.NoError(t, err, "run %d", run)
		assert.Equal(t, int64(15), summary.AcceptedMeasurementCount)
		assert.Equal(t, int64(30), summary.TotalMeasurementCount)
		assert.Equal(t, int64(2), summary.StationCount)
		assert.Equal(t, int64(2), summary.ParticipantAddressCount)
		assert.Equal(t, int64(2), summary.InetGroupCount)

		assert.Equal(t, int64(1), countRows(t, c, ctx,
			`SELECT COUNT(*) FROM daily_platform_stats`))
		assert.Equal(t, int64(0), countRows(t, c, ctx,
			`SELECT COUNT(*) FROM recent_station_details WHERE day < $1`, RollupCutoff(today)))
		assert.Equal(t, int64(0), countRows(t, c, ctx,
			`SELECT COUNT(*) FROM recent_participant_subnets WHERE day < $1`, RollupCutoff(today)))
	}
}

// TestRollupKeepsRetentionWindow verifies today's and yesterday's detail
// rows survive the rollup at full granularity.
func TestRollupKeepsRetentionWindow(t *testing.T) {
	c, ctx := newTestContext(t)

	today := date(2026, 8, 25)
	seedDetailDay(t, c, ctx, today)
	seedDetailDay(t, c, ctx, Yesterday(today))

	require.NoError(t, c.AggregateAndCleanUpRecentData(ctx, today))

	assert.Equal(t, int64(4), countRows(t, c, ctx,
		`SELECT COUNT(*) FROM recent_station_details`))
	assert.Equal(t, int64(0), countRows(t, c, ctx,
		`SELECT COUNT(*) FROM daily_platform_stats`))
}

// TestMonthlyIdempotence rolls the previous month's active stations up
// twice; the count is stable and the consumed rows stay gone.
func TestMonthlyIdempotence(t *testing.T) {
	c, ctx := newTestContext(t)

	today := date(2026, 8, 25)
	lastMonth := date(2026, 7, 1)

	require.NoError(t, c.DB.InsertActiveStations(ctx, []models.ActiveStation{
		{Day: date(2026, 7, 3), StationID: "station1"},
		{Day: date(2026, 7, 14), StationID: "station2"},
		{Day: date(2026, 7, 28), StationID: "station1"},
		// Current month: must not be consumed yet.
		{Day: date(2026, 8, 2), StationID: "station3"},
	}))

	for run := 0; run < 2; run++ {
		require.NoError(t, c.UpdateMonthlyActiveStationCount(ctx, today))

		months, err := c.DB.GetMonthlyActiveStationCounts(ctx)
		require.NoError(t, err, "run %d", run)
		require.Len(t, months, 1)
		assert.Equal(t, lastMonth.Format(DayFormat), months[0].Month.Format(DayFormat))
		assert.Equal(t, int64(2), months[0].StationCount)

		assert.Equal(t, int64(0), countRows(t, c, ctx,
			`SELECT COUNT(*) FROM recent_active_stations WHERE day < $1`, MonthOf(today)))
		assert.Equal(t, int64(1), countRows(t, c, ctx,
			`SELECT COUNT(*) FROM recent_active_stations`))
	}
}

// TestTopParticipantsRefresh verifies the leaderboard is a wholesale
// rebuild for yesterday, ranked by accepted count with address breaking
// ties.
func TestTopParticipantsRefresh(t *testing.T) {
	c, ctx := newTestContext(t)

	today := date(2026, 8, 25)
	yesterday := Yesterday(today)

	require.NoError(t, c.UpdatePlatformStats(ctx, exampleBatch(), yesterday))
	require.NoError(t, c.UpdateTopMeasurementParticipants(ctx, today))

	rows, err := c.DB.GetTopParticipantsYesterday(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "0x10", rows[0].ParticipantAddress)
	assert.Equal(t, int64(2), rows[0].AcceptedMeasurementCount)
	assert.Equal(t, int64(2), rows[0].InetGroupCount)
	assert.Equal(t, int64(1), rows[0].StationCount)

	assert.Equal(t, "0x20", rows[1].ParticipantAddress)
	assert.Equal(t, int64(1), rows[1].AcceptedMeasurementCount)

	// More data for yesterday, then a refresh: the old content is
	// replaced, not appended to.
	require.NoError(t, c.UpdatePlatformStats(ctx, exampleBatch(), yesterday))
	require.NoError(t, c.UpdateTopMeasurementParticipants(ctx, today))

	rows, err = c.DB.GetTopParticipantsYesterday(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(4), rows[0].AcceptedMeasurementCount)
}
