package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/meridian-network/stationstats/pkg/db/models"
)

// executeBatch sends a pgx batch through the context executor and surfaces
// the first statement error.
func (db *DB) executeBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := db.Client.GetExecutor(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d failed: %w", i, err)
		}
	}
	return nil
}

// UpsertStationDetails folds detail deltas into recent_station_details.
// The upsert is additive: existing counters are incremented in place, never
// read into memory first, so concurrent writers cannot lose updates.
func (db *DB) UpsertStationDetails(ctx context.Context, details []models.StationDetail) error {
	if len(details) == 0 {
		return nil
	}

	query := `
		INSERT INTO recent_station_details (
			day, station_id, participant_id,
			accepted_measurement_count, total_measurement_count
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (day, station_id, participant_id) DO UPDATE SET
			accepted_measurement_count = recent_station_details.accepted_measurement_count + EXCLUDED.accepted_measurement_count,
			total_measurement_count = recent_station_details.total_measurement_count + EXCLUDED.total_measurement_count
	`

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(query, d.Day, d.StationID, d.ParticipantID,
			d.AcceptedMeasurementCount, d.TotalMeasurementCount)
	}
	return db.executeBatch(ctx, batch)
}

// InsertActiveStations records stations as active for their day.
// Set semantics: repeats are no-ops.
func (db *DB) InsertActiveStations(ctx context.Context, stations []models.ActiveStation) error {
	if len(stations) == 0 {
		return nil
	}

	query := `
		INSERT INTO recent_active_stations (day, station_id)
		VALUES ($1, $2)
		ON CONFLICT (day, station_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, s := range stations {
		batch.Queue(query, s.Day, s.StationID)
	}
	return db.executeBatch(ctx, batch)
}

// InsertParticipantSubnets records the subnets participants were observed
// from on their day. Set semantics: repeats are no-ops.
func (db *DB) InsertParticipantSubnets(ctx context.Context, subnets []models.ParticipantSubnet) error {
	if len(subnets) == 0 {
		return nil
	}

	query := `
		INSERT INTO recent_participant_subnets (day, participant_id, subnet)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, participant_id, subnet) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, s := range subnets {
		batch.Queue(query, s.Day, s.ParticipantID, s.Subnet)
	}
	return db.executeBatch(ctx, batch)
}

// GetStationDetail retrieves one detail row.
func (db *DB) GetStationDetail(ctx context.Context, day time.Time, stationID string, participantID int64) (*models.StationDetail, error) {
	query := `
		SELECT day, station_id, participant_id,
		       accepted_measurement_count, total_measurement_count
		FROM recent_station_details
		WHERE day = $1 AND station_id = $2 AND participant_id = $3
	`

	var d models.StationDetail
	err := db.Client.QueryRow(ctx, query, day, stationID, participantID).Scan(
		&d.Day, &d.StationID, &d.ParticipantID,
		&d.AcceptedMeasurementCount, &d.TotalMeasurementCount,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDetailDaysBefore returns the distinct detail days strictly before
// cutoff, oldest first. These are the days eligible for rollup.
func (db *DB) ListDetailDaysBefore(ctx context.Context, cutoff time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT day FROM recent_station_details
		WHERE day < $1
		ORDER BY day
	`
	rows, err := db.Client.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list detail days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// AggregateDay computes the platform summary for one day from the detail
// and subnet tables. It does not write anything.
func (db *DB) AggregateDay(ctx context.Context, day time.Time) (*models.DailyPlatformStats, error) {
	detailQuery := `
		SELECT COALESCE(SUM(accepted_measurement_count), 0),
		       COALESCE(SUM(total_measurement_count), 0),
		       COUNT(DISTINCT station_id),
		       COUNT(DISTINCT participant_id)
		FROM recent_station_details
		WHERE day = $1
	`

	summary := &models.DailyPlatformStats{Day: day}
	err := db.Client.QueryRow(ctx, detailQuery, day).Scan(
		&summary.AcceptedMeasurementCount,
		&summary.TotalMeasurementCount,
		&summary.StationCount,
		&summary.ParticipantAddressCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate detail rows for %s: %w", day.Format("2006-01-02"), err)
	}

	// Subnet rows are already distinct per (participant, subnet), but two
	// participants can share a subnet, so count distinct subnet values.
	subnetQuery := `
		SELECT COUNT(DISTINCT subnet) FROM recent_participant_subnets WHERE day = $1
	`
	if err := db.Client.QueryRow(ctx, subnetQuery, day).Scan(&summary.InetGroupCount); err != nil {
		return nil, fmt.Errorf("failed to count subnets for %s: %w", day.Format("2006-01-02"), err)
	}

	return summary, nil
}

// DeleteStationDetails removes all detail rows for a day.
func (db *DB) DeleteStationDetails(ctx context.Context, day time.Time) error {
	return db.Client.Exec(ctx, `DELETE FROM recent_station_details WHERE day = $1`, day)
}

// DeleteParticipantSubnets removes all subnet rows for a day.
func (db *DB) DeleteParticipantSubnets(ctx context.Context, day time.Time) error {
	return db.Client.Exec(ctx, `DELETE FROM recent_participant_subnets WHERE day = $1`, day)
}
