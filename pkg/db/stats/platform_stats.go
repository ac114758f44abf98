package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-network/stationstats/pkg/db/models"
)

// UpsertDailyPlatformStats writes one summary row for a day. The summary is
// always recomputed from the same underlying detail rows, so replacing the
// previous values keeps the rollup idempotent.
func (db *DB) UpsertDailyPlatformStats(ctx context.Context, s *models.DailyPlatformStats) error {
	query := `
		INSERT INTO daily_platform_stats (
			day, accepted_measurement_count, total_measurement_count,
			station_count, participant_address_count, inet_group_count
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (day) DO UPDATE SET
			accepted_measurement_count = EXCLUDED.accepted_measurement_count,
			total_measurement_count = EXCLUDED.total_measurement_count,
			station_count = EXCLUDED.station_count,
			participant_address_count = EXCLUDED.participant_address_count,
			inet_group_count = EXCLUDED.inet_group_count
	`
	return db.Client.Exec(ctx, query,
		s.Day, s.AcceptedMeasurementCount, s.TotalMeasurementCount,
		s.StationCount, s.ParticipantAddressCount, s.InetGroupCount)
}

// GetDailyPlatformStats returns summary rows with day in [from, to],
// oldest first.
func (db *DB) GetDailyPlatformStats(ctx context.Context, from, to time.Time) ([]models.DailyPlatformStats, error) {
	query := `
		SELECT day, accepted_measurement_count, total_measurement_count,
		       station_count, participant_address_count, inet_group_count
		FROM daily_platform_stats
		WHERE day >= $1 AND day <= $2
		ORDER BY day
	`
	rows, err := db.Client.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily platform stats: %w", err)
	}
	defer rows.Close()

	var out []models.DailyPlatformStats
	for rows.Next() {
		var s models.DailyPlatformStats
		if err := rows.Scan(&s.Day, &s.AcceptedMeasurementCount, &s.TotalMeasurementCount,
			&s.StationCount, &s.ParticipantAddressCount, &s.InetGroupCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetDailyPlatformStatsForDay returns the summary row for one day.
func (db *DB) GetDailyPlatformStatsForDay(ctx context.Context, day time.Time) (*models.DailyPlatformStats, error) {
	query := `
		SELECT day, accepted_measurement_count, total_measurement_count,
		       station_count, participant_address_count, inet_group_count
		FROM daily_platform_stats
		WHERE day = $1
	`
	var s models.DailyPlatformStats
	err := db.Client.QueryRow(ctx, query, day).Scan(
		&s.Day, &s.AcceptedMeasurementCount, &s.TotalMeasurementCount,
		&s.StationCount, &s.ParticipantAddressCount, &s.InetGroupCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
