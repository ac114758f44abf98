package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-network/stationstats/pkg/db/models"
)

// ListActiveStationMonthsBefore returns the distinct months (first-of-month
// dates) that still have active-station rows and lie strictly before the
// given month start, oldest first.
func (db *DB) ListActiveStationMonthsBefore(ctx context.Context, monthStart time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT DATE_TRUNC('month', day)::DATE AS month
		FROM recent_active_stations
		WHERE day < $1
		ORDER BY month
	`
	rows, err := db.Client.Query(ctx, query, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to list active-station months: %w", err)
	}
	defer rows.Close()

	var months []time.Time
	for rows.Next() {
		var month time.Time
		if err := rows.Scan(&month); err != nil {
			return nil, err
		}
		months = append(months, month)
	}
	return months, rows.Err()
}

// CountDistinctActiveStations counts the distinct stations with at least one
// active-station row during the month starting at monthStart.
func (db *DB) CountDistinctActiveStations(ctx context.Context, monthStart time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT station_id)
		FROM recent_active_stations
		WHERE day >= $1 AND day < $1 + INTERVAL '1 month'
	`
	var count int64
	err := db.Client.QueryRow(ctx, query, monthStart).Scan(&count)
	return count, err
}

// UpsertMonthlyActiveStationCount writes one row for a fully elapsed month.
func (db *DB) UpsertMonthlyActiveStationCount(ctx context.Context, month time.Time, stationCount int64) error {
	query := `
		INSERT INTO monthly_active_station_count (month, station_count)
		VALUES ($1, $2)
		ON CONFLICT (month) DO UPDATE SET
			station_count = EXCLUDED.station_count
	`
	return db.Client.Exec(ctx, query, month, stationCount)
}

// DeleteActiveStationsInMonth removes the active-station rows consumed by
// the monthly rollup.
func (db *DB) DeleteActiveStationsInMonth(ctx context.Context, monthStart time.Time) error {
	query := `
		DELETE FROM recent_active_stations
		WHERE day >= $1 AND day < $1 + INTERVAL '1 month'
	`
	return db.Client.Exec(ctx, query, monthStart)
}

// GetMonthlyActiveStationCounts returns all monthly rows, oldest first.
func (db *DB) GetMonthlyActiveStationCounts(ctx context.Context) ([]models.MonthlyActiveStationCount, error) {
	query := `
		SELECT month, station_count
		FROM monthly_active_station_count
		ORDER BY month
	`
	rows, err := db.Client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly station counts: %w", err)
	}
	defer rows.Close()

	var out []models.MonthlyActiveStationCount
	for rows.Next() {
		var m models.MonthlyActiveStationCount
		if err := rows.Scan(&m.Month, &m.StationCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
