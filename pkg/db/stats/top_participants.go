package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-network/stationstats/pkg/db/models"
)

// RebuildTopMeasurementParticipants replaces the leaderboard wholesale with
// the per-participant aggregates for the given day. It reads the detail
// tables directly, so it must run before (or independent of) the rollup
// that deletes them. Call inside a transaction for an atomic swap.
func (db *DB) RebuildTopMeasurementParticipants(ctx context.Context, day time.Time) error {
	if err := db.Client.Exec(ctx, `DELETE FROM top_measurement_participants_yesterday`); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}

	// Ties rank by address so the ordering is total.
	query := `
		INSERT INTO top_measurement_participants_yesterday (
			day, participant_address, inet_group_count,
			station_count, accepted_measurement_count
		)
		SELECT d.day,
		       p.address,
		       COALESCE(sn.subnet_count, 0),
		       COUNT(DISTINCT d.station_id),
		       SUM(d.accepted_measurement_count)
		FROM recent_station_details d
		JOIN participants p ON p.id = d.participant_id
		LEFT JOIN (
			SELECT participant_id, COUNT(*) AS subnet_count
			FROM recent_participant_subnets
			WHERE day = $1
			GROUP BY participant_id
		) sn ON sn.participant_id = d.participant_id
		WHERE d.day = $1
		GROUP BY d.day, p.address, sn.subnet_count
		ORDER BY SUM(d.accepted_measurement_count) DESC, p.address
	`
	if err := db.Client.Exec(ctx, query, day); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}

// GetTopParticipantsYesterday returns the materialized leaderboard, best
// first.
func (db *DB) GetTopParticipantsYesterday(ctx context.Context) ([]models.TopParticipant, error) {
	query := `
		SELECT day, participant_address, inet_group_count,
		       station_count, accepted_measurement_count
		FROM top_measurement_participants_yesterday
		ORDER BY accepted_measurement_count DESC, participant_address
	`
	rows, err := db.Client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []models.TopParticipant
	for rows.Next() {
		var t models.TopParticipant
		if err := rows.Scan(&t.Day, &t.ParticipantAddress, &t.InetGroupCount,
			&t.StationCount, &t.AcceptedMeasurementCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
