package stats

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// InsertDailyParticipants ensures a (day, participant) row exists for each
// id. Set semantics: re-inserting a participant for the same day is a no-op.
func (db *DB) InsertDailyParticipants(ctx context.Context, day time.Time, participantIDs []int64) error {
	if len(participantIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_participants (day, participant_id)
		VALUES ($1, $2)
		ON CONFLICT (day, participant_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, id := range participantIDs {
		batch.Queue(query, day, id)
	}
	return db.executeBatch(ctx, batch)
}

// CountDailyParticipants returns how many distinct participants were seen
// on a day.
func (db *DB) CountDailyParticipants(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := db.Client.QueryRow(ctx,
		`SELECT COUNT(*) FROM daily_participants WHERE day = $1`, day).Scan(&count)
	return count, err
}
