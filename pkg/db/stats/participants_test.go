package stats

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) (*DB, context.Context) {
	t.Helper()
	if os.Getenv("POSTGRES_URL") == "" {
		t.Skip("POSTGRES_URL not set; skipping integration test")
	}

	ctx := context.Background()
	db, err := New(ctx, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Init(ctx))
	require.NoError(t, db.Client.Exec(ctx, `TRUNCATE participants RESTART IDENTITY CASCADE`))

	return db, ctx
}

// TestMapParticipantIDs verifies ids are stable across overlapping calls:
// known addresses keep their id, new addresses get strictly new ids.
func TestMapParticipantIDs(t *testing.T) {
	db, ctx := newTestDB(t)

	first, err := db.MapParticipantIDs(ctx, []string{"0x10", "0x20"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotEqual(t, first["0x10"], first["0x20"])

	second, err := db.MapParticipantIDs(ctx, []string{"0x20", "0x30", "0x10"})
	require.NoError(t, err)
	require.Len(t, second, 3)

	assert.Equal(t, first["0x10"], second["0x10"])
	assert.Equal(t, first["0x20"], second["0x20"])
	assert.NotContains(t, []int64{first["0x10"], first["0x20"]}, second["0x30"])

	// Exactly one row per address, no duplicates from the second call.
	var count int64
	require.NoError(t, db.Client.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count))
	assert.Equal(t, int64(3), count)
}

// TestMapParticipantIDsDuplicateInput verifies duplicate addresses in one
// call resolve to a single mapping entry and a single row.
func TestMapParticipantIDsDuplicateInput(t *testing.T) {
	db, ctx := newTestDB(t)

	ids, err := db.MapParticipantIDs(ctx, []string{"0x10", "0x10", "0x10"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	var count int64
	require.NoError(t, db.Client.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count))
	assert.Equal(t, int64(1), count)
}

func TestMapParticipantIDsEmpty(t *testing.T) {
	db, ctx := newTestDB(t)

	ids, err := db.MapParticipantIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
