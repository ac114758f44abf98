package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchMessageRoundTrip(t *testing.T) {
	batch := &MeasurementBatch{
		Day:          "2026-08-20",
		Measurements: exampleBatch(),
	}

	values, err := EncodeBatchMessage(batch)
	require.NoError(t, err)

	decoded, err := ParseBatchMessage(values)
	require.NoError(t, err)
	assert.Equal(t, batch, decoded)
}

func TestParseBatchMessageErrors(t *testing.T) {
	_, err := ParseBatchMessage(map[string]interface{}{})
	assert.Error(t, err)

	_, err = ParseBatchMessage(map[string]interface{}{BatchField: 42})
	assert.Error(t, err)

	_, err = ParseBatchMessage(map[string]interface{}{BatchField: "{not json"})
	assert.Error(t, err)
}

func TestResolveDay(t *testing.T) {
	now := time.Date(2026, 8, 25, 13, 30, 0, 0, time.UTC)

	pinned := &MeasurementBatch{Day: "2026-08-20"}
	day, err := pinned.ResolveDay(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), day)

	unset := &MeasurementBatch{}
	day, err = unset.ResolveDay(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), day)

	invalid := &MeasurementBatch{Day: "20/08/2026"}
	_, err = invalid.ResolveDay(now)
	assert.Error(t, err)
}
