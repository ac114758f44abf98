package stats

import (
	"context"

	"github.com/meridian-network/stationstats/pkg/redis"
)

// PublishMeasurementBatch encodes a batch and appends it to the intake
// stream. It returns the stream entry id so producers can correlate the
// batch with its delivery.
func PublishMeasurementBatch(ctx context.Context, client *redis.Client, stream string, batch *MeasurementBatch) (string, error) {
	values, err := EncodeBatchMessage(batch)
	if err != nil {
		return "", err
	}
	return client.XAdd(ctx, stream, values)
}
