package stats

import (
	"encoding/json"
	"fmt"
	"time"
)

// BatchField is the Redis stream entry field holding the JSON batch payload.
const BatchField = "batch"

// DayFormat is the wire format for calendar days.
const DayFormat = "2006-01-02"

// MeasurementBatch is the wire form of one ingestion unit: the measurements
// the submission/consensus pipeline evaluated together, plus the day they
// belong to. An empty day means "the day the batch is processed".
type MeasurementBatch struct {
	Day          string        `json:"day,omitempty"`
	Measurements []Measurement `json:"measurements"`
}

// ResolveDay returns the batch's target day, defaulting to now's UTC day
// when the producer left it unset.
func (b *MeasurementBatch) ResolveDay(now time.Time) (time.Time, error) {
	if b.Day == "" {
		return DayOf(now), nil
	}
	day, err := time.ParseInLocation(DayFormat, b.Day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid batch day %q: %w", b.Day, err)
	}
	return day, nil
}

// EncodeBatchMessage converts a batch into stream entry fields for XAdd.
func EncodeBatchMessage(b *MeasurementBatch) (map[string]interface{}, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode measurement batch: %w", err)
	}
	return map[string]interface{}{BatchField: string(payload)}, nil
}

// ParseBatchMessage decodes the stream entry fields produced by
// EncodeBatchMessage.
func ParseBatchMessage(values map[string]interface{}) (*MeasurementBatch, error) {
	raw, ok := values[BatchField]
	if !ok {
		return nil, fmt.Errorf("stream entry has no %q field", BatchField)
	}
	payload, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("stream entry field %q is %T, want string", BatchField, raw)
	}

	var batch MeasurementBatch
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		return nil, fmt.Errorf("failed to decode measurement batch: %w", err)
	}
	return &batch, nil
}
