package models

import "time"

// Participant maps an opaque participant address to a stable surrogate id.
// Rows are created on first sighting and never updated or deleted.
type Participant struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
}

// StationDetail is the per-day, per-station, per-participant measurement
// count row awaiting rollup. accepted_measurement_count never exceeds
// total_measurement_count.
type StationDetail struct {
	Day                      time.Time `json:"day"`
	StationID                string    `json:"station_id"`
	ParticipantID            int64     `json:"participant_id"`
	AcceptedMeasurementCount int64     `json:"accepted_measurement_count"`
	TotalMeasurementCount    int64     `json:"total_measurement_count"`
}

// ActiveStation records that a station produced at least one measurement on
// a given day, regardless of acceptance. Set semantics.
type ActiveStation struct {
	Day       time.Time `json:"day"`
	StationID string    `json:"station_id"`
}

// ParticipantSubnet records one distinct subnet a participant was observed
// from on a given day. Set semantics.
type ParticipantSubnet struct {
	Day           time.Time `json:"day"`
	ParticipantID int64     `json:"participant_id"`
	Subnet        string    `json:"subnet"`
}

// DailyParticipant records that a participant was seen on a given day,
// independent of acceptance. Set semantics.
type DailyParticipant struct {
	Day           time.Time `json:"day"`
	ParticipantID int64     `json:"participant_id"`
}

// DailyPlatformStats is the platform-wide summary row that replaces the
// detail rows consumed by the daily rollup.
type DailyPlatformStats struct {
	Day                      time.Time `json:"day"`
	AcceptedMeasurementCount int64     `json:"accepted_measurement_count"`
	TotalMeasurementCount    int64     `json:"total_measurement_count"`
	StationCount             int64     `json:"station_count"`
	ParticipantAddressCount  int64     `json:"participant_address_count"`
	InetGroupCount           int64     `json:"inet_group_count"`
}

// MonthlyActiveStationCount is the count of distinct stations active during
// a fully elapsed calendar month. Month is the first day of the month.
type MonthlyActiveStationCount struct {
	Month        time.Time `json:"month"`
	StationCount int64     `json:"station_count"`
}

// TopParticipant is one row of the materialized "top measurement
// participants as of yesterday" leaderboard.
type TopParticipant struct {
	Day                      time.Time `json:"day"`
	ParticipantAddress       string    `json:"participant_address"`
	InetGroupCount           int64     `json:"inet_group_count"`
	StationCount             int64     `json:"station_count"`
	AcceptedMeasurementCount int64     `json:"accepted_measurement_count"`
}
