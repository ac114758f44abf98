package stats

import "context"

// initParticipants creates the participants table.
// Addresses are the natural key; ids are surrogate and never reused.
func (db *DB) initParticipants(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS participants (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			address TEXT NOT NULL UNIQUE
		);
	`
	return db.Client.Exec(ctx, query)
}

// initStationDetails creates the per-day station/participant detail table.
func (db *DB) initStationDetails(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS recent_station_details (
			day DATE NOT NULL,
			station_id TEXT NOT NULL,
			participant_id BIGINT NOT NULL,
			accepted_measurement_count BIGINT NOT NULL DEFAULT 0,
			total_measurement_count BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (day, station_id, participant_id),
			CHECK (accepted_measurement_count <= total_measurement_count)
		);

		CREATE INDEX IF NOT EXISTS idx_recent_station_details_day ON recent_station_details(day);
	`
	return db.Client.Exec(ctx, query)
}

// initActiveStations creates the per-day active-station set table.
func (db *DB) initActiveStations(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS recent_active_stations (
			day DATE NOT NULL,
			station_id TEXT NOT NULL,
			PRIMARY KEY (day, station_id)
		);
	`
	return db.Client.Exec(ctx, query)
}

// initParticipantSubnets creates the per-day participant subnet set table.
func (db *DB) initParticipantSubnets(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS recent_participant_subnets (
			day DATE NOT NULL,
			participant_id BIGINT NOT NULL,
			subnet TEXT NOT NULL,
			PRIMARY KEY (day, participant_id, subnet)
		);

		CREATE INDEX IF NOT EXISTS idx_recent_participant_subnets_day ON recent_participant_subnets(day);
	`
	return db.Client.Exec(ctx, query)
}

// initDailyParticipants creates the per-day participant set table.
func (db *DB) initDailyParticipants(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS daily_participants (
			day DATE NOT NULL,
			participant_id BIGINT NOT NULL,
			PRIMARY KEY (day, participant_id)
		);
	`
	return db.Client.Exec(ctx, query)
}

// initDailyPlatformStats creates the daily platform summary table.
func (db *DB) initDailyPlatformStats(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS daily_platform_stats (
			day DATE PRIMARY KEY,
			accepted_measurement_count BIGINT NOT NULL DEFAULT 0,
			total_measurement_count BIGINT NOT NULL DEFAULT 0,
			station_count BIGINT NOT NULL DEFAULT 0,
			participant_address_count BIGINT NOT NULL DEFAULT 0,
			inet_group_count BIGINT NOT NULL DEFAULT 0,
			CHECK (accepted_measurement_count <= total_measurement_count)
		);
	`
	return db.Client.Exec(ctx, query)
}

// initMonthlyActiveStationCount creates the monthly station count table.
// month is the first day of the calendar month.
func (db *DB) initMonthlyActiveStationCount(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS monthly_active_station_count (
			month DATE PRIMARY KEY,
			station_count BIGINT NOT NULL DEFAULT 0
		);
	`
	return db.Client.Exec(ctx, query)
}

// initTopMeasurementParticipants creates the materialized leaderboard table.
func (db *DB) initTopMeasurementParticipants(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS top_measurement_participants_yesterday (
			day DATE NOT NULL,
			participant_address TEXT NOT NULL,
			inet_group_count BIGINT NOT NULL DEFAULT 0,
			station_count BIGINT NOT NULL DEFAULT 0,
			accepted_measurement_count BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (day, participant_address)
		);
	`
	return db.Client.Exec(ctx, query)
}
