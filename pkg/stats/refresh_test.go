package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
)

func fakeFactory(ctx context.Context) (*statsdb.DB, error) {
	return &statsdb.DB{}, nil
}

// TestRefreshDatabaseContinuesAfterFailure verifies a failing job does not
// stop the jobs after it.
func TestRefreshDatabaseContinuesAfterFailure(t *testing.T) {
	var ran []string

	jobs := []Job{
		{Name: "first", Run: func(ctx context.Context, db *statsdb.DB) error {
			ran = append(ran, "first")
			return errors.New("boom")
		}},
		{Name: "second", Run: func(ctx context.Context, db *statsdb.DB) error {
			ran = append(ran, "second")
			return nil
		}},
		{Name: "third", Run: func(ctx context.Context, db *statsdb.DB) error {
			ran = append(ran, "third")
			return nil
		}},
	}

	RefreshDatabase(context.Background(), zap.NewNop(), fakeFactory, jobs)

	assert.Equal(t, []string{"first", "second", "third"}, ran)
}

// TestRefreshDatabaseSkipsJobOnFactoryError verifies a job whose store
// cannot be opened is skipped, not fatal.
func TestRefreshDatabaseSkipsJobOnFactoryError(t *testing.T) {
	var ran []string

	calls := 0
	factory := func(ctx context.Context) (*statsdb.DB, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return &statsdb.DB{}, nil
	}

	jobs := []Job{
		{Name: "first", Run: func(ctx context.Context, db *statsdb.DB) error {
			ran = append(ran, "first")
			return nil
		}},
		{Name: "second", Run: func(ctx context.Context, db *statsdb.DB) error {
			ran = append(ran, "second")
			return nil
		}},
	}

	RefreshDatabase(context.Background(), zap.NewNop(), factory, jobs)

	assert.Equal(t, []string{"second"}, ran)
}

// TestDefaultJobsOrder pins the job order: the leaderboard refresh must run
// before the rollup deletes yesterday's detail rows.
func TestDefaultJobsOrder(t *testing.T) {
	jobs := DefaultJobs(zap.NewNop())

	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name)
	}
	assert.Equal(t, []string{
		"update_top_measurement_participants",
		"aggregate_and_clean_up_recent_data",
		"update_monthly_active_station_count",
	}, names)
}
