package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/meridian-network/stationstats/pkg/db/postgres"
	"github.com/meridian-network/stationstats/pkg/stats"
)

func isNoRows(err error) bool {
	return postgres.IsNoRows(err)
}

// DailyStats returns the daily platform summaries for a date range.
// Defaults to the last 30 days when from/to are omitted.
func (c *Controller) DailyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	to := stats.DayOf(time.Now())
	from := to.AddDate(0, 0, -30)

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.ParseInLocation(stats.DayFormat, v, time.UTC); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid from date: %w", err))
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.ParseInLocation(stats.DayFormat, v, time.UTC); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid to date: %w", err))
			return
		}
	}

	rows, err := c.App.DB.GetDailyPlatformStats(ctx, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// DailyStatsForDay returns the summary row for one day, 404 when the day
// has not been rolled up (or never had data).
func (c *Controller) DailyStatsForDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := time.ParseInLocation(stats.DayFormat, mux.Vars(r)["day"], time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid day: %w", err))
		return
	}

	row, err := c.App.DB.GetDailyPlatformStatsForDay(ctx, day)
	if err != nil {
		if isNoRows(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no summary for day"})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// MonthlyStationCounts returns all monthly active-station counts.
func (c *Controller) MonthlyStationCounts(w http.ResponseWriter, r *http.Request) {
	rows, err := c.App.DB.GetMonthlyActiveStationCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// TopParticipantsYesterday returns the materialized leaderboard.
func (c *Controller) TopParticipantsYesterday(w http.ResponseWriter, r *http.Request) {
	rows, err := c.App.DB.GetTopParticipantsYesterday(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
