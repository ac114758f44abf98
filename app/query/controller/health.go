package controller

import (
	"net/http"
)

func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.App.DB.Health(ctx); err != nil {
		writeJSON(w, http.StatusInternalServerError,
			map[string]string{"status": "errored", "error": "database connection error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
