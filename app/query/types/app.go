package types

import (
	"net/http"

	"go.uber.org/zap"

	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
)

// App holds the query service's shared state.
type App struct {
	DB     *statsdb.DB
	Logger *zap.Logger

	// Server is the HTTP server that serves the API.
	Server *http.Server
}
