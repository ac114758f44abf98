package stats

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	statsdb "github.com/meridian-network/stationstats/pkg/db/stats"
)

// Context carries the shared dependencies of the statistics operations.
// It holds no mutable aggregation state; everything derived is persisted.
type Context struct {
	Logger *zap.Logger
	DB     *statsdb.DB

	// idCache is a process-local read-through cache in front of the
	// participants table. Ids are immutable once assigned, so entries
	// never need invalidation.
	idCache *xsync.Map[string, int64]
}

// NewContext returns a Context ready for ingestion and jobs.
func NewContext(logger *zap.Logger, db *statsdb.DB) *Context {
	return &Context{
		Logger:  logger,
		DB:      db,
		idCache: xsync.NewMap[string, int64](),
	}
}

// MapParticipantIDs resolves addresses to ids, serving known addresses from
// the in-process cache and batching the rest through the store in one pass.
func (c *Context) MapParticipantIDs(ctx context.Context, addresses []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(addresses))
	var unknown []string
	for _, a := range addresses {
		if id, ok := c.idCache.Load(a); ok {
			ids[a] = id
		} else {
			unknown = append(unknown, a)
		}
	}

	if len(unknown) > 0 {
		resolved, err := c.DB.MapParticipantIDs(ctx, unknown)
		if err != nil {
			return nil, err
		}
		for address, id := range resolved {
			ids[address] = id
			c.idCache.Store(address, id)
		}
	}

	return ids, nil
}
