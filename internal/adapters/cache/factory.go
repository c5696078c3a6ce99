package cache

import (
	"context"
	"database/sql"
	"log"
	"time"
	"visit-model-service/internal/platform/db"
	"visit-model-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// Factory hands out one geocode cache per run: Redis-backed when a client
// is configured, SQL-backed when a database is, in-memory otherwise.
type Factory struct {
	Redis   *redis.Client
	DB      *sql.DB
	Dialect db.Dialect
	TTL     time.Duration
}

// runCache is a shared cache that must be purged when its run ends.
type runCache interface {
	ports.GeocodeCache
	Close(ctx context.Context) error
}

func (f Factory) NewRunCache(ctx context.Context, runID string) (ports.GeocodeCache, func(), error) {
	var (
		c   runCache
		err error
	)
	switch {
	case f.Redis != nil:
		c, err = NewRedisGeocodeCache(f.Redis, runID, f.TTL)
	case f.DB != nil:
		c, err = NewSQLGeocodeCache(f.DB, f.Dialect, runID)
	default:
		return NewMemoryGeocodeCache(), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		// The request context may already be done.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := c.Close(ctx); err != nil {
			log.Printf("geocode cache: purge failed run_id=%s err=%v", runID, err)
		}
	}
	return c, release, nil
}
