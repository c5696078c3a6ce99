package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

// Redis-backed geocode memo scoped to one run. Keys are namespaced by the
// run id and expire after ttl; Close removes whatever the run wrote, so
// nothing outlives the run that created it.
type RedisGeocodeCache struct {
	client *redis.Client
	runID  string
	ttl    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, runID string, ttl time.Duration) (*RedisGeocodeCache, error) {
	if client == nil {
		return nil, errors.New("redis geocode cache: client is nil")
	}
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("redis geocode cache: run id must not be empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisGeocodeCache{client: client, runID: runID, ttl: ttl}, nil
}

func (r *RedisGeocodeCache) key(address string) string {
	return "geocode:" + r.runID + ":" + strings.TrimSpace(address)
}

// Fetch the cached coordinates for one address.
func (r *RedisGeocodeCache) Get(ctx context.Context, address string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	raw, err := r.client.Get(ctx, r.key(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: %w", err)
	}

	var c domain.Coordinates
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: decode %q: %w", address, err)
	}
	return c, true, nil
}

// Store an address -> coordinate mapping for the lifetime of the run.
func (r *RedisGeocodeCache) Put(ctx context.Context, address string, c domain.Coordinates) error {
	if strings.TrimSpace(address) == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("insert geocode cache: encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(address), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}
	return nil
}

// Close deletes every key written by this run.
func (r *RedisGeocodeCache) Close(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "geocode:"+r.runID+":*", 100).Iterator()
	keys := make([]string, 0, 64)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("purge geocode cache run=%s: scan: %w", r.runID, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("purge geocode cache run=%s: del: %w", r.runID, err)
	}
	return nil
}
