package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
	"visit-model-service/internal/adapters/repositories"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryGeocodeCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryGeocodeCache()

	if _, ok, _ := c.Get(ctx, "Storgatan 1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := domain.Coordinates{Lon: 18, Lat: 59}
	if err := c.Put(ctx, "Storgatan 1", want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(ctx, " Storgatan 1 ")
	if err != nil || !ok || got != want {
		t.Fatalf("get = %v, %v, %v", got, ok, err)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisGeocodeCache_RoundTripAndScope(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	runA, err := NewRedisGeocodeCache(client, "run-a", time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	runB, _ := NewRedisGeocodeCache(client, "run-b", time.Minute)

	want := domain.Coordinates{Lon: 18.07, Lat: 59.33}
	if err := runA.Put(ctx, "Storgatan 1", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := runA.Get(ctx, "Storgatan 1")
	if err != nil || !ok || got != want {
		t.Fatalf("get = %v, %v, %v", got, ok, err)
	}

	// Another run never sees this run's entries.
	if _, ok, _ := runB.Get(ctx, "Storgatan 1"); ok {
		t.Fatal("entry leaked across runs")
	}

	if ttl := mr.TTL("geocode:run-a:Storgatan 1"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}
}

func TestRedisGeocodeCache_ExpiresAndPurges(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	c, _ := NewRedisGeocodeCache(client, "run-x", time.Minute)
	_ = c.Put(ctx, "a", domain.Coordinates{Lon: 1, Lat: 1})
	_ = c.Put(ctx, "b", domain.Coordinates{Lon: 2, Lat: 2})

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatal("expected entry to expire")
	}

	_ = c.Put(ctx, "c", domain.Coordinates{Lon: 3, Lat: 3})
	if err := c.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys after close, got %v", keys)
	}
}

func TestNewRedisGeocodeCache_Validation(t *testing.T) {
	_, client := newRedis(t)
	if _, err := NewRedisGeocodeCache(nil, "run", time.Minute); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisGeocodeCache(client, " ", time.Minute); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestFactory_NewRunCache(t *testing.T) {
	ctx := context.Background()

	mem, release, err := Factory{}.NewRunCache(ctx, "run-1")
	if err != nil {
		t.Fatalf("memory factory: %v", err)
	}
	release()
	if _, ok := mem.(*MemoryGeocodeCache); !ok {
		t.Fatalf("expected memory cache, got %T", mem)
	}

	mr, client := newRedis(t)
	rc, release, err := Factory{Redis: client, TTL: time.Minute}.NewRunCache(ctx, "run-2")
	if err != nil {
		t.Fatalf("redis factory: %v", err)
	}
	if err := rc.Put(ctx, "a", domain.Coordinates{Lon: 1, Lat: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	release()
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected release to purge run keys, got %v", keys)
	}
}

func TestSQLGeocodeCache_ScopedToRun(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	f := Factory{DB: conn, Dialect: db.DialectSQLite}
	a, releaseA, err := f.NewRunCache(ctx, "run-a")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	b, releaseB, err := f.NewRunCache(ctx, "run-b")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	defer releaseB()

	want := domain.Coordinates{Lon: 18.07, Lat: 59.33}
	if err := a.Put(ctx, "Storgatan 1", want); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := a.Put(ctx, "Storgatan 1", want); err != nil {
		t.Fatalf("second put: %v", err)
	}
	if got, ok, err := a.Get(ctx, "Storgatan 1"); err != nil || !ok || got != want {
		t.Fatalf("get = %v, %v, %v", got, ok, err)
	}
	if _, ok, _ := b.Get(ctx, "Storgatan 1"); ok {
		t.Fatal("run-b must not see run-a's entries")
	}

	releaseA()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM geocode_cache`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected release to purge run rows, %d left", n)
	}
}
