package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/db"
	"visit-model-service/internal/platform/obs"
)

// SQLGeocodeCache keeps one run's address lookups in the geocode_cache
// table. Rows are keyed by run id and removed by Close, so results never
// leak into another run.
type SQLGeocodeCache struct {
	DB      *sql.DB
	dialect db.Dialect
	runID   string
}

func NewSQLGeocodeCache(conn *sql.DB, dialect db.Dialect, runID string) (*SQLGeocodeCache, error) {
	if conn == nil {
		return nil, errors.New("geocode cache: db is nil")
	}
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("geocode cache: run id is empty")
	}
	return &SQLGeocodeCache{DB: conn, dialect: dialect, runID: runID}, nil
}

func (s *SQLGeocodeCache) Get(ctx context.Context, address string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, false, nil
	}

	q := `
	SELECT lon, lat
	FROM geocode_cache
	WHERE run_id = ? AND address = ?;
	`
	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, s.dialect.Rebind(q), s.runID, address).Scan(&c.Lon, &c.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	return c, true, nil
}

func (s *SQLGeocodeCache) Put(ctx context.Context, address string, c domain.Coordinates) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}

	q := `
	INSERT INTO geocode_cache (run_id, address, lon, lat)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (run_id, address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`
	if _, err := s.DB.ExecContext(ctx, s.dialect.Rebind(q), s.runID, address, c.Lon, c.Lat); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}
	return nil
}

// Close deletes every row of the run.
func (s *SQLGeocodeCache) Close(ctx context.Context) error {
	q := `DELETE FROM geocode_cache WHERE run_id = ?;`
	if _, err := s.DB.ExecContext(ctx, s.dialect.Rebind(q), s.runID); err != nil {
		return fmt.Errorf("purge geocode cache run_id=%s: %w", s.runID, err)
	}
	return nil
}
