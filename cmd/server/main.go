package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"visit-model-service/internal/adapters/cache"
	"visit-model-service/internal/adapters/geocode"
	"visit-model-service/internal/adapters/repositories"
	"visit-model-service/internal/api"
	"visit-model-service/internal/api/handlers"
	"visit-model-service/internal/config"
	"visit-model-service/internal/platform/db"
	"visit-model-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, ORS, Redis) behind ports and starts the HTTP server.
func main() {
	config.LoadEnv()

	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}
	store := repositories.NewSQLModelStore(conn, dialect)

	geocoder, err := newGeocoder(cfg.Geocoder)
	if err != nil {
		log.Fatal(err)
	}

	// Geocode results are scoped to one build run; the shared backends only
	// let the replicas serving that run see each other's lookups.
	caches := cache.Factory{TTL: cfg.Redis.TTL}
	switch cfg.GeocodeCache {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping addr=%s: %v", cfg.Redis.Addr, err)
		}
		caches.Redis = client
	case "sql":
		caches.DB, caches.Dialect = conn, dialect
	}

	router := api.NewRouter(&handlers.ModelHandler{
		Store:    store,
		Planning: cfg.Planning,
		Geocoder: geocoder,
		Caches:   caches,
	})

	// Builds with uncached addresses wait on the geocoder rate limit.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening addr=:%s store=%s geocoder=%s geocode_cache=%s", cfg.Port, dialect, cfg.Geocoder.Provider, cfg.GeocodeCache)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openStore(sc config.StoreConfig) (*sql.DB, db.Dialect, error) {
	dialect, err := db.ParseDialect(sc.Driver)
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}

	var conn *sql.DB
	switch dialect {
	case db.DialectPostgres:
		conn, err = db.Open(sc.DSN)
	default:
		conn, err = db.OpenSQLite(sc.DSN)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}
	return conn, dialect, nil
}

func newGeocoder(gc config.GeocoderConfig) (ports.Geocoder, error) {
	if gc.Provider != "ors" {
		log.Println("geocoder disabled: records without coordinates will be dropped")
		return nil, nil
	}

	g, err := geocode.NewORSGeocoder(gc.APIKey,
		geocode.WithBaseURL(gc.BaseURL),
		geocode.WithCountry(gc.Country),
	)
	if err != nil {
		return nil, fmt.Errorf("new geocoder: %w", err)
	}
	return g, nil
}
