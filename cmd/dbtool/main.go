package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"visit-model-service/internal/adapters/repositories"
	"visit-model-service/internal/config"
	"visit-model-service/internal/platform/db"
)

// dbtool prepares the Postgres model store ahead of the first server start.
func main() {
	config.LoadEnv()

	list := flag.Int("list", 0, "print the newest N stored runs after initializing")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn, db.DialectPostgres); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *list <= 0 {
		return
	}

	store := repositories.NewSQLModelStore(conn, db.DialectPostgres)
	runs, err := store.ListRuns(context.Background(), *list)
	if err != nil {
		log.Fatalf("list runs failed: %v", err)
	}
	for _, run := range runs {
		log.Printf("run id=%s label=%q created=%s solved=%t", run.ID, run.Label, run.CreatedAt.Format("2006-01-02 15:04"), run.Solution != nil)
	}
}
