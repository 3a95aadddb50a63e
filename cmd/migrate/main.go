package main

// Run database migrations:
//   go run ./cmd/migrate            apply pending migrations
//   go run ./cmd/migrate -down      roll back the latest migration
//   go run ./cmd/migrate -version   print the current schema version

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"resume-importer/internal/shared/config"
	"resume-importer/internal/shared/storage/db"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	version := flag.Bool("version", false, "print the current migration version")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.PoolFor(db.ProfileMigrate))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch {
	case *version:
		v, err := db.MigrationVersion(ctx, sqlDB)
		if err != nil {
			log.Printf("failed to read migration version: %v", err)
			os.Exit(1)
		}
		fmt.Println(v)
	case *down:
		if err := db.RollbackMigration(ctx, sqlDB); err != nil {
			log.Printf("failed to roll back migration: %v", err)
			os.Exit(1)
		}
	default:
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			log.Printf("failed to run migrations: %v", err)
			os.Exit(1)
		}
	}
}
