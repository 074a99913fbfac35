package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/migrations"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print pending migration SQL without executing it")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger.Info("Running database migrations...")
	applied, err := db.Migrate(ctx, migrations.Postgres, "postgres", *dryRun)
	if err != nil {
		logger.Fatalw("Failed to apply migrations", "error", err, "applied", applied)
	}

	if *dryRun {
		fmt.Printf("Dry run completed, %d migration(s) pending\n", len(applied))
		return
	}
	fmt.Printf("Migration process completed, %d migration(s) applied\n", len(applied))
}
