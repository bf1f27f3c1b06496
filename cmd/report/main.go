// Package main generates the signal outcome report (Markdown + CSV) from
// the signal store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-impact-lab/internal/reporting"
	"signal-impact-lab/internal/storage/migrations"
	pgstore "signal-impact-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	outputDir := flag.String("output-dir", "output", "Output directory for report files")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags|log.Lshortfile)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to run postgres migrations: %v", err)
	}

	gen := reporting.NewGenerator(pgstore.NewSignalStore(pool), nil)

	report, err := gen.Generate(ctx, *outputDir)
	if err != nil {
		logger.Fatalf("Report generation failed: %v", err)
	}

	logger.Printf("Report written to %s/: %d signals, %d closed, mean impact %.4f",
		*outputDir, report.TotalSignals, report.ClosedSignals, report.Impact.Mean)
}
