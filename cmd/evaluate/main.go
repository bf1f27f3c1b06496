// Package main runs a single evaluation pass over eligible trade signals
// and prints the pass summary as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-impact-lab/internal/batch"
	"signal-impact-lab/internal/evaluation"
	"signal-impact-lab/internal/observability"
	"signal-impact-lab/internal/pricing"
	"signal-impact-lab/internal/storage"
	chstore "signal-impact-lab/internal/storage/clickhouse"
	"signal-impact-lab/internal/storage/migrations"
	pgstore "signal-impact-lab/internal/storage/postgres"
	"signal-impact-lab/internal/symbols"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	apiURL := flag.String("api-url", envOr("PRICE_API_URL", pricing.DefaultBaseURL), "Price provider base URL")
	apiKey := flag.String("api-key", os.Getenv("PRICE_API_KEY"), "Price provider API key")
	pace := flag.Duration("pace", batch.DefaultPace, "Delay between per-signal provider calls")
	pageSize := flag.Int("page-size", batch.DefaultPageSize, "Signals per evaluation pass")
	timeout := flag.Duration("timeout", 15*time.Minute, "Overall pass timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[evaluate] ", log.LstdFlags|log.Lshortfile)

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

	var archive storage.CandleArchiveStore
	if *clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to clickhouse: %v", err)
		}
		defer chConn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			logger.Fatalf("Failed to run clickhouse migrations: %v", err)
		}
		archive = chstore.NewCandleArchiveStore(chConn)
	}

	metrics := observability.NewMetrics("")
	catalog := symbols.NewCachedCatalog(symbols.NewHTTPCatalog(*apiURL, *apiKey))
	resolver := symbols.NewResolver(catalog)
	fetcher := pricing.NewFetcher(pricing.FetcherOptions{
		Source:  pricing.NewCoinGeckoSource(*apiURL, *apiKey),
		Archive: archive,
		Metrics: metrics,
		Logger:  logger,
	})

	runner := batch.NewRunner(batch.RunnerOptions{
		Signals:   pgstore.NewSignalStore(pool),
		Evaluator: evaluation.NewEvaluator(resolver, fetcher, nil),
		PageSize:  *pageSize,
		Pace:      *pace,
		Metrics:   metrics,
		Logger:    logger,
	})

	summary, err := runner.RunOnce(ctx)
	if err != nil {
		logger.Fatalf("Evaluation pass failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		logger.Fatalf("Failed to encode summary: %v", err)
	}
}

// envOr returns the env var value or a default when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
