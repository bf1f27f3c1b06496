// Package main provides the signal impact service:
// - Scheduled evaluation passes over open trade signals
// - HTTP surface for on-demand passes, status, health and metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"signal-impact-lab/internal/batch"
	"signal-impact-lab/internal/domain"
	"signal-impact-lab/internal/evaluation"
	"signal-impact-lab/internal/observability"
	"signal-impact-lab/internal/pricing"
	"signal-impact-lab/internal/storage"
	chstore "signal-impact-lab/internal/storage/clickhouse"
	"signal-impact-lab/internal/storage/memory"
	"signal-impact-lab/internal/storage/migrations"
	pgstore "signal-impact-lab/internal/storage/postgres"
	"signal-impact-lab/internal/symbols"
)

// Server holds the evaluation service components.
type Server struct {
	runner   *batch.Runner
	catalog  *symbols.CachedCatalog
	metrics  *observability.Metrics
	interval time.Duration
	logger   *log.Logger

	// State
	mu          sync.Mutex
	passRunning bool
	lastPass    time.Time
	lastSummary *batch.Summary
	passes      int
	started     time.Time
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables candle archiving)")
	apiURL := flag.String("api-url", envOr("PRICE_API_URL", pricing.DefaultBaseURL), "Price provider base URL")
	apiKey := flag.String("api-key", os.Getenv("PRICE_API_KEY"), "Price provider API key")
	fallbackURL := flag.String("fallback-api-url", os.Getenv("PRICE_FALLBACK_API_URL"), "Secondary price provider base URL (optional)")
	fallbackKey := flag.String("fallback-api-key", os.Getenv("PRICE_FALLBACK_API_KEY"), "Secondary price provider API key")
	interval := flag.Duration("interval", 1*time.Hour, "Evaluation pass interval")
	pace := flag.Duration("pace", batch.DefaultPace, "Delay between per-signal provider calls")
	pageSize := flag.Int("page-size", batch.DefaultPageSize, "Signals per evaluation pass")
	runOnStart := flag.Bool("run-on-start", false, "Run an evaluation pass immediately on startup")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage with seeded demo signals")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	signalStore, archiveStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if *useMemory {
		if err := seedDemoSignals(ctx, signalStore); err != nil {
			logger.Fatalf("Failed to seed demo signals: %v", err)
		}
		logger.Println("Seeded demo signals into in-memory store")
	}

	// Metrics registry
	metrics := observability.NewMetrics("")

	// Symbol resolution
	catalog := symbols.NewCachedCatalog(symbols.NewHTTPCatalog(*apiURL, *apiKey))
	resolver := symbols.NewResolver(catalog)

	// Price history
	var source pricing.HistorySource = pricing.NewCoinGeckoSource(*apiURL, *apiKey)
	if *fallbackURL != "" {
		source = pricing.NewChain(logger,
			source,
			pricing.NewCoinGeckoSource(*fallbackURL, *fallbackKey),
		)
	}
	fetcher := pricing.NewFetcher(pricing.FetcherOptions{
		Source:  source,
		Archive: archiveStore,
		Metrics: metrics,
		Logger:  log.New(os.Stdout, "[pricing] ", log.LstdFlags|log.Lshortfile),
	})

	// Evaluation
	evaluator := evaluation.NewEvaluator(resolver, fetcher, nil)
	runner := batch.NewRunner(batch.RunnerOptions{
		Signals:   signalStore,
		Evaluator: evaluator,
		PageSize:  *pageSize,
		Pace:      *pace,
		Metrics:   metrics,
		Logger:    log.New(os.Stdout, "[batch] ", log.LstdFlags|log.Lshortfile),
	})

	server := &Server{
		runner:   runner,
		catalog:  catalog,
		metrics:  metrics,
		interval: *interval,
		logger:   logger,
		started:  time.Now(),
	}

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*httpAddr)

	// Run the pass scheduler
	err = server.Run(ctx, *runOnStart)
	close(done)
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the signal store and the optional candle archive.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (storage.SignalStore, storage.CandleArchiveStore, func(), error) {
	if useMemory {
		return memory.NewSignalStore(), memory.NewCandleArchiveStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse is optional; without it windows are simply not archived.
	if clickhouseDSN == "" {
		logger.Println("No ClickHouse DSN configured, candle archiving disabled")
		return pgstore.NewSignalStore(pool), nil, pool.Close, nil
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return pgstore.NewSignalStore(pool), chstore.NewCandleArchiveStore(chConn), cleanup, nil
}

// Run executes evaluation passes on a fixed interval until ctx is done.
func (s *Server) Run(ctx context.Context, runOnStart bool) error {
	s.logger.Printf("Starting pass scheduler (interval: %v)...", s.interval)

	if runOnStart {
		s.runPass(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// errPassInFlight is returned by runPass when another pass already runs.
var errPassInFlight = errors.New("evaluation pass already running")

// runPass executes a single evaluation pass and returns its summary.
func (s *Server) runPass(ctx context.Context) (*batch.Summary, error) {
	s.mu.Lock()
	if s.passRunning {
		s.mu.Unlock()
		s.logger.Println("Evaluation pass already running, skipping...")
		return nil, errPassInFlight
	}
	s.passRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.passRunning = false
		s.lastPass = time.Now()
		s.passes++
		s.mu.Unlock()
	}()

	s.logger.Println("Running evaluation pass...")
	start := time.Now()

	summary, err := s.runner.RunOnce(ctx)
	if err != nil {
		s.logger.Printf("Evaluation pass error: %v", err)
		return summary, err
	}

	s.mu.Lock()
	s.lastSummary = summary
	s.mu.Unlock()
	s.metrics.CatalogSize.Set(float64(s.catalog.Size()))

	s.logger.Printf("Evaluation pass completed in %v: evaluated=%d closed=%d stillOpen=%d errors=%d",
		time.Since(start), summary.Evaluated, summary.Closed, summary.StillOpen, summary.Errors)
	return summary, nil
}

// startHTTPServer starts the HTTP server for evaluate/status/health/metrics.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", s.metrics.Handler())

	// On-demand evaluation pass
	mux.HandleFunc("/evaluate", s.handleEvaluate)

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// handleEvaluate triggers a pass. Returns 409 when one is already running.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := s.runPass(r.Context())
	if errors.Is(err, errPassInFlight) {
		http.Error(w, "evaluation pass already running", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("evaluation pass failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status      string         `json:"status"`
	Uptime      string         `json:"uptime"`
	Passes      int            `json:"passes"`
	PassRunning bool           `json:"pass_running"`
	LastPass    time.Time      `json:"last_pass,omitempty"`
	LastSummary *batch.Summary `json:"last_summary,omitempty"`
	CatalogSize int            `json:"catalog_size"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).String(),
		Passes:      s.passes,
		PassRunning: s.passRunning,
		LastPass:    s.lastPass,
		LastSummary: s.lastSummary,
	}
	s.mu.Unlock()
	resp.CatalogSize = s.catalog.Size()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// seedDemoSignals inserts a handful of open signals for --use-memory runs.
func seedDemoSignals(ctx context.Context, store storage.SignalStore) error {
	now := time.Now().UTC()
	seeds := []*domain.TradeSignal{
		{
			ID:             "demo-btc-long",
			SourceHandle:   "@demo",
			TokenSymbols:   []string{"BTC"},
			EntryPrice:     60000,
			Direction:      domain.DirectionLong,
			TimelineWindow: "1 week",
			CreatedAt:      now.AddDate(0, 0, -10),
			EvaluationOpen: true,
		},
		{
			ID:             "demo-eth-short",
			SourceHandle:   "@demo",
			TokenSymbols:   []string{"ETH"},
			EntryPrice:     3000,
			Direction:      domain.DirectionShort,
			TakeProfitPct:  8,
			StopLossPct:    4,
			TimelineWindow: "3 days",
			CreatedAt:      now.AddDate(0, 0, -5),
			EvaluationOpen: true,
		},
		{
			ID:             "demo-sol-long",
			SourceHandle:   "@another",
			TokenSymbols:   []string{"SOL", "ETH"},
			EntryPrice:     150,
			Direction:      domain.DirectionLong,
			CreatedAt:      now.AddDate(0, 0, -2),
			EvaluationOpen: true,
		},
	}
	for _, sig := range seeds {
		if err := store.Insert(ctx, sig); err != nil {
			return fmt.Errorf("seed %s: %w", sig.ID, err)
		}
	}
	return nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// envOr returns the env var value or a default when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
