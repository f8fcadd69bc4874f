// Package main provides the unified sentinel service:
// - Subscriber (continuous): WebSocket pending-transaction feed
// - Aggregator: snapshot acquisition with fallback chain and TTL cache
// - Engine: per-trade MEV risk scanning over HTTP
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mev-sentinel/internal/detect"
	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/engine"
	"mev-sentinel/internal/ethereum"
	"mev-sentinel/internal/gasoracle"
	"mev-sentinel/internal/mempool"
	"mev-sentinel/internal/observability"
	"mev-sentinel/internal/snapshot"
	"mev-sentinel/internal/storage"
	chstore "mev-sentinel/internal/storage/clickhouse"
	"mev-sentinel/internal/storage/memory"
	"mev-sentinel/internal/storage/migrations"
	pgstore "mev-sentinel/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	engine      *engine.Engine
	subscriber  *mempool.Subscriber
	attackStore storage.AttackRecordStore
	logger      *log.Logger
	startedAt   time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	attackStore storage.AttackRecordStore
	gasStore    storage.GasObservationStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("ETH_WS_ENDPOINT"), "Ethereum WebSocket endpoint (optional; live stream disabled when empty)")
	oracleEndpoint := flag.String("oracle-endpoint", os.Getenv("GAS_ORACLE_ENDPOINT"), "Premium gas oracle endpoint (optional)")
	oracleAPIKey := flag.String("oracle-api-key", os.Getenv("GAS_ORACLE_API_KEY"), "Premium gas oracle API key")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	bufferCapacity := flag.Int("buffer-capacity", mempool.DefaultBufferCapacity, "Pending-transaction buffer capacity")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[sentinel] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Shared components
	classifier := mempool.NewClassifier()
	rpcClient := ethereum.NewHTTPClient(*rpcEndpoint)

	// Live stream subscriber (optional)
	var subscriber *mempool.Subscriber
	if *wsEndpoint != "" {
		dialer := ethereum.NewWSDialer(*wsEndpoint, nil)
		buffer := mempool.NewBuffer(*bufferCapacity)
		subscriber = mempool.NewSubscriber(dialer, rpcClient, buffer, mempool.DefaultSubscriberConfig(), logger)
		subscriber.Start(ctx)
		defer subscriber.Close()
	} else {
		logger.Println("No --ws-endpoint configured, live stream source disabled")
	}

	// Premium gas oracle (optional)
	oracle := gasoracle.NewClient(*oracleEndpoint, *oracleAPIKey)
	if !oracle.Configured() {
		logger.Println("No --oracle-endpoint/--oracle-api-key configured, premium provider source disabled")
	}

	// Snapshot aggregation
	sources := snapshot.DefaultChain(subscriber, oracle, rpcClient, classifier)
	cache := snapshot.NewCache(snapshot.DefaultCacheConfig())
	aggregator := snapshot.NewAggregator(cache, sources, snapshot.DefaultAggregatorConfig(), stores.gasStore, logger)

	// Risk engine
	eng := engine.NewEngine(aggregator, detect.All(), subscriber, stores.attackStore, logger)

	server := &Server{
		engine:      eng,
		subscriber:  subscriber,
		attackStore: stores.attackStore,
		logger:      logger,
		startedAt:   time.Now(),
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

		// Wait for second signal for immediate shutdown
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
	go server.startHTTPServer(*listenAddr)

	<-ctx.Done()
	if subscriber != nil {
		subscriber.Close()
	}
	close(done)

	logger.Println("Shutdown complete")
}

// createStores creates the attack-record and gas-observation stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			attackStore: memory.NewAttackRecordStore(),
			gasStore:    memory.NewGasObservationStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL (attack records)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (gas observations)
	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		attackStore: pgstore.NewAttackRecordStore(pool),
		gasStore:    chstore.NewGasObservationStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// startHTTPServer starts the HTTP server for scanning/health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/scan", s.handleScan)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// PatternResponse is one detector verdict in a scan response.
type PatternResponse struct {
	Type       string   `json:"type"`
	Detected   bool     `json:"detected"`
	Confidence float64  `json:"confidence"`
	Matches    int      `json:"matches"`
	TxHashes   []string `json:"tx_hashes,omitempty"`
}

// ScanResponse is the JSON response for /scan.
type ScanResponse struct {
	ScanID     string            `json:"scan_id"`
	TokenIn    string            `json:"token_in"`
	TokenOut   string            `json:"token_out"`
	Score      int               `json:"score"`
	Primary    string            `json:"primary"`
	Triggers   []string          `json:"triggers"`
	Patterns   []PatternResponse `json:"patterns"`
	Source     string            `json:"source"`
	Confidence float64           `json:"confidence"`
	CreatedAt  int64             `json:"created_at"`
}

// handleScan evaluates a trade intent and returns the risk assessment.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	tokenIn := strings.TrimSpace(r.URL.Query().Get("token_in"))
	tokenOut := strings.TrimSpace(r.URL.Query().Get("token_out"))
	if tokenIn == "" || tokenOut == "" {
		http.Error(w, "token_in and token_out are required", http.StatusBadRequest)
		return
	}

	trade := domain.TradeIntent{TokenIn: tokenIn, TokenOut: tokenOut}
	if raw := r.URL.Query().Get("amount_in"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount < 0 {
			http.Error(w, "invalid amount_in", http.StatusBadRequest)
			return
		}
		trade.AmountIn = amount
	}
	if raw := r.URL.Query().Get("gas_price"); raw != "" {
		gas, err := strconv.ParseFloat(raw, 64)
		if err != nil || gas < 0 {
			http.Error(w, "invalid gas_price", http.StatusBadRequest)
			return
		}
		trade.GasPrice = &gas
	}

	assessment := s.engine.Scan(r.Context(), trade)

	resp := ScanResponse{
		ScanID:     assessment.ScanID,
		TokenIn:    assessment.TokenIn,
		TokenOut:   assessment.TokenOut,
		Score:      assessment.Score,
		Primary:    string(assessment.Primary),
		Triggers:   make([]string, 0, len(assessment.Triggers)),
		Patterns:   make([]PatternResponse, 0, len(assessment.Patterns)),
		Source:     string(assessment.Source),
		Confidence: assessment.Confidence,
		CreatedAt:  assessment.CreatedAt,
	}
	for _, t := range assessment.Triggers {
		resp.Triggers = append(resp.Triggers, string(t))
	}
	for _, p := range assessment.Patterns {
		resp.Patterns = append(resp.Patterns, PatternResponse{
			Type:       string(p.Type),
			Detected:   p.Detected,
			Confidence: p.Confidence,
			Matches:    p.Evidence.Matches,
			TxHashes:   p.Evidence.TxHashes,
		})
	}

	writeJSON(w, resp)
}

// SnapshotResponse is the JSON response for /snapshot.
type SnapshotResponse struct {
	TokenIn      string  `json:"token_in"`
	TokenOut     string  `json:"token_out"`
	BlockNumber  int64   `json:"block_number"`
	AvgBlockTime float64 `json:"avg_block_time"`
	GasP25       float64 `json:"gas_p25"`
	GasP50       float64 `json:"gas_p50"`
	GasP75       float64 `json:"gas_p75"`
	GasP90       float64 `json:"gas_p90"`
	Competing    int     `json:"competing"`
	Source       string  `json:"source"`
	Confidence   float64 `json:"confidence"`
	CreatedAt    int64   `json:"created_at"`
}

// handleSnapshot returns the current mempool snapshot for a pair.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	tokenIn := strings.TrimSpace(r.URL.Query().Get("token_in"))
	tokenOut := strings.TrimSpace(r.URL.Query().Get("token_out"))
	if tokenIn == "" || tokenOut == "" {
		http.Error(w, "token_in and token_out are required", http.StatusBadRequest)
		return
	}

	snap := s.engine.GetSnapshot(r.Context(), tokenIn, tokenOut)

	writeJSON(w, SnapshotResponse{
		TokenIn:      snap.TokenIn,
		TokenOut:     snap.TokenOut,
		BlockNumber:  snap.BlockNumber,
		AvgBlockTime: snap.AvgBlockTime,
		GasP25:       snap.Gas.P25,
		GasP50:       snap.Gas.P50,
		GasP75:       snap.Gas.P75,
		GasP90:       snap.Gas.P90,
		Competing:    len(snap.Competing),
		Source:       string(snap.Source),
		Confidence:   snap.Confidence,
		CreatedAt:    snap.CreatedAt,
	})
}

// AttackRecordResponse is one persisted attack in a history response.
type AttackRecordResponse struct {
	AttackID        string  `json:"attack_id"`
	ScanID          string  `json:"scan_id"`
	Pair            string  `json:"pair"`
	AttackType      string  `json:"attack_type"`
	Score           int     `json:"score"`
	Confidence      float64 `json:"confidence"`
	Source          string  `json:"source"`
	BlockNumber     int64   `json:"block_number"`
	CompetitorCount int     `json:"competitor_count"`
	DetectedAt      int64   `json:"detected_at"`
}

// handleHistory returns persisted attack records, newest first.
// With ?pair= the result is scoped to one pair; otherwise the most
// recent records across all pairs are returned.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var (
		records []*domain.AttackRecord
		err     error
	)
	if pair := strings.TrimSpace(r.URL.Query().Get("pair")); pair != "" {
		records, err = s.attackStore.GetByPair(r.Context(), strings.ToUpper(pair), limit)
	} else {
		since := time.Now().Add(-24 * time.Hour).UnixMilli()
		records, err = s.attackStore.GetRecent(r.Context(), since, limit)
	}
	if err != nil {
		s.logger.Printf("History query error: %v", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	resp := make([]AttackRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, AttackRecordResponse{
			AttackID:        rec.AttackID,
			ScanID:          rec.ScanID,
			Pair:            rec.Pair,
			AttackType:      string(rec.AttackType),
			Score:           rec.Score,
			Confidence:      rec.Confidence,
			Source:          string(rec.Source),
			BlockNumber:     rec.BlockNumber,
			CompetitorCount: rec.CompetitorCount,
			DetectedAt:      rec.DetectedAt,
		})
	}

	writeJSON(w, resp)
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Connected     bool   `json:"connected"`
	Source        string `json:"source"`
	BufferedCount int    `json:"buffered_count"`
	LastUpdateAge string `json:"last_update_age"`
}

// handleStatus returns subscriber and server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.engine.SubscriberStatus()

	writeJSON(w, StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.startedAt).String(),
		Connected:     status.Connected,
		Source:        status.Source,
		BufferedCount: status.BufferedCount,
		LastUpdateAge: status.LastUpdateAge.String(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
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
