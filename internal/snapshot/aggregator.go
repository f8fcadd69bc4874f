package snapshot

import (
	"context"
	"log"
	"time"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/observability"
	"mev-sentinel/internal/storage"
)

// DefaultStrategyTimeout bounds one strategy so a stalled source degrades
// to the next instead of stalling the caller.
const DefaultStrategyTimeout = 2500 * time.Millisecond

// AggregatorConfig configures the fallback chain.
type AggregatorConfig struct {
	StrategyTimeout time.Duration
}

// DefaultAggregatorConfig returns production aggregator settings.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{StrategyTimeout: DefaultStrategyTimeout}
}

// Aggregator walks the strategy chain in strict priority order and caches
// whatever it produces. It never returns an error: the baseline strategy
// cannot fail, so a caller always receives a well-formed snapshot.
type Aggregator struct {
	cache    *Cache
	sources  []Source
	config   AggregatorConfig
	gasStore storage.GasObservationStore // optional, best-effort
	logger   *log.Logger
}

// NewAggregator creates an aggregator over an ordered source chain. The
// last source must never fail (the baseline). gasStore may be nil.
func NewAggregator(cache *Cache, sources []Source, config AggregatorConfig, gasStore storage.GasObservationStore, logger *log.Logger) *Aggregator {
	if config.StrategyTimeout <= 0 {
		config.StrategyTimeout = DefaultStrategyTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		cache:    cache,
		sources:  sources,
		config:   config,
		gasStore: gasStore,
		logger:   logger,
	}
}

// GetSnapshot returns a snapshot for the pair, consulting the freshness
// cache first. callerGasPrice is in gwei, 0 when the caller did not supply
// one.
func (a *Aggregator) GetSnapshot(ctx context.Context, tokenIn, tokenOut string, callerGasPrice float64) *domain.MempoolSnapshot {
	pair := domain.NormalizePair(tokenIn, tokenOut)

	if cached, ok := a.cache.Get(pair); ok {
		observability.RecordCacheHit()
		return cached
	}

	for i, src := range a.sources {
		if !src.Available() {
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, a.config.StrategyTimeout)
		snap, err := src.Fetch(fetchCtx, tokenIn, tokenOut, callerGasPrice)
		cancel()

		if err != nil || snap == nil {
			observability.RecordSourceError(src.Name().String())
			a.logger.Printf("[aggregator] source %s failed for %s: %v", src.Name(), pair, err)
			continue
		}

		observability.RecordSnapshot(src.Name().String(), i+1)
		a.cache.Put(pair, snap)
		a.recordObservation(snap)
		return snap
	}

	// Unreachable when the chain ends with the baseline; kept as a guard
	// against misconfigured chains.
	snap, _ := NewBaselineSource().Fetch(ctx, tokenIn, tokenOut, callerGasPrice)
	a.cache.Put(pair, snap)
	return snap
}

// recordObservation persists the snapshot's gas percentiles asynchronously.
// Failures are logged, never surfaced.
func (a *Aggregator) recordObservation(snap *domain.MempoolSnapshot) {
	if a.gasStore == nil || snap.Source == domain.SourceBaseline {
		return
	}

	obs := &domain.GasObservation{
		Pair:        snap.Pair(),
		Source:      snap.Source,
		BlockNumber: snap.BlockNumber,
		P25:         snap.Gas.P25,
		P50:         snap.Gas.P50,
		P75:         snap.Gas.P75,
		P90:         snap.Gas.P90,
		SampleSize:  len(snap.Competing),
		ObservedAt:  snap.CreatedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.gasStore.InsertBatch(ctx, []*domain.GasObservation{obs}); err != nil {
			observability.RecordWriteError("gas_observations")
			a.logger.Printf("[aggregator] gas observation write failed: %v", err)
		}
	}()
}
