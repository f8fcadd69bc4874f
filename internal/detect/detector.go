// Package detect holds the five pattern detectors. Each is a pure function
// over an immutable snapshot and the caller's trade; none may fail.
package detect

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/mempool"
)

// Detector is one pattern analysis.
type Detector interface {
	// Type returns the pattern this detector looks for.
	Type() domain.PatternType

	// Detect analyzes the snapshot against the trade. Must not mutate the
	// snapshot.
	Detect(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) domain.PatternResult
}

// All returns the five detectors in canonical result order: sandwich,
// front-run, back-run, copycat, JIT.
func All() []Detector {
	return []Detector{
		NewSandwichDetector(),
		NewFrontRunDetector(),
		NewBackRunDetector(),
		NewCopycatDetector(),
		NewJITDetector(mempool.NewClassifier()),
	}
}

// RunAll executes the detectors concurrently over the shared snapshot.
// A panicking detector degrades to "no evidence" for its pattern instead of
// failing the scan.
func RunAll(ctx context.Context, detectors []Detector, snapshot *domain.MempoolSnapshot, trade domain.TradeIntent, logger *log.Logger) []domain.PatternResult {
	if logger == nil {
		logger = log.Default()
	}

	results := make([]domain.PatternResult, len(detectors))

	g, _ := errgroup.WithContext(ctx)
	for i, d := range detectors {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Printf("[detect] %s detector panicked: %v", d.Type(), r)
					results[i] = domain.PatternResult{Type: d.Type()}
				}
			}()
			results[i] = d.Detect(snapshot, trade)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// effectiveGasPrice resolves the caller's gas price, substituting the
// snapshot's p50 when the trade does not carry one.
func effectiveGasPrice(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) float64 {
	if trade.GasPrice != nil && *trade.GasPrice > 0 {
		return *trade.GasPrice
	}
	return snapshot.Gas.P50
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func capConfidence(c float64) float64 {
	if c > 1.0 {
		return 1.0
	}
	if c < 0 {
		return 0
	}
	return c
}
