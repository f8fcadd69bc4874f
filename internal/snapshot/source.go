package snapshot

import (
	"context"

	"mev-sentinel/internal/domain"
)

// assumedBlockTime is the inter-block estimate used when a source has no
// timestamps to measure from.
const assumedBlockTime = 12.0

// Source is one snapshot acquisition strategy. Strategies are tried in
// priority order; the first that is available and fetches without error
// wins.
type Source interface {
	// Name returns the source label stamped onto produced snapshots.
	Name() domain.SourceLabel

	// Confidence returns the fixed confidence for this source's tier.
	Confidence() float64

	// Available reports whether the strategy's precondition holds. Cheap,
	// no I/O.
	Available() bool

	// Fetch builds a snapshot for the pair. callerGasPrice (gwei, 0 if
	// unknown) marks competitors bidding above it as suspicious.
	Fetch(ctx context.Context, tokenIn, tokenOut string, callerGasPrice float64) (*domain.MempoolSnapshot, error)
}
