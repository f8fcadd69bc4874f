package domain

// SourceLabel identifies which acquisition strategy produced a snapshot.
type SourceLabel string

const (
	SourceLiveStream   SourceLabel = "live_stream"
	SourceGasOracle    SourceLabel = "gas_oracle"
	SourcePendingBlock SourceLabel = "pending_block"
	SourceRecentBlocks SourceLabel = "recent_blocks"
	SourceBaseline     SourceLabel = "baseline"
)

// String returns the string representation of SourceLabel.
func (s SourceLabel) String() string {
	return string(s)
}

// IsValid checks if the label is one of the five strategies.
func (s SourceLabel) IsValid() bool {
	switch s {
	case SourceLiveStream, SourceGasOracle, SourcePendingBlock, SourceRecentBlocks, SourceBaseline:
		return true
	}
	return false
}

// Confidence assigned to each acquisition strategy. Streaming sources never
// report lower confidence than RPC-derived sources.
const (
	ConfidenceLiveStream   = 0.98
	ConfidenceGasOracle    = 0.95
	ConfidencePendingBlock = 0.85
	ConfidenceRecentBlocks = 0.70
	ConfidenceBaseline     = 0.50
)

// GasPercentiles holds the p25/p50/p75/p90 gas-price buckets in gwei.
// Invariant: P25 <= P50 <= P75 <= P90 when derived from a non-empty sample.
type GasPercentiles struct {
	P25 float64
	P50 float64
	P75 float64
	P90 float64
}

// DefaultGasPercentiles returns the fixed fallback quadruple used when no
// sample is available.
func DefaultGasPercentiles() GasPercentiles {
	return GasPercentiles{P25: 20, P50: 35, P75: 50, P90: 80}
}

// Ordered reports whether the percentile invariant holds.
func (g GasPercentiles) Ordered() bool {
	return g.P25 <= g.P50 && g.P50 <= g.P75 && g.P75 <= g.P90
}

// MempoolSnapshot is the unit the aggregator produces and detectors consume.
// Created fresh per aggregator invocation and shared read-only afterwards.
type MempoolSnapshot struct {
	TokenIn      string
	TokenOut     string
	BlockNumber  int64   // 0 when not applicable to the source
	AvgBlockTime float64 // seconds; rough inter-block estimate
	Gas          GasPercentiles
	Competing    []PendingTransaction
	Source       SourceLabel
	Confidence   float64 // [0,1]
	CreatedAt    int64   // Unix timestamp in milliseconds
}

// Pair returns the snapshot's normalized "IN/OUT" pair string.
func (s MempoolSnapshot) Pair() string {
	return NormalizePair(s.TokenIn, s.TokenOut)
}
