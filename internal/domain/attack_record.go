package domain

// AttackRecord is the persisted trace of a scan that classified a primary
// attack. Corresponds to attack_records table in PostgreSQL.
type AttackRecord struct {
	AttackID        string // deterministic sha256 hex, primary key
	ScanID          string
	Pair            string // normalized "IN/OUT"
	AttackType      AttackType
	Score           int
	Confidence      float64
	Source          SourceLabel
	BlockNumber     int64
	CompetitorCount int
	DetectedAt      int64 // Unix timestamp in milliseconds
	CreatedAt       int64 // record creation timestamp (ms)
}

// GasObservation is one gas-percentile measurement produced by a snapshot.
// Corresponds to gas_observations table in ClickHouse.
type GasObservation struct {
	Pair        string
	Source      SourceLabel
	BlockNumber int64
	P25         float64
	P50         float64
	P75         float64
	P90         float64
	SampleSize  int
	ObservedAt  int64 // Unix timestamp in milliseconds
}
