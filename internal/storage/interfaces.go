// Package storage defines persistence contracts for attack history and
// gas observations. The scan path never depends on a store being present:
// persistence is best-effort and failures degrade to log lines.
package storage

import (
	"context"

	"mev-sentinel/internal/domain"
)

// AttackRecordStore persists scans that classified a primary attack.
type AttackRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if attack_id exists.
	Insert(ctx context.Context, record *domain.AttackRecord) error

	// GetByPair retrieves records for a normalized pair, newest first.
	GetByPair(ctx context.Context, pair string, limit int) ([]*domain.AttackRecord, error)

	// GetRecent retrieves records detected at or after the given timestamp
	// (ms), newest first.
	GetRecent(ctx context.Context, since int64, limit int) ([]*domain.AttackRecord, error)
}

// GasObservationStore persists gas-percentile measurements for later
// baseline tuning and provider comparison.
type GasObservationStore interface {
	// InsertBatch appends a batch of observations.
	InsertBatch(ctx context.Context, observations []*domain.GasObservation) error

	// GetRange retrieves observations for a pair within [start, end] (ms),
	// ordered by observation time ASC.
	GetRange(ctx context.Context, pair string, start, end int64) ([]*domain.GasObservation, error)
}
