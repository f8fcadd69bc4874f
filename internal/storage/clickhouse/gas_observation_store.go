package clickhouse

import (
	"context"
	"fmt"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/storage"
)

// GasObservationStore implements storage.GasObservationStore using ClickHouse.
type GasObservationStore struct {
	conn *Conn
}

// NewGasObservationStore creates a new GasObservationStore.
func NewGasObservationStore(conn *Conn) *GasObservationStore {
	return &GasObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.GasObservationStore = (*GasObservationStore)(nil)

// InsertBatch appends a batch of observations.
func (s *GasObservationStore) InsertBatch(ctx context.Context, observations []*domain.GasObservation) error {
	if len(observations) == 0 {
		return nil
	}
	for _, o := range observations {
		if o == nil || o.Pair == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO gas_observations (
			pair, source, block_number, p25, p50, p75, p90, sample_size, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range observations {
		err = batch.Append(
			o.Pair, string(o.Source), uint64(o.BlockNumber),
			o.P25, o.P50, o.P75, o.P90,
			uint32(o.SampleSize), uint64(o.ObservedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetRange retrieves observations for a pair within [start, end] (inclusive),
// ordered by observation time ASC.
func (s *GasObservationStore) GetRange(ctx context.Context, pair string, start, end int64) ([]*domain.GasObservation, error) {
	if pair == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT pair, source, block_number, p25, p50, p75, p90, sample_size, observed_at
		FROM gas_observations
		WHERE pair = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, pair, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query gas observations: %w", err)
	}
	defer rows.Close()

	var result []*domain.GasObservation
	for rows.Next() {
		var (
			o           domain.GasObservation
			source      string
			blockNumber uint64
			sampleSize  uint32
			observedAt  uint64
		)
		err := rows.Scan(
			&o.Pair, &source, &blockNumber,
			&o.P25, &o.P50, &o.P75, &o.P90,
			&sampleSize, &observedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan gas observation: %w", err)
		}
		o.Source = domain.SourceLabel(source)
		o.BlockNumber = int64(blockNumber)
		o.SampleSize = int(sampleSize)
		o.ObservedAt = int64(observedAt)
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gas observations: %w", err)
	}
	return result, nil
}
