package memory

import (
	"context"
	"sort"
	"sync"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/storage"
)

// GasObservationStore is an in-memory implementation of storage.GasObservationStore.
type GasObservationStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.GasObservation // keyed by pair
}

// NewGasObservationStore creates a new in-memory gas observation store.
func NewGasObservationStore() *GasObservationStore {
	return &GasObservationStore{
		data: make(map[string][]*domain.GasObservation),
	}
}

var _ storage.GasObservationStore = (*GasObservationStore)(nil)

// InsertBatch appends a batch of observations. Nil entries and entries
// without a pair are rejected before any write happens.
func (s *GasObservationStore) InsertBatch(_ context.Context, observations []*domain.GasObservation) error {
	for _, o := range observations {
		if o == nil || o.Pair == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range observations {
		obsCopy := *o
		s.data[o.Pair] = append(s.data[o.Pair], &obsCopy)
	}
	return nil
}

// GetRange retrieves observations for a pair within [start, end] (inclusive),
// ordered by observation time ASC.
func (s *GasObservationStore) GetRange(_ context.Context, pair string, start, end int64) ([]*domain.GasObservation, error) {
	if pair == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GasObservation
	for _, o := range s.data[pair] {
		if o.ObservedAt >= start && o.ObservedAt <= end {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt < result[j].ObservedAt
	})

	return result, nil
}
