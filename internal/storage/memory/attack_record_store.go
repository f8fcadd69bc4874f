package memory

import (
	"context"
	"sort"
	"sync"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/storage"
)

// AttackRecordStore is an in-memory implementation of storage.AttackRecordStore.
type AttackRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AttackRecord // keyed by attack_id
}

// NewAttackRecordStore creates a new in-memory attack record store.
func NewAttackRecordStore() *AttackRecordStore {
	return &AttackRecordStore{
		data: make(map[string]*domain.AttackRecord),
	}
}

var _ storage.AttackRecordStore = (*AttackRecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if attack_id exists.
func (s *AttackRecordStore) Insert(_ context.Context, record *domain.AttackRecord) error {
	if record == nil || record.AttackID == "" || record.Pair == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[record.AttackID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	recordCopy := *record
	s.data[record.AttackID] = &recordCopy
	return nil
}

// GetByPair retrieves records for a normalized pair, newest first.
func (s *AttackRecordStore) GetByPair(_ context.Context, pair string, limit int) ([]*domain.AttackRecord, error) {
	if pair == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AttackRecord
	for _, r := range s.data {
		if r.Pair == pair {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sortNewestFirst(result)
	return truncate(result, limit), nil
}

// GetRecent retrieves records detected at or after since (ms), newest first.
func (s *AttackRecordStore) GetRecent(_ context.Context, since int64, limit int) ([]*domain.AttackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AttackRecord
	for _, r := range s.data {
		if r.DetectedAt >= since {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sortNewestFirst(result)
	return truncate(result, limit), nil
}

func sortNewestFirst(records []*domain.AttackRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].DetectedAt != records[j].DetectedAt {
			return records[i].DetectedAt > records[j].DetectedAt
		}
		return records[i].AttackID < records[j].AttackID
	})
}

func truncate(records []*domain.AttackRecord, limit int) []*domain.AttackRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
