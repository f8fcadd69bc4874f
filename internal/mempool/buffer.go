// Package mempool maintains a live view of competing pending transactions.
package mempool

import (
	"sync"
	"time"

	"mev-sentinel/internal/domain"
)

// DefaultBufferCapacity bounds the number of retained records.
const DefaultBufferCapacity = 100

// Buffer is a bounded ordered store of pending transaction records:
// newest at the head, evicted from the tail. The subscriber is the only
// writer; readers always receive an independent copy.
type Buffer struct {
	mu         sync.RWMutex
	capacity   int
	records    []domain.PendingTransaction
	lastUpdate time.Time
}

// NewBuffer creates a buffer with the given capacity.
// Non-positive capacity falls back to DefaultBufferCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{
		capacity: capacity,
		records:  make([]domain.PendingTransaction, 0, capacity),
	}
}

// Insert places a record at the head, evicting the oldest when full.
func (b *Buffer) Insert(tx domain.PendingTransaction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.records) == b.capacity {
		b.records = b.records[:b.capacity-1]
	}
	b.records = append([]domain.PendingTransaction{tx}, b.records...)
	b.lastUpdate = time.Now()
}

// Snapshot returns a copy of the current records, newest first.
func (b *Buffer) Snapshot() []domain.PendingTransaction {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.PendingTransaction, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// LastUpdate returns the time of the most recent insert, zero if none.
func (b *Buffer) LastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate
}
