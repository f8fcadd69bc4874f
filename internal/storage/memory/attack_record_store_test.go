package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/storage"
)

func sampleRecord(id string, detectedAt int64) *domain.AttackRecord {
	return &domain.AttackRecord{
		AttackID:        id,
		ScanID:          "scan-" + id,
		Pair:            "WETH/USDC",
		AttackType:      domain.AttackSandwich,
		Score:           78,
		Confidence:      0.98,
		Source:          domain.SourceLiveStream,
		BlockNumber:     18000000,
		CompetitorCount: 4,
		DetectedAt:      detectedAt,
		CreatedAt:       detectedAt,
	}
}

func TestAttackRecordStore_InsertAndGetByPair(t *testing.T) {
	store := NewAttackRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, sampleRecord("a1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, sampleRecord("a2", 2000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByPair(ctx, "WETH/USDC", 0)
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].AttackID != "a2" {
		t.Errorf("expected newest first, got %s", got[0].AttackID)
	}
}

func TestAttackRecordStore_DuplicateKey(t *testing.T) {
	store := NewAttackRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, sampleRecord("a1", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, sampleRecord("a1", 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestAttackRecordStore_InvalidInput(t *testing.T) {
	store := NewAttackRecordStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil record, got %v", err)
	}
	r := sampleRecord("", 1000)
	if err := store.Insert(ctx, r); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty attack_id, got %v", err)
	}
	if _, err := store.GetByPair(ctx, "", 10); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty pair, got %v", err)
	}
}

func TestAttackRecordStore_GetRecent(t *testing.T) {
	store := NewAttackRecordStore()
	ctx := context.Background()

	for i, at := range []int64{1000, 2000, 3000} {
		r := sampleRecord([]string{"a1", "a2", "a3"}[i], at)
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetRecent(ctx, 2000, 0)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records since 2000, got %d", len(got))
	}
	if got[0].AttackID != "a3" || got[1].AttackID != "a2" {
		t.Errorf("expected [a3 a2], got [%s %s]", got[0].AttackID, got[1].AttackID)
	}

	limited, err := store.GetRecent(ctx, 0, 1)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(limited) != 1 || limited[0].AttackID != "a3" {
		t.Errorf("expected [a3] with limit 1, got %v", limited)
	}
}

func TestAttackRecordStore_ReturnsCopies(t *testing.T) {
	store := NewAttackRecordStore()
	ctx := context.Background()

	orig := sampleRecord("a1", 1000)
	if err := store.Insert(ctx, orig); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	orig.Score = 0

	got, err := store.GetByPair(ctx, "WETH/USDC", 0)
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if got[0].Score != 78 {
		t.Errorf("external mutation leaked into store: score=%d", got[0].Score)
	}
	got[0].Score = 0

	again, _ := store.GetByPair(ctx, "WETH/USDC", 0)
	if again[0].Score != 78 {
		t.Errorf("returned record mutation leaked into store: score=%d", again[0].Score)
	}
}

func TestAttackRecordStore_ConcurrentAccess(t *testing.T) {
	store := NewAttackRecordStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r := sampleRecord(string(rune('a'+i%26))+string(rune('0'+i/26)), int64(i))
			_ = store.Insert(ctx, r)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.GetByPair(ctx, "WETH/USDC", 10)
		}()
	}
	wg.Wait()
}
