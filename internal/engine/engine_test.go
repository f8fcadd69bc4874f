package engine

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/snapshot"
	"mev-sentinel/internal/storage"
	"mev-sentinel/internal/storage/memory"
)

// stubSource serves a fixed competitor set as the live stream.
type stubSource struct {
	competing []domain.PendingTransaction
}

func (s *stubSource) Name() domain.SourceLabel { return domain.SourceLiveStream }
func (s *stubSource) Confidence() float64      { return domain.ConfidenceLiveStream }
func (s *stubSource) Available() bool          { return true }

func (s *stubSource) Fetch(_ context.Context, tokenIn, tokenOut string, _ float64) (*domain.MempoolSnapshot, error) {
	return &domain.MempoolSnapshot{
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		Gas:        domain.GasPercentiles{P25: 20, P50: 35, P75: 50, P90: 80},
		Competing:  s.competing,
		Source:     domain.SourceLiveStream,
		Confidence: domain.ConfidenceLiveStream,
		CreatedAt:  time.Now().UnixMilli(),
	}, nil
}

func newTestEngine(sources []snapshot.Source, store storage.AttackRecordStore) *Engine {
	logger := log.New(io.Discard, "", 0)
	cache := snapshot.NewCache(snapshot.DefaultCacheConfig())
	agg := snapshot.NewAggregator(cache, sources, snapshot.DefaultAggregatorConfig(), nil, logger)
	return NewEngine(agg, nil, nil, store, logger)
}

func gwei(v float64) *float64 { return &v }

func sandwichCompetitors() []domain.PendingTransaction {
	return []domain.PendingTransaction{
		{Hash: "0xfront", GasPrice: 100, Value: 1, MethodSelector: "0x38ed1739", TokenIn: "A", TokenOut: "B", ObservedAt: time.Now().UnixMilli()},
		{Hash: "0xback", GasPrice: 20, Value: 1, MethodSelector: "0x38ed1739", TokenIn: "B", TokenOut: "A", ObservedAt: time.Now().UnixMilli()},
	}
}

func TestEngine_ScanNoCompetitors(t *testing.T) {
	eng := newTestEngine([]snapshot.Source{snapshot.NewBaselineSource()}, nil)

	assessment := eng.Scan(context.Background(), domain.TradeIntent{
		TokenIn: "A", TokenOut: "B", AmountIn: 1, GasPrice: gwei(50),
	})

	if assessment.Score > 20 {
		t.Errorf("empty mempool must score <= 20, got %d", assessment.Score)
	}
	if assessment.Primary != domain.AttackNone {
		t.Errorf("expected none classification, got %s", assessment.Primary)
	}
	for _, p := range assessment.Patterns {
		if p.Detected {
			t.Errorf("%s: detected on empty competitor set", p.Type)
		}
	}
	if assessment.Source != domain.SourceBaseline || assessment.Confidence != domain.ConfidenceBaseline {
		t.Errorf("expected baseline provenance, got %s/%f", assessment.Source, assessment.Confidence)
	}
	if assessment.ScanID == "" {
		t.Error("expected a scan id")
	}
}

func TestEngine_ScanClassicSandwich(t *testing.T) {
	eng := newTestEngine([]snapshot.Source{
		&stubSource{competing: sandwichCompetitors()},
		snapshot.NewBaselineSource(),
	}, nil)

	assessment := eng.Scan(context.Background(), domain.TradeIntent{
		TokenIn: "A", TokenOut: "B", AmountIn: 1, GasPrice: gwei(50),
	})

	if assessment.Primary != domain.AttackSandwich {
		t.Errorf("expected sandwich classification, got %s", assessment.Primary)
	}
	if assessment.Score <= 0 || assessment.Score > 100 {
		t.Errorf("score out of range: %d", assessment.Score)
	}
	if assessment.Patterns[0].Type != domain.PatternSandwich || !assessment.Patterns[0].Detected {
		t.Error("sandwich detector result missing or not fired")
	}
	if len(assessment.Triggers) == 0 || assessment.Triggers[0] != domain.PatternSandwich {
		t.Errorf("expected sandwich as top trigger, got %v", assessment.Triggers)
	}
}

func TestEngine_EvaluateUsesProvidedSnapshot(t *testing.T) {
	eng := newTestEngine([]snapshot.Source{snapshot.NewBaselineSource()}, nil)

	snap := &domain.MempoolSnapshot{
		TokenIn:    "A",
		TokenOut:   "B",
		Gas:        domain.DefaultGasPercentiles(),
		Competing:  sandwichCompetitors(),
		Source:     domain.SourcePendingBlock,
		Confidence: domain.ConfidencePendingBlock,
		CreatedAt:  time.Now().UnixMilli(),
	}

	assessment := eng.Evaluate(context.Background(), domain.TradeIntent{
		TokenIn: "A", TokenOut: "B", AmountIn: 1, GasPrice: gwei(50),
	}, snap)

	if assessment.Source != domain.SourcePendingBlock {
		t.Errorf("assessment must carry the snapshot's source, got %s", assessment.Source)
	}
	if assessment.Primary != domain.AttackSandwich {
		t.Errorf("expected sandwich, got %s", assessment.Primary)
	}
}

func TestEngine_RecordsAttackHistory(t *testing.T) {
	store := memory.NewAttackRecordStore()
	eng := newTestEngine([]snapshot.Source{
		&stubSource{competing: sandwichCompetitors()},
		snapshot.NewBaselineSource(),
	}, store)

	eng.Scan(context.Background(), domain.TradeIntent{
		TokenIn: "A", TokenOut: "B", AmountIn: 1, GasPrice: gwei(50),
	})

	// The write is asynchronous.
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := store.GetByPair(context.Background(), "A/B", 0)
		if err == nil && len(records) == 1 {
			if records[0].AttackType != domain.AttackSandwich {
				t.Errorf("expected sandwich record, got %s", records[0].AttackType)
			}
			if records[0].CompetitorCount != 2 {
				t.Errorf("expected 2 competitors recorded, got %d", records[0].CompetitorCount)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("attack record never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEngine_NoRecordWithoutAttack(t *testing.T) {
	store := memory.NewAttackRecordStore()
	eng := newTestEngine([]snapshot.Source{snapshot.NewBaselineSource()}, store)

	eng.Scan(context.Background(), domain.TradeIntent{
		TokenIn: "A", TokenOut: "B", AmountIn: 1, GasPrice: gwei(50),
	})

	time.Sleep(50 * time.Millisecond)
	records, err := store.GetByPair(context.Background(), "A/B", 0)
	if err != nil {
		t.Fatalf("GetByPair failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("no-attack scan must not persist a record, got %d", len(records))
	}
}

func TestEngine_SubscriberStatusWithoutSubscriber(t *testing.T) {
	eng := newTestEngine([]snapshot.Source{snapshot.NewBaselineSource()}, nil)

	status := eng.SubscriberStatus()
	if status.Connected {
		t.Error("no subscriber must report disconnected")
	}
	if status.Source != "none" {
		t.Errorf("expected source none, got %s", status.Source)
	}
}
