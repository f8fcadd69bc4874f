package snapshot

import (
	"context"
	"fmt"
	"time"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/ethereum"
	"mev-sentinel/internal/gas"
	"mev-sentinel/internal/mempool"
)

// PendingSource builds snapshots from the node's pending pseudo-block.
type PendingSource struct {
	rpc        ethereum.RPCClient
	classifier *mempool.Classifier
	maxRecords int
}

// NewPendingSource creates the pending block strategy.
func NewPendingSource(rpc ethereum.RPCClient, classifier *mempool.Classifier) *PendingSource {
	return &PendingSource{
		rpc:        rpc,
		classifier: classifier,
		maxRecords: mempool.DefaultBufferCapacity,
	}
}

var _ Source = (*PendingSource)(nil)

func (s *PendingSource) Name() domain.SourceLabel { return domain.SourcePendingBlock }

func (s *PendingSource) Confidence() float64 { return domain.ConfidencePendingBlock }

func (s *PendingSource) Available() bool { return true }

func (s *PendingSource) Fetch(ctx context.Context, tokenIn, tokenOut string, callerGasPrice float64) (*domain.MempoolSnapshot, error) {
	block, err := s.rpc.GetPendingBlock(ctx)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("pending block unavailable")
	}

	now := time.Now().UnixMilli()

	// Percentiles come from every decodable transaction; the competitor
	// set keeps only classified swaps.
	var sample []float64
	var competing []domain.PendingTransaction
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if price, ok := tx.GasPriceGwei(); ok {
			sample = append(sample, price)
		}
		if !s.classifier.IsSwap(tx.Recipient(), tx.MethodSelector()) {
			continue
		}
		if len(competing) >= s.maxRecords {
			continue
		}
		if record, ok := s.classifier.Normalize(tx, now, callerGasPrice); ok {
			competing = append(competing, record)
		}
	}

	return &domain.MempoolSnapshot{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		BlockNumber:  block.NumberInt(),
		AvgBlockTime: assumedBlockTime,
		Gas:          gas.Percentiles(sample),
		Competing:    competing,
		Source:       s.Name(),
		Confidence:   s.Confidence(),
		CreatedAt:    now,
	}, nil
}
