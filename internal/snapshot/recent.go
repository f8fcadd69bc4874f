package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/ethereum"
	"mev-sentinel/internal/gas"
)

// DefaultRecentBlockCount is how many confirmed blocks the heuristic samples.
const DefaultRecentBlockCount = 5

// Base fees approximate the real gas distribution poorly on their own, so
// each fee is expanded into a small spread around the prevailing price.
var baseFeeMultipliers = [...]float64{0.9, 1.0, 1.25, 1.6}

// RecentSource estimates gas from the base fees of the last few confirmed
// blocks. It yields no competitor set.
type RecentSource struct {
	rpc        ethereum.RPCClient
	blockCount int
}

// NewRecentSource creates the recent blocks strategy. blockCount <= 0
// selects the default.
func NewRecentSource(rpc ethereum.RPCClient, blockCount int) *RecentSource {
	if blockCount <= 0 {
		blockCount = DefaultRecentBlockCount
	}
	return &RecentSource{rpc: rpc, blockCount: blockCount}
}

var _ Source = (*RecentSource)(nil)

func (s *RecentSource) Name() domain.SourceLabel { return domain.SourceRecentBlocks }

func (s *RecentSource) Confidence() float64 { return domain.ConfidenceRecentBlocks }

func (s *RecentSource) Available() bool { return true }

func (s *RecentSource) Fetch(ctx context.Context, tokenIn, tokenOut string, _ float64) (*domain.MempoolSnapshot, error) {
	head, err := s.rpc.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	count := s.blockCount
	if int64(count) > head {
		count = int(head)
	}
	if count < 1 {
		return nil, fmt.Errorf("chain too short for block heuristic")
	}

	var mu sync.Mutex
	blocks := make([]*ethereum.Block, count)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			block, err := s.rpc.GetBlockByNumber(gctx, head-int64(i), false)
			if err != nil {
				return err
			}
			mu.Lock()
			blocks[i] = block
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sample []float64
	var newest, oldest int64
	sampled := 0
	for _, block := range blocks {
		if block == nil {
			continue
		}
		sampled++
		if ts := block.TimestampUnix(); ts > 0 {
			if newest == 0 || ts > newest {
				newest = ts
			}
			if oldest == 0 || ts < oldest {
				oldest = ts
			}
		}
		fee := block.BaseFeeGwei()
		if fee <= 0 {
			continue
		}
		for _, m := range baseFeeMultipliers {
			sample = append(sample, fee*m)
		}
	}
	if sampled == 0 {
		return nil, fmt.Errorf("no recent blocks fetched")
	}

	avgBlockTime := assumedBlockTime
	if sampled > 1 && newest > oldest {
		avgBlockTime = float64(newest-oldest) / float64(sampled-1)
	}

	return &domain.MempoolSnapshot{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		BlockNumber:  head,
		AvgBlockTime: avgBlockTime,
		Gas:          gas.Percentiles(sample),
		Competing:    nil,
		Source:       s.Name(),
		Confidence:   s.Confidence(),
		CreatedAt:    time.Now().UnixMilli(),
	}, nil
}
