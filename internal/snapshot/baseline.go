package snapshot

import (
	"context"
	"time"

	"mev-sentinel/internal/domain"
)

// BaselineSource is the deterministic last resort: fixed percentiles and an
// empty competitor set. It never fails.
type BaselineSource struct{}

// NewBaselineSource creates the baseline strategy.
func NewBaselineSource() *BaselineSource {
	return &BaselineSource{}
}

var _ Source = (*BaselineSource)(nil)

func (s *BaselineSource) Name() domain.SourceLabel { return domain.SourceBaseline }

func (s *BaselineSource) Confidence() float64 { return domain.ConfidenceBaseline }

func (s *BaselineSource) Available() bool { return true }

func (s *BaselineSource) Fetch(_ context.Context, tokenIn, tokenOut string, _ float64) (*domain.MempoolSnapshot, error) {
	return &domain.MempoolSnapshot{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		BlockNumber:  0,
		AvgBlockTime: assumedBlockTime,
		Gas:          domain.DefaultGasPercentiles(),
		Competing:    []domain.PendingTransaction{},
		Source:       s.Name(),
		Confidence:   s.Confidence(),
		CreatedAt:    time.Now().UnixMilli(),
	}, nil
}
