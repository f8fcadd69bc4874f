package snapshot

import (
	"context"
	"time"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/gas"
	"mev-sentinel/internal/mempool"
)

// DefaultStalenessWindow bounds how long the live stream stays eligible
// without producing any activity.
const DefaultStalenessWindow = 30 * time.Second

// StreamSource builds snapshots from the subscriber's live buffer. An empty
// buffer on an active subscription is valid data, not missing data.
type StreamSource struct {
	sub       *mempool.Subscriber
	staleness time.Duration
}

// NewStreamSource creates the live stream strategy. staleness <= 0 selects
// the default window.
func NewStreamSource(sub *mempool.Subscriber, staleness time.Duration) *StreamSource {
	if staleness <= 0 {
		staleness = DefaultStalenessWindow
	}
	return &StreamSource{sub: sub, staleness: staleness}
}

var _ Source = (*StreamSource)(nil)

func (s *StreamSource) Name() domain.SourceLabel { return domain.SourceLiveStream }

func (s *StreamSource) Confidence() float64 { return domain.ConfidenceLiveStream }

// Available requires an active subscription with activity inside the
// staleness window.
func (s *StreamSource) Available() bool {
	if s.sub == nil {
		return false
	}
	status := s.sub.Status()
	return status.Connected && status.LastUpdateAge <= s.staleness
}

func (s *StreamSource) Fetch(_ context.Context, tokenIn, tokenOut string, callerGasPrice float64) (*domain.MempoolSnapshot, error) {
	records := s.sub.Records()

	sample := make([]float64, 0, len(records))
	competing := make([]domain.PendingTransaction, 0, len(records))
	for _, r := range records {
		sample = append(sample, r.GasPrice)
		r.Suspicious = callerGasPrice > 0 && r.GasPrice >= callerGasPrice
		competing = append(competing, r)
	}

	return &domain.MempoolSnapshot{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		BlockNumber:  0,
		AvgBlockTime: assumedBlockTime,
		Gas:          gas.Percentiles(sample),
		Competing:    competing,
		Source:       s.Name(),
		Confidence:   s.Confidence(),
		CreatedAt:    time.Now().UnixMilli(),
	}, nil
}
