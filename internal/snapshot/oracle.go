package snapshot

import (
	"context"
	"strings"
	"time"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/gasoracle"
)

// OracleSource builds snapshots from the premium streaming provider.
type OracleSource struct {
	client *gasoracle.Client
}

// NewOracleSource creates the premium provider strategy.
func NewOracleSource(client *gasoracle.Client) *OracleSource {
	return &OracleSource{client: client}
}

var _ Source = (*OracleSource)(nil)

func (s *OracleSource) Name() domain.SourceLabel { return domain.SourceGasOracle }

func (s *OracleSource) Confidence() float64 { return domain.ConfidenceGasOracle }

// Available requires a configured provider credential.
func (s *OracleSource) Available() bool {
	return s.client.Configured()
}

func (s *OracleSource) Fetch(ctx context.Context, tokenIn, tokenOut string, callerGasPrice float64) (*domain.MempoolSnapshot, error) {
	est, err := s.client.Estimates(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	competing := make([]domain.PendingTransaction, 0, len(est.Pending))
	for _, e := range est.Pending {
		selector := ""
		if len(e.Input) >= 10 {
			selector = strings.ToLower(e.Input[:10])
		}
		competing = append(competing, domain.PendingTransaction{
			Hash:           strings.ToLower(e.Hash),
			From:           strings.ToLower(e.From),
			To:             strings.ToLower(e.To),
			GasPrice:       e.GasPrice,
			Value:          e.Value,
			MethodSelector: selector,
			TokenIn:        domain.UnknownToken,
			TokenOut:       domain.UnknownToken,
			ObservedAt:     now,
			Suspicious:     callerGasPrice > 0 && e.GasPrice >= callerGasPrice,
		})
	}

	avgBlockTime := est.AvgBlockTime
	if avgBlockTime <= 0 {
		avgBlockTime = assumedBlockTime
	}

	return &domain.MempoolSnapshot{
		TokenIn:      tokenIn,
		TokenOut:     tokenOut,
		BlockNumber:  est.BlockNumber,
		AvgBlockTime: avgBlockTime,
		Gas:          est.Gas,
		Competing:    competing,
		Source:       s.Name(),
		Confidence:   s.Confidence(),
		CreatedAt:    now,
	}, nil
}
