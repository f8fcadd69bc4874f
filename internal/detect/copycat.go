package detect

import "mev-sentinel/internal/domain"

// copycatAmountTolerance is the relative amount window for a copy.
const copycatAmountTolerance = 0.10

// CopycatDetector looks for near-identical same-pair trades bidding above
// the caller to preempt it.
type CopycatDetector struct{}

// NewCopycatDetector creates the copycat detector.
func NewCopycatDetector() *CopycatDetector {
	return &CopycatDetector{}
}

var _ Detector = (*CopycatDetector)(nil)

func (d *CopycatDetector) Type() domain.PatternType { return domain.PatternCopycat }

func (d *CopycatDetector) Detect(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) domain.PatternResult {
	callerGas := effectiveGasPrice(snapshot, trade)

	var hashes []string
	if trade.AmountIn > 0 {
		tolerance := trade.AmountIn * copycatAmountTolerance
		for _, tx := range snapshot.Competing {
			if !samePair(tx, trade) || tx.GasPrice <= callerGas {
				continue
			}
			diff := tx.Value - trade.AmountIn
			if diff < 0 {
				diff = -diff
			}
			if diff <= tolerance {
				hashes = append(hashes, tx.Hash)
			}
		}
	}

	result := domain.PatternResult{
		Type: domain.PatternCopycat,
		Evidence: domain.PatternEvidence{
			Matches:        len(hashes),
			TxHashes:       hashes,
			CallerGasPrice: callerGas,
		},
	}
	if len(hashes) == 0 {
		return result
	}

	result.Detected = true
	result.Confidence = capConfidence(0.7 + 0.1*float64(len(hashes)))
	return result
}
