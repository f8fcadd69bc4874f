package detect

import "mev-sentinel/internal/domain"

// FrontRunDetector looks for related-pair competitors bidding above the
// caller's gas price.
type FrontRunDetector struct{}

// NewFrontRunDetector creates the front-run detector.
func NewFrontRunDetector() *FrontRunDetector {
	return &FrontRunDetector{}
}

var _ Detector = (*FrontRunDetector)(nil)

func (d *FrontRunDetector) Type() domain.PatternType { return domain.PatternFrontRun }

func (d *FrontRunDetector) Detect(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) domain.PatternResult {
	callerGas := effectiveGasPrice(snapshot, trade)

	var (
		hashes []string
		maxGap float64
	)
	for _, tx := range snapshot.Competing {
		if tx.GasPrice <= callerGas || !related(tx, trade) {
			continue
		}
		hashes = append(hashes, tx.Hash)
		if callerGas > 0 {
			if gap := (tx.GasPrice - callerGas) / callerGas; gap > maxGap {
				maxGap = gap
			}
		}
	}

	result := domain.PatternResult{
		Type: domain.PatternFrontRun,
		Evidence: domain.PatternEvidence{
			Matches:        len(hashes),
			FrontRunners:   len(hashes),
			TxHashes:       hashes,
			MaxGasGapRatio: maxGap,
			CallerGasPrice: callerGas,
		},
	}
	if len(hashes) == 0 {
		return result
	}

	result.Detected = true
	result.Confidence = capConfidence(0.5 + 0.1*float64(len(hashes)) + 0.3*maxGap)
	return result
}
