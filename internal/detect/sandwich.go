package detect

import "mev-sentinel/internal/domain"

// Sandwich partition thresholds relative to the caller's gas price.
const (
	frontRunGasRatio = 1.05
	backRunGasRatio  = 0.95
)

// SandwichDetector looks for the two-sided pattern: a higher-gas
// same-direction transaction ahead of the caller and a lower-gas
// reverse-direction transaction behind it.
type SandwichDetector struct{}

// NewSandwichDetector creates the sandwich detector.
func NewSandwichDetector() *SandwichDetector {
	return &SandwichDetector{}
}

var _ Detector = (*SandwichDetector)(nil)

func (d *SandwichDetector) Type() domain.PatternType { return domain.PatternSandwich }

func (d *SandwichDetector) Detect(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) domain.PatternResult {
	callerGas := effectiveGasPrice(snapshot, trade)

	var (
		frontGas, backGas []float64
		hashes            []string
	)
	for _, tx := range snapshot.Competing {
		switch {
		case tx.GasPrice >= callerGas*frontRunGasRatio && sameDirection(tx, trade):
			frontGas = append(frontGas, tx.GasPrice)
			hashes = append(hashes, tx.Hash)
		case tx.GasPrice <= callerGas*backRunGasRatio && reverseDirection(tx, trade):
			backGas = append(backGas, tx.GasPrice)
			hashes = append(hashes, tx.Hash)
		}
	}

	result := domain.PatternResult{
		Type: domain.PatternSandwich,
		Evidence: domain.PatternEvidence{
			Matches:        len(frontGas) + len(backGas),
			FrontRunners:   len(frontGas),
			BackRunners:    len(backGas),
			TxHashes:       hashes,
			AvgFrontRunGas: average(frontGas),
			AvgBackRunGas:  average(backGas),
			CallerGasPrice: callerGas,
		},
	}
	if len(frontGas) == 0 || len(backGas) == 0 {
		return result
	}

	confidence := 0.6
	confidence += 0.1 * float64(len(frontGas)-1)
	confidence += 0.1 * float64(len(backGas)-1)
	if result.Evidence.AvgFrontRunGas > callerGas && result.Evidence.AvgBackRunGas < callerGas {
		// Correct sandwich ordering: ahead above, behind below.
		confidence += 0.2
	}

	result.Detected = true
	result.Confidence = capConfidence(confidence)
	return result
}
