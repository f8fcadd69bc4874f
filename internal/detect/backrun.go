package detect

import "mev-sentinel/internal/domain"

// Back-run candidates sit in a band just below the caller's gas price.
const (
	backRunBandLow      = 0.80
	backRunAvgBonusLow  = 0.85
	backRunAvgBonusHigh = 1.00
)

// BackRunDetector looks for reverse-direction competitors priced to land
// immediately after the caller's transaction.
type BackRunDetector struct{}

// NewBackRunDetector creates the back-run detector.
func NewBackRunDetector() *BackRunDetector {
	return &BackRunDetector{}
}

var _ Detector = (*BackRunDetector)(nil)

func (d *BackRunDetector) Type() domain.PatternType { return domain.PatternBackRun }

func (d *BackRunDetector) Detect(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) domain.PatternResult {
	callerGas := effectiveGasPrice(snapshot, trade)

	var (
		gasPrices []float64
		hashes    []string
	)
	for _, tx := range snapshot.Competing {
		if tx.GasPrice < callerGas*backRunBandLow || tx.GasPrice > callerGas {
			continue
		}
		if !reverseDirection(tx, trade) {
			continue
		}
		gasPrices = append(gasPrices, tx.GasPrice)
		hashes = append(hashes, tx.Hash)
	}

	result := domain.PatternResult{
		Type: domain.PatternBackRun,
		Evidence: domain.PatternEvidence{
			Matches:        len(hashes),
			BackRunners:    len(hashes),
			TxHashes:       hashes,
			AvgBackRunGas:  average(gasPrices),
			CallerGasPrice: callerGas,
		},
	}
	if len(hashes) == 0 {
		return result
	}

	confidence := 0.4 + 0.15*float64(len(hashes))
	avg := result.Evidence.AvgBackRunGas
	if avg > callerGas*backRunAvgBonusLow && avg < callerGas*backRunAvgBonusHigh {
		confidence += 0.2
	}

	result.Detected = true
	result.Confidence = capConfidence(confidence)
	return result
}
