package detect

import (
	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/mempool"
)

// jitConfidence is fixed: liquidity insertion either shows up or it does not.
const jitConfidence = 0.6

// JITDetector looks for add-liquidity transactions racing the caller into
// the same block.
type JITDetector struct {
	classifier *mempool.Classifier
}

// NewJITDetector creates the JIT liquidity detector.
func NewJITDetector(classifier *mempool.Classifier) *JITDetector {
	if classifier == nil {
		classifier = mempool.NewClassifier()
	}
	return &JITDetector{classifier: classifier}
}

var _ Detector = (*JITDetector)(nil)

func (d *JITDetector) Type() domain.PatternType { return domain.PatternJIT }

func (d *JITDetector) Detect(snapshot *domain.MempoolSnapshot, trade domain.TradeIntent) domain.PatternResult {
	callerGas := effectiveGasPrice(snapshot, trade)

	var hashes []string
	for _, tx := range snapshot.Competing {
		if d.classifier.IsAddLiquidity(tx.MethodSelector) {
			hashes = append(hashes, tx.Hash)
		}
	}

	result := domain.PatternResult{
		Type: domain.PatternJIT,
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
	result.Confidence = jitConfidence
	return result
}
