package domain

// PatternType identifies one of the five attack patterns.
type PatternType string

const (
	PatternSandwich PatternType = "sandwich"
	PatternFrontRun PatternType = "frontrun"
	PatternBackRun  PatternType = "backrun"
	PatternCopycat  PatternType = "copycat"
	PatternJIT      PatternType = "jit_liquidity"
)

// String returns the string representation of PatternType.
func (p PatternType) String() string {
	return string(p)
}

// PatternEvidence backs a detection with the competing transactions that
// matched. Counts refer to matched transactions only.
type PatternEvidence struct {
	Matches        int
	FrontRunners   int
	BackRunners    int
	TxHashes       []string
	AvgFrontRunGas float64 // gwei; 0 if no front-runners
	AvgBackRunGas  float64 // gwei; 0 if no back-runners
	MaxGasGapRatio float64 // largest (gas-caller)/caller among matches
	CallerGasPrice float64 // gwei actually used (p50 substituted when absent)
}

// PatternResult is the output of a single detector for one scan.
type PatternResult struct {
	Type       PatternType
	Detected   bool
	Confidence float64 // [0,1]
	Evidence   PatternEvidence
}
