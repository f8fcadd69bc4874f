package domain

// AttackType is the primary classification of a risk assessment.
type AttackType string

const (
	AttackSandwich AttackType = "sandwich"
	AttackCopycat  AttackType = "copycat"
	AttackFrontRun AttackType = "frontrun"
	AttackBackRun  AttackType = "backrun"
	AttackJIT      AttackType = "jit_liquidity"
	AttackNone     AttackType = "none"
)

// String returns the string representation of AttackType.
func (a AttackType) String() string {
	return string(a)
}

// RiskAssessment is the final output of one scan. Immutable once created.
type RiskAssessment struct {
	ScanID     string
	TokenIn    string
	TokenOut   string
	Score      int // [0,100]
	Primary    AttackType
	Patterns   []PatternResult // fixed order: sandwich, frontrun, backrun, copycat, jit
	Triggers   []PatternType   // fired patterns ordered by weighted contribution DESC
	Source     SourceLabel     // snapshot source the assessment was based on
	Confidence float64         // snapshot confidence
	CreatedAt  int64           // Unix timestamp in milliseconds
}
