// Package risk combines detector outputs into one bounded assessment.
package risk

import (
	"math"
	"sort"

	"mev-sentinel/internal/domain"
)

// Fixed per-pattern weights. They sum to 1.0 so a full-confidence board
// saturates the scale exactly.
var patternWeights = map[domain.PatternType]float64{
	domain.PatternSandwich: 0.40,
	domain.PatternFrontRun: 0.30,
	domain.PatternCopycat:  0.15,
	domain.PatternBackRun:  0.10,
	domain.PatternJIT:      0.05,
}

// Classification precedence with per-pattern confidence floors. First
// pattern that fired above its floor wins.
var classificationOrder = []struct {
	pattern domain.PatternType
	attack  domain.AttackType
	floor   float64
}{
	{domain.PatternSandwich, domain.AttackSandwich, 0.7},
	{domain.PatternCopycat, domain.AttackCopycat, 0.7},
	{domain.PatternFrontRun, domain.AttackFrontRun, 0.6},
	{domain.PatternBackRun, domain.AttackBackRun, 0.6},
	{domain.PatternJIT, domain.AttackJIT, 0.6},
}

// Weight returns the fixed weight for a pattern, 0 for unknown patterns.
func Weight(pattern domain.PatternType) float64 {
	return patternWeights[pattern]
}

// Score combines fired detections into an integer score in [0, 100].
func Score(results []domain.PatternResult) int {
	var total float64
	for _, r := range results {
		if !r.Detected {
			continue
		}
		total += r.Confidence * patternWeights[r.Type] * 100
	}

	score := int(math.Round(total))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Classify derives the primary attack classification by precedence.
func Classify(results []domain.PatternResult) domain.AttackType {
	byType := make(map[domain.PatternType]domain.PatternResult, len(results))
	for _, r := range results {
		byType[r.Type] = r
	}

	for _, c := range classificationOrder {
		r, ok := byType[c.pattern]
		if ok && r.Detected && r.Confidence > c.floor {
			return c.attack
		}
	}
	return domain.AttackNone
}

// Triggers lists the fired patterns ordered by weighted contribution,
// highest first. Ties break on the fixed precedence order.
func Triggers(results []domain.PatternResult) []domain.PatternType {
	type contribution struct {
		pattern  domain.PatternType
		weighted float64
		rank     int
	}

	rank := make(map[domain.PatternType]int, len(classificationOrder))
	for i, c := range classificationOrder {
		rank[c.pattern] = i
	}

	var fired []contribution
	for _, r := range results {
		if !r.Detected {
			continue
		}
		fired = append(fired, contribution{
			pattern:  r.Type,
			weighted: r.Confidence * patternWeights[r.Type],
			rank:     rank[r.Type],
		})
	}

	sort.Slice(fired, func(i, j int) bool {
		if fired[i].weighted != fired[j].weighted {
			return fired[i].weighted > fired[j].weighted
		}
		return fired[i].rank < fired[j].rank
	})

	triggers := make([]domain.PatternType, 0, len(fired))
	for _, c := range fired {
		triggers = append(triggers, c.pattern)
	}
	return triggers
}
