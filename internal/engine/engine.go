// Package engine is the facade callers scan through: snapshot acquisition,
// pattern detection and risk aggregation behind three methods that never
// return errors.
package engine

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"mev-sentinel/internal/detect"
	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/idhash"
	"mev-sentinel/internal/mempool"
	"mev-sentinel/internal/observability"
	"mev-sentinel/internal/risk"
	"mev-sentinel/internal/snapshot"
	"mev-sentinel/internal/storage"
)

// Engine wires the aggregator, detectors and risk scoring together.
type Engine struct {
	aggregator  *snapshot.Aggregator
	detectors   []detect.Detector
	subscriber  *mempool.Subscriber       // optional, for status reporting
	attackStore storage.AttackRecordStore // optional, best-effort history
	logger      *log.Logger
}

// NewEngine creates an engine. subscriber and attackStore may be nil.
func NewEngine(aggregator *snapshot.Aggregator, detectors []detect.Detector, subscriber *mempool.Subscriber, attackStore storage.AttackRecordStore, logger *log.Logger) *Engine {
	if len(detectors) == 0 {
		detectors = detect.All()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		aggregator:  aggregator,
		detectors:   detectors,
		subscriber:  subscriber,
		attackStore: attackStore,
		logger:      logger,
	}
}

// GetSnapshot returns the current mempool snapshot for a pair. Never fails;
// worst case is the baseline snapshot.
func (e *Engine) GetSnapshot(ctx context.Context, tokenIn, tokenOut string) *domain.MempoolSnapshot {
	return e.aggregator.GetSnapshot(ctx, tokenIn, tokenOut, 0)
}

// Evaluate runs the detectors and risk scoring over an already-acquired
// snapshot.
func (e *Engine) Evaluate(ctx context.Context, trade domain.TradeIntent, snap *domain.MempoolSnapshot) domain.RiskAssessment {
	started := time.Now()
	scanID := uuid.NewString()

	results := detect.RunAll(ctx, e.detectors, snap, trade, e.logger)

	assessment := domain.RiskAssessment{
		ScanID:     scanID,
		TokenIn:    trade.TokenIn,
		TokenOut:   trade.TokenOut,
		Score:      risk.Score(results),
		Primary:    risk.Classify(results),
		Patterns:   results,
		Triggers:   risk.Triggers(results),
		Source:     snap.Source,
		Confidence: snap.Confidence,
		CreatedAt:  time.Now().UnixMilli(),
	}

	for _, r := range results {
		if r.Detected {
			observability.RecordDetectorFiring(r.Type.String())
		}
	}
	observability.RecordPrimaryAttack(assessment.Primary.String())
	observability.RecordScan(time.Since(started).Seconds())

	e.logger.Printf("[engine] scan %s %s: score=%d primary=%s source=%s",
		scanID, trade.Pair(), assessment.Score, assessment.Primary, snap.Source)

	if assessment.Primary != domain.AttackNone {
		e.recordAttack(assessment, snap)
	}

	return assessment
}

// Scan acquires a snapshot for the trade's pair and evaluates it in one
// call.
func (e *Engine) Scan(ctx context.Context, trade domain.TradeIntent) domain.RiskAssessment {
	callerGas := 0.0
	if trade.GasPrice != nil {
		callerGas = *trade.GasPrice
	}
	snap := e.aggregator.GetSnapshot(ctx, trade.TokenIn, trade.TokenOut, callerGas)
	return e.Evaluate(ctx, trade, snap)
}

// SubscriberStatus returns the live stream's health view for reporting.
func (e *Engine) SubscriberStatus() domain.SubscriberStatus {
	if e.subscriber == nil {
		return domain.SubscriberStatus{Source: "none"}
	}
	return e.subscriber.Status()
}

// recordAttack persists an attack record asynchronously. Failures are
// logged, never surfaced.
func (e *Engine) recordAttack(assessment domain.RiskAssessment, snap *domain.MempoolSnapshot) {
	if e.attackStore == nil {
		return
	}

	record := &domain.AttackRecord{
		AttackID:        idhash.ComputeAttackID(snap.Pair(), assessment.Primary, snap.Source, snap.BlockNumber, assessment.CreatedAt),
		ScanID:          assessment.ScanID,
		Pair:            snap.Pair(),
		AttackType:      assessment.Primary,
		Score:           assessment.Score,
		Confidence:      assessment.Confidence,
		Source:          snap.Source,
		BlockNumber:     snap.BlockNumber,
		CompetitorCount: len(snap.Competing),
		DetectedAt:      assessment.CreatedAt,
		CreatedAt:       time.Now().UnixMilli(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.attackStore.Insert(ctx, record); err != nil {
			observability.RecordWriteError("attack_records")
			e.logger.Printf("[engine] attack record write failed: %v", err)
		}
	}()
}
