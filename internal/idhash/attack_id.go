// Package idhash computes deterministic identifiers for persisted records.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"mev-sentinel/internal/domain"
)

// ComputeAttackID computes a deterministic attack_id using SHA256.
// Formula: SHA256(pair|attack_type|source|block_number|detected_at)
// Returns hex-encoded hash (64 characters).
//
// Scans that classify the same attack on the same pair, snapshot source,
// block and millisecond collapse to one record.
func ComputeAttackID(
	pair string,
	attackType domain.AttackType,
	source domain.SourceLabel,
	blockNumber int64,
	detectedAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d",
		pair,
		string(attackType),
		string(source),
		blockNumber,
		detectedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
