package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/storage"
)

// AttackRecordStore implements storage.AttackRecordStore using PostgreSQL.
type AttackRecordStore struct {
	pool *Pool
}

// NewAttackRecordStore creates a new AttackRecordStore.
func NewAttackRecordStore(pool *Pool) *AttackRecordStore {
	return &AttackRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AttackRecordStore = (*AttackRecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if attack_id exists.
func (s *AttackRecordStore) Insert(ctx context.Context, record *domain.AttackRecord) error {
	if record == nil || record.AttackID == "" || record.Pair == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO attack_records (
			attack_id, scan_id, pair, attack_type, score, confidence,
			source, block_number, competitor_count, detected_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		record.AttackID,
		record.ScanID,
		record.Pair,
		string(record.AttackType),
		record.Score,
		record.Confidence,
		string(record.Source),
		record.BlockNumber,
		record.CompetitorCount,
		record.DetectedAt,
		record.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert attack record: %w", err)
	}
	return nil
}

// GetByPair retrieves records for a normalized pair, newest first.
func (s *AttackRecordStore) GetByPair(ctx context.Context, pair string, limit int) ([]*domain.AttackRecord, error) {
	if pair == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT attack_id, scan_id, pair, attack_type, score, confidence,
		       source, block_number, competitor_count, detected_at, created_at
		FROM attack_records
		WHERE pair = $1
		ORDER BY detected_at DESC, attack_id ASC
	`
	args := []any{pair}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attack records by pair: %w", err)
	}
	defer rows.Close()

	return scanAttackRecords(rows)
}

// GetRecent retrieves records detected at or after since (ms), newest first.
func (s *AttackRecordStore) GetRecent(ctx context.Context, since int64, limit int) ([]*domain.AttackRecord, error) {
	query := `
		SELECT attack_id, scan_id, pair, attack_type, score, confidence,
		       source, block_number, competitor_count, detected_at, created_at
		FROM attack_records
		WHERE detected_at >= $1
		ORDER BY detected_at DESC, attack_id ASC
	`
	args := []any{since}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent attack records: %w", err)
	}
	defer rows.Close()

	return scanAttackRecords(rows)
}

func scanAttackRecords(rows pgx.Rows) ([]*domain.AttackRecord, error) {
	var result []*domain.AttackRecord
	for rows.Next() {
		var (
			r          domain.AttackRecord
			attackType string
			source     string
		)
		err := rows.Scan(
			&r.AttackID, &r.ScanID, &r.Pair, &attackType, &r.Score, &r.Confidence,
			&source, &r.BlockNumber, &r.CompetitorCount, &r.DetectedAt, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attack record: %w", err)
		}
		r.AttackType = domain.AttackType(attackType)
		r.Source = domain.SourceLabel(source)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attack records: %w", err)
	}
	return result, nil
}
