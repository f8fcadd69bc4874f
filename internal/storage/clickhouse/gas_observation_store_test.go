package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/storage"
)

func testObservation(pair string, observedAt int64) *domain.GasObservation {
	return &domain.GasObservation{
		Pair:        pair,
		Source:      domain.SourceRecentBlocks,
		BlockNumber: 18000042,
		P25:         22.5,
		P50:         36.0,
		P75:         54.5,
		P90:         83.2,
		SampleSize:  120,
		ObservedAt:  observedAt,
	}
}

func TestGasObservationStore_InsertBatchAndGetRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGasObservationStore(conn)
	ctx := context.Background()

	batch := []*domain.GasObservation{
		testObservation("WETH/USDC", 3000),
		testObservation("WETH/USDC", 1000),
		testObservation("WETH/DAI", 2000),
	}
	require.NoError(t, store.InsertBatch(ctx, batch))

	got, err := store.GetRange(ctx, "WETH/USDC", 0, 5000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].ObservedAt, "expected ascending order")
	assert.Equal(t, int64(3000), got[1].ObservedAt)
	assert.Equal(t, domain.SourceRecentBlocks, got[0].Source)
	assert.Equal(t, int64(18000042), got[0].BlockNumber)
	assert.Equal(t, 120, got[0].SampleSize)
	assert.InDelta(t, 36.0, got[0].P50, 1e-9)
}

func TestGasObservationStore_GetRangeBounds(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGasObservationStore(conn)
	ctx := context.Background()

	batch := []*domain.GasObservation{
		testObservation("WETH/USDC", 1000),
		testObservation("WETH/USDC", 2000),
		testObservation("WETH/USDC", 3000),
	}
	require.NoError(t, store.InsertBatch(ctx, batch))

	got, err := store.GetRange(ctx, "WETH/USDC", 1000, 2000)
	require.NoError(t, err)
	assert.Len(t, got, 2, "range bounds are inclusive")
}

func TestGasObservationStore_EmptyBatchIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGasObservationStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, nil))
}

func TestGasObservationStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGasObservationStore(conn)
	ctx := context.Background()

	err := store.InsertBatch(ctx, []*domain.GasObservation{testObservation("", 1000)})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetRange(ctx, "", 0, 5000)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
