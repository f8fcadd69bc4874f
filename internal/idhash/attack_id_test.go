package idhash

import (
	"testing"

	"mev-sentinel/internal/domain"
)

func TestComputeAttackID(t *testing.T) {
	got := ComputeAttackID("WETH/USDC", domain.AttackSandwich, domain.SourceLiveStream, 18000000, 1704067200000)

	if len(got) != 64 {
		t.Errorf("ComputeAttackID() length = %d, want 64", len(got))
	}

	got2 := ComputeAttackID("WETH/USDC", domain.AttackSandwich, domain.SourceLiveStream, 18000000, 1704067200000)
	if got != got2 {
		t.Errorf("ComputeAttackID() not deterministic: %s != %s", got, got2)
	}
}

func TestComputeAttackID_DistinctInputs(t *testing.T) {
	base := ComputeAttackID("WETH/USDC", domain.AttackSandwich, domain.SourceLiveStream, 18000000, 1704067200000)

	variants := []string{
		ComputeAttackID("WETH/DAI", domain.AttackSandwich, domain.SourceLiveStream, 18000000, 1704067200000),
		ComputeAttackID("WETH/USDC", domain.AttackFrontRun, domain.SourceLiveStream, 18000000, 1704067200000),
		ComputeAttackID("WETH/USDC", domain.AttackSandwich, domain.SourceBaseline, 18000000, 1704067200000),
		ComputeAttackID("WETH/USDC", domain.AttackSandwich, domain.SourceLiveStream, 18000001, 1704067200000),
		ComputeAttackID("WETH/USDC", domain.AttackSandwich, domain.SourceLiveStream, 18000000, 1704067200001),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base hash", i)
		}
	}
}
