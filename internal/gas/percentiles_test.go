package gas

import (
	"math/rand"
	"testing"
)

func TestPercentiles_EmptySample(t *testing.T) {
	got := Percentiles(nil)

	if got.P25 != 20 || got.P50 != 35 || got.P75 != 50 || got.P90 != 80 {
		t.Errorf("expected default quadruple 20/35/50/80, got %+v", got)
	}
}

func TestPercentiles_SingleValue(t *testing.T) {
	got := Percentiles([]float64{42})

	if got.P25 != 42 || got.P50 != 42 || got.P75 != 42 || got.P90 != 42 {
		t.Errorf("single sample should fill every bucket, got %+v", got)
	}
}

func TestPercentiles_NearestRank(t *testing.T) {
	// 10 sorted values: index floor(10*p) selects 2.5 -> 2, 5, 7, 9
	sample := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	got := Percentiles(sample)

	if got.P25 != 30 {
		t.Errorf("P25: expected 30, got %v", got.P25)
	}
	if got.P50 != 60 {
		t.Errorf("P50: expected 60, got %v", got.P50)
	}
	if got.P75 != 80 {
		t.Errorf("P75: expected 80, got %v", got.P75)
	}
	if got.P90 != 100 {
		t.Errorf("P90: expected 100, got %v", got.P90)
	}
}

func TestPercentiles_UnorderedInput(t *testing.T) {
	got := Percentiles([]float64{100, 10, 60, 30, 90, 20, 80, 40, 70, 50})

	want := Percentiles([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
	if got != want {
		t.Errorf("ordering of the input must not matter: got %+v want %+v", got, want)
	}
}

func TestPercentiles_DoesNotMutateInput(t *testing.T) {
	sample := []float64{3, 1, 2}
	Percentiles(sample)

	if sample[0] != 3 || sample[1] != 1 || sample[2] != 2 {
		t.Errorf("input slice was mutated: %v", sample)
	}
}

func TestPercentiles_OrderedInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(50) + 1
		sample := make([]float64, n)
		for j := range sample {
			sample[j] = rng.Float64() * 500
		}

		got := Percentiles(sample)
		if !got.Ordered() {
			t.Fatalf("invariant p25<=p50<=p75<=p90 violated for n=%d: %+v", n, got)
		}
	}
}
