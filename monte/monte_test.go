package monte

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Noofbiz/pitchControl/control"
	"gonum.org/v1/gonum/floats"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func smallConfig() control.Config {
	cfg := control.DefaultConfig()
	cfg.GridSize = 15
	cfg.Sigma = 1
	return cfg
}

func fixturePositions() control.PositionSet {
	return control.PositionSet{
		Home: []control.Point{{X: -25, Y: 0}, {X: -10, Y: 20}, {X: 0, Y: -15}},
		Away: []control.Point{{X: 20, Y: 5}, {X: 35, Y: -10}},
	}
}

func TestSampleDeterministicForSeed(t *testing.T) {
	cfg := smallConfig()
	ps := fixturePositions()

	a, err := NewSampler(cfg, 2.0, 99)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	b, err := NewSampler(cfg, 2.0, 99)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}

	sa, err := a.Sample(context.Background(), ps, 12)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	sb, err := b.Sample(context.Background(), ps, 12)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if !floats.Equal(sa.Mean.Values(), sb.Mean.Values()) {
		t.Fatalf("mean grids differ for the same seed")
	}
	if !floats.Equal(sa.Std.Values(), sb.Std.Values()) {
		t.Fatalf("std grids differ for the same seed")
	}
	if sa.HomeTotal != sb.HomeTotal || sa.AwayTotal != sb.AwayTotal {
		t.Fatalf("metric spreads differ: %+v vs %+v", sa.HomeTotal, sb.HomeTotal)
	}
	if sa.Samples != 12 || len(sa.Metrics) != 12 {
		t.Fatalf("expected 12 samples, got %d (%d metrics)", sa.Samples, len(sa.Metrics))
	}
}

func TestSampleZeroNoiseMatchesDeterministicGrid(t *testing.T) {
	cfg := smallConfig()
	ps := fixturePositions()

	want, err := control.ComputeInfluence(ps, cfg)
	if err != nil {
		t.Fatalf("ComputeInfluence failed: %v", err)
	}
	wantMetrics, err := control.ZonalMetrics(want)
	if err != nil {
		t.Fatalf("ZonalMetrics failed: %v", err)
	}

	s, err := NewSampler(cfg, 0, 1)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	sum, err := s.Sample(context.Background(), ps, 5)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	rows, cols := want.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !approxEqual(sum.Mean.At(r, c), want.At(r, c), 1e-12) {
				t.Fatalf("mean (%d,%d) = %v, want %v", r, c, sum.Mean.At(r, c), want.At(r, c))
			}
			if !approxEqual(sum.Std.At(r, c), 0, 1e-12) {
				t.Fatalf("std (%d,%d) = %v, want 0", r, c, sum.Std.At(r, c))
			}
		}
	}
	if !approxEqual(sum.HomeTotal.Mean, wantMetrics.HomeControlTotal, 1e-9) || !approxEqual(sum.HomeTotal.Std, 0, 1e-9) {
		t.Fatalf("unexpected home spread %+v (want mean %v)", sum.HomeTotal, wantMetrics.HomeControlTotal)
	}
}

func TestSampleNoiseProducesSpread(t *testing.T) {
	s, err := NewSampler(smallConfig(), 5.0, 7)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	sum, err := s.Sample(context.Background(), fixturePositions(), 20)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if floats.Max(sum.Std.Values()) <= 0 {
		t.Fatalf("expected some cell-wise spread with 5m noise")
	}
	for _, v := range sum.Mean.Values() {
		if v < -1 || v > 1 {
			t.Fatalf("mean control %v outside [-1, 1]", v)
		}
	}
}

func TestJitterClampsToPitch(t *testing.T) {
	cfg := smallConfig()
	s, err := NewSampler(cfg, 50, 3)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	ps := control.PositionSet{Home: []control.Point{{X: 52, Y: 33}}, Away: []control.Point{{X: -52, Y: -33}}}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		j := s.jitter(ps, rng)
		for _, p := range append(j.Home, j.Away...) {
			if !cfg.Pitch.Contains(p) {
				t.Fatalf("jittered point %+v left the pitch", p)
			}
		}
	}
	// input untouched
	if ps.Home[0] != (control.Point{X: 52, Y: 33}) {
		t.Fatalf("jitter mutated its input: %+v", ps.Home[0])
	}
}

func TestSampleSingleDraw(t *testing.T) {
	s, err := NewSampler(smallConfig(), 1, 4)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	sum, err := s.Sample(context.Background(), fixturePositions(), 1)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if floats.Max(sum.Std.Values()) != 0 || sum.HomeTotal.Std != 0 {
		t.Fatalf("a single draw must have zero spread")
	}
}

func TestSampleErrors(t *testing.T) {
	if _, err := NewSampler(smallConfig(), -1, 0); err == nil {
		t.Fatalf("expected error for negative noise")
	}
	bad := smallConfig()
	bad.GridSize = 0
	if _, err := NewSampler(bad, 1, 0); !errors.Is(err, control.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	s, err := NewSampler(smallConfig(), 1, 0)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	if _, err := s.Sample(context.Background(), fixturePositions(), 0); err == nil {
		t.Fatalf("expected error for zero samples")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Sample(ctx, fixturePositions(), 4); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClampFloat64(t *testing.T) {
	if clampFloat64(5, 0, 1) != 1 || clampFloat64(-5, 0, 1) != 0 || clampFloat64(0.5, 0, 1) != 0.5 {
		t.Fatalf("clampFloat64 returned unexpected values")
	}
}
