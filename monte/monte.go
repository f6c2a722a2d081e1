package monte

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Noofbiz/pitchControl/control"
)

// Spread is the mean and sample standard deviation of a metric across
// Monte Carlo draws.
type Spread struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Summary aggregates the control grids of every draw.
type Summary struct {
	Samples int

	// Mean and Std are cell-wise statistics over the sampled control grids.
	Mean *control.Grid
	Std  *control.Grid

	HomeTotal Spread
	AwayTotal Spread

	// Metrics holds the zonal metrics of each draw, in draw order.
	Metrics []control.Metrics
}

// Sampler estimates how sensitive a control grid is to tracking noise by
// jittering every player with an isotropic Gaussian offset and recomputing
// the grid many times.
type Sampler struct {
	Cfg control.Config

	// Noise is the standard deviation of the per-axis offset, in meters.
	Noise float64

	// ClampToPitch keeps jittered players inside the pitch rectangle.
	ClampToPitch bool

	// rng seeds the per-draw generators.
	rng *rand.Rand
}

// NewSampler creates a Sampler. The same seed always yields the same
// Summary for the same inputs.
func NewSampler(cfg control.Config, noise float64, seed int64) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if noise < 0 || math.IsNaN(noise) || math.IsInf(noise, 0) {
		return nil, fmt.Errorf("noise must be a finite value >= 0, got %v", noise)
	}
	return &Sampler{
		Cfg:          cfg,
		Noise:        noise,
		ClampToPitch: true,
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

// SetClampToPitch toggles clamping of jittered positions to the pitch.
func (s *Sampler) SetClampToPitch(v bool) {
	s.ClampToPitch = v
}

// jitter returns a copy of ps with every player displaced by N(0, Noise²)
// on each axis.
func (s *Sampler) jitter(ps control.PositionSet, rng *rand.Rand) control.PositionSet {
	halfL, halfW := s.Cfg.Pitch.Length/2, s.Cfg.Pitch.Width/2
	move := func(pts []control.Point) {
		for i := range pts {
			x := pts[i].X + rng.NormFloat64()*s.Noise
			y := pts[i].Y + rng.NormFloat64()*s.Noise
			if s.ClampToPitch {
				x = clampFloat64(x, -halfL, halfL)
				y = clampFloat64(y, -halfW, halfW)
			}
			pts[i] = control.Point{X: x, Y: y}
		}
	}
	out := ps.Clone()
	move(out.Home)
	move(out.Away)
	return out
}

// Sample draws n jittered copies of ps and summarizes their control grids.
// Draws run in a worker pool; ctx cancellation stops outstanding draws.
func (s *Sampler) Sample(ctx context.Context, ps control.PositionSet, n int) (*Summary, error) {
	if s == nil {
		return nil, errors.New("sampler is nil")
	}
	if n < 1 {
		return nil, fmt.Errorf("number of samples must be >= 1, got %d", n)
	}

	// Precompute independent seeds using the sampler RNG (serial access).
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = s.rng.Int63()
	}

	// Each draw computes its surfaces single-threaded; the pool is over draws.
	drawCfg := s.Cfg
	drawCfg.Workers = 1

	workerCount := s.Cfg.Workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > n {
		workerCount = n
	}

	grids := make([]*control.Grid, n)
	errs := make([]error, n)
	jobs := make(chan int, n)
	var wg sync.WaitGroup
	wg.Add(workerCount)

	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for draw := range jobs {
				if err := ctx.Err(); err != nil {
					errs[draw] = err
					continue
				}
				rng := rand.New(rand.NewSource(seeds[draw]))
				grids[draw], errs[draw] = control.ComputeInfluence(s.jitter(ps, rng), drawCfg)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("draw %d: %w", i, err)
		}
	}
	return summarize(grids)
}

// summarize computes cell-wise and metric statistics over grids sharing one
// lattice.
func summarize(grids []*control.Grid) (*Summary, error) {
	first := grids[0]
	rows, cols := first.Dims()
	n := len(grids)

	sum := &Summary{
		Samples: n,
		Metrics: make([]control.Metrics, n),
	}
	home := make([]float64, n)
	away := make([]float64, n)
	for i, g := range grids {
		m, err := control.ZonalMetrics(g)
		if err != nil {
			return nil, fmt.Errorf("draw %d: %w", i, err)
		}
		sum.Metrics[i] = m
		home[i] = m.HomeControlTotal
		away[i] = m.AwayControlTotal
	}
	sum.HomeTotal = spread(home)
	sum.AwayTotal = spread(away)

	mean := mat.NewDense(rows, cols, nil)
	std := mat.NewDense(rows, cols, nil)
	cell := make([]float64, n)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for i, g := range grids {
				cell[i] = g.At(r, c)
			}
			sp := spread(cell)
			mean.Set(r, c, sp.Mean)
			std.Set(r, c, sp.Std)
		}
	}

	x := append([]float64(nil), first.X...)
	y := append([]float64(nil), first.Y...)
	sum.Mean = &control.Grid{Control: mean, X: x, Y: y}
	sum.Std = &control.Grid{Control: std, X: x, Y: y}
	return sum, nil
}

// spread wraps stat.MeanStdDev; a single observation has zero spread.
func spread(xs []float64) Spread {
	if len(xs) < 2 {
		var m float64
		if len(xs) == 1 {
			m = xs[0]
		}
		return Spread{Mean: m}
	}
	m, sd := stat.MeanStdDev(xs, nil)
	return Spread{Mean: m, Std: sd}
}

// clampFloat64 clamps v to [minVal, maxVal].
func clampFloat64(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
