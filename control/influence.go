package control

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// lattice holds the sample coordinates for a config. x runs along the pitch
// length (columns), y along the width (rows).
type lattice struct {
	x, y []float64
}

func newLattice(cfg Config) lattice {
	n := cfg.GridSize
	return lattice{
		x: axis(-cfg.Pitch.Length/2, cfg.Pitch.Length/2, n),
		y: axis(-cfg.Pitch.Width/2, cfg.Pitch.Width/2, n),
	}
}

// InfluenceSurface returns one team's smoothed influence over the lattice.
// Each player adds 1/(1+(d/k)^2) to every cell, where d is the distance from
// the player to the cell; the summed surface is then Gaussian-blurred with
// cfg.Sigma. No players yields an all-zero surface.
func InfluenceSurface(points []Point, cfg Config) (*mat.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return influenceSurface(points, cfg, newLattice(cfg)), nil
}

func influenceSurface(points []Point, cfg Config, lat lattice) *mat.Dense {
	rows, cols := len(lat.y), len(lat.x)
	surface := mat.NewDense(rows, cols, nil)
	if len(points) == 0 {
		return surface
	}

	// Each worker owns whole rows of the surface, so writes never overlap.
	invK2 := 1 / (cfg.DecayK * cfg.DecayK)
	jobs := make(chan int, rows)
	var wg sync.WaitGroup
	workers := cfg.workerCount(rows)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				row := surface.RawRowView(r)
				y := lat.y[r]
				for c, x := range lat.x {
					var sum float64
					for _, p := range points {
						dx, dy := x-p.X, y-p.Y
						sum += 1 / (1 + (dx*dx+dy*dy)*invK2)
					}
					row[c] = sum
				}
			}
		}()
	}
	for r := 0; r < rows; r++ {
		jobs <- r
	}
	close(jobs)
	wg.Wait()

	return gaussianFilter(surface, cfg.Sigma)
}
