package control

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// epsilon keeps the ratio finite when both surfaces are vanishingly small.
const epsilon = 1e-10

// Compose combines home and away influence into a control surface:
// (h-a)/(h+a+epsilon) where h+a > 0, and 0 elsewhere. Values lie in [-1, 1].
func Compose(home, away *mat.Dense) (*mat.Dense, error) {
	if home == nil || away == nil {
		return nil, fmt.Errorf("compose: nil influence surface: %w", ErrEmptyGrid)
	}
	hr, hc := home.Dims()
	ar, ac := away.Dims()
	if hr != ar || hc != ac {
		return nil, fmt.Errorf("compose home %dx%d with away %dx%d: %w", hr, hc, ar, ac, ErrShapeMismatch)
	}

	out := mat.NewDense(hr, hc, nil)
	out.Apply(func(r, c int, _ float64) float64 {
		h, a := home.At(r, c), away.At(r, c)
		total := h + a
		if total <= 0 {
			return 0
		}
		return (h - a) / (total + epsilon)
	}, out)
	return out, nil
}

// ComputeInfluence builds the control grid for a position set. It validates
// cfg, computes both teams' surfaces and composes them.
func ComputeInfluence(ps PositionSet, cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lat := newLattice(cfg)
	home := influenceSurface(ps.Home, cfg, lat)
	away := influenceSurface(ps.Away, cfg, lat)
	surface, err := Compose(home, away)
	if err != nil {
		return nil, err
	}
	return &Grid{Control: surface, X: lat.x, Y: lat.y}, nil
}
