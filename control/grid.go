package control

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid is a control surface sampled on the pitch lattice. Control holds one
// value per cell in [-1, 1]; positive values are home dominance. Row r sits
// at Y[r] and column c sits at X[c].
type Grid struct {
	Control *mat.Dense
	X       []float64
	Y       []float64
}

// Dims returns the number of rows and columns. A nil grid has no cells.
func (g *Grid) Dims() (rows, cols int) {
	if g == nil || g.Control == nil {
		return 0, 0
	}
	return g.Control.Dims()
}

// At returns the control value of cell (r, c).
func (g *Grid) At(r, c int) float64 {
	return g.Control.At(r, c)
}

// Values returns a flat row-major copy of the cell values.
func (g *Grid) Values() []float64 {
	rows, cols := g.Dims()
	out := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		out = append(out, g.Control.RawRowView(r)...)
	}
	return out
}

// Column returns a copy of column c, top to bottom.
func (g *Grid) Column(c int) []float64 {
	rows, _ := g.Dims()
	out := make([]float64, rows)
	mat.Col(out, c, g.Control)
	return out
}

// NearestCell returns the row and column of the lattice cell closest to p.
// Ties go to the lower index.
func (g *Grid) NearestCell(p Point) (row, col int) {
	return nearestIndex(g.Y, p.Y), nearestIndex(g.X, p.X)
}

// Diff returns other - g as a new grid sharing g's coordinates.
func (g *Grid) Diff(other *Grid) (*Grid, error) {
	if err := sameShape(g, other); err != nil {
		return nil, err
	}
	rows, cols := g.Dims()
	d := mat.NewDense(rows, cols, nil)
	d.Sub(other.Control, g.Control)
	return &Grid{
		Control: d,
		X:       append([]float64(nil), g.X...),
		Y:       append([]float64(nil), g.Y...),
	}, nil
}

// sameShape fails unless both grids are non-empty with the same dimensions
// and coordinates.
func sameShape(a, b *Grid) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar == 0 || ac == 0 || br == 0 || bc == 0 {
		return fmt.Errorf("compare %dx%d with %dx%d: %w", ar, ac, br, bc, ErrEmptyGrid)
	}
	if ar != br || ac != bc {
		return fmt.Errorf("compare %dx%d with %dx%d: %w", ar, ac, br, bc, ErrShapeMismatch)
	}
	if !floats.EqualApprox(a.X, b.X, 1e-9) || !floats.EqualApprox(a.Y, b.Y, 1e-9) {
		return fmt.Errorf("grids sampled on different lattices: %w", ErrShapeMismatch)
	}
	return nil
}

// axis returns n evenly spaced samples over [lo, hi]. A single sample sits at
// lo.
func axis(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	return floats.Span(out, lo, hi)
}

func nearestIndex(xs []float64, v float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, x := range xs {
		if d := math.Abs(x - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
