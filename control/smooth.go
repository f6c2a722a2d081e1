package control

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// gaussianKernel returns normalized 1-D weights for the given sigma and the
// kernel radius. The kernel is truncated at four standard deviations.
func gaussianKernel(sigma float64) ([]float64, int) {
	radius := int(4*sigma + 0.5)
	weights := make([]float64, 2*radius+1)
	for i := range weights {
		x := float64(i - radius)
		weights[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(weights), weights)
	return weights, radius
}

// reflectIndex maps i onto [0, n) by mirroring about the edges, repeating the
// edge sample (d c b a | a b c d | d c b a). Indices further out than one
// grid length wrap around with period 2n.
func reflectIndex(i, n int) int {
	period := 2 * n
	i = ((i % period) + period) % period
	if i >= n {
		return period - i - 1
	}
	return i
}

// gaussianFilter blurs m in place with a separable Gaussian, rows first then
// columns, and returns it. sigma <= 0 leaves m unchanged.
func gaussianFilter(m *mat.Dense, sigma float64) *mat.Dense {
	if sigma <= 0 {
		return m
	}
	weights, radius := gaussianKernel(sigma)
	rows, cols := m.Dims()

	// Along the y axis (down each column).
	tmp := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		dst := tmp.RawRowView(r)
		for j, w := range weights {
			src := m.RawRowView(reflectIndex(r+j-radius, rows))
			floats.AddScaled(dst, w, src)
		}
	}

	// Along the x axis (across each row).
	for r := 0; r < rows; r++ {
		src := tmp.RawRowView(r)
		dst := m.RawRowView(r)
		for c := range dst {
			var sum float64
			for j, w := range weights {
				sum += w * src[reflectIndex(c+j-radius, cols)]
			}
			dst[c] = sum
		}
	}
	return m
}
