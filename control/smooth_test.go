package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestReflectIndex(t *testing.T) {
	// n = 4: ... d c b a | a b c d | d c b a | a b c d ...
	cases := map[int]int{
		-8: 0, -5: 3, -4: 3, -3: 2, -2: 1, -1: 0,
		0: 0, 1: 1, 2: 2, 3: 3,
		4: 3, 5: 2, 6: 1, 7: 0, 8: 0, 9: 1, 12: 3,
	}
	for in, want := range cases {
		if got := reflectIndex(in, 4); got != want {
			t.Fatalf("reflectIndex(%d, 4) = %d, want %d", in, got, want)
		}
	}
	// a single sample reflects onto itself.
	for _, i := range []int{-3, -1, 0, 1, 5} {
		if got := reflectIndex(i, 1); got != 0 {
			t.Fatalf("reflectIndex(%d, 1) = %d, want 0", i, got)
		}
	}
}

func TestGaussianKernel(t *testing.T) {
	w, radius := gaussianKernel(5)
	assert.Equal(t, 20, radius)
	assert.Len(t, w, 41)
	assert.InDelta(t, 1.0, floats.Sum(w), 1e-12)
	for i := 0; i < radius; i++ {
		assert.InDelta(t, w[i], w[len(w)-1-i], 1e-15)
	}
	assert.Equal(t, radius, floats.MaxIdx(w))

	_, radius = gaussianKernel(1)
	assert.Equal(t, 4, radius)
	_, radius = gaussianKernel(0.1)
	assert.Equal(t, 0, radius)
}

func TestGaussianFilter_ConstantPreserved(t *testing.T) {
	m := mat.NewDense(6, 7, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return 3.5 }, m)

	gaussianFilter(m, 2)
	for _, v := range m.RawMatrix().Data {
		assert.InDelta(t, 3.5, v, 1e-12)
	}
}

func TestGaussianFilter_ZeroSigma(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	m := mat.NewDense(2, 2, append([]float64(nil), data...))
	gaussianFilter(m, 0)
	assert.Equal(t, data, m.RawMatrix().Data)
}

func TestGaussianFilter_Impulse(t *testing.T) {
	// An impulse far from the edges spreads into the outer product of the
	// 1-D kernel with itself.
	m := mat.NewDense(21, 21, nil)
	m.Set(10, 10, 1)
	gaussianFilter(m, 1)

	w, radius := gaussianKernel(1)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			want := w[dr+radius] * w[dc+radius]
			assert.InDelta(t, want, m.At(10+dr, 10+dc), 1e-15)
		}
	}
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.InDelta(t, 1.0, mat.Sum(m), 1e-12)
}

func TestGaussianFilter_ReflectsAtEdge(t *testing.T) {
	// An impulse on the edge folds back into the grid: nothing is lost and
	// the edge row gets the mirrored weight too.
	m := mat.NewDense(1, 10, nil)
	m.Set(0, 0, 1)
	gaussianFilter(m, 1)

	w, radius := gaussianKernel(1)
	assert.InDelta(t, w[radius]+w[radius-1], m.At(0, 0), 1e-15)
	assert.InDelta(t, 1.0, mat.Sum(m), 1e-12)
}
