package control

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// ToGomlxTensor converts the grid to a [rows][cols] float32 gomlx tensor,
// one channel of control values.
func (g *Grid) ToGomlxTensor() (*tensors.Tensor, error) {
	rows, cols := g.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("grid to tensor: %w", ErrEmptyGrid)
	}
	data := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		src := g.Control.RawRowView(r)
		row := make([]float32, cols)
		for c, v := range src {
			row[c] = float32(v)
		}
		data[r] = row
	}
	return tensors.FromAnyValue(data), nil
}
