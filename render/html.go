package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Noofbiz/pitchControl/control"
)

// divergingColors runs from away (blue) through neutral to home (red).
var divergingColors = []string{"#3b4cc0", "#7396f5", "#b0cbfc", "#dddcdc", "#f6bfa6", "#ea7b60", "#b40426"}

func axisLabels(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = fmt.Sprintf("%.1f", v)
	}
	return out
}

// HeatmapHTML renders an interactive heatmap of g to w. Cells are addressed
// by their pitch coordinates. The color scale is symmetric around zero and
// covers at least [-1, 1].
func HeatmapHTML(w io.Writer, g *control.Grid, title string) error {
	rows, cols := g.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("heatmap html: %w", control.ErrEmptyGrid)
	}
	if title == "" {
		title = "Pitch Control"
	}

	limit := 1.0
	data := make([]opts.HeatMapData, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := g.At(r, c)
			limit = math.Max(limit, math.Abs(v))
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, math.Round(v*1000) / 1000}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%dx%d grid, +1 home / -1 away", rows, cols)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "x (m)", Data: axisLabels(g.X)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "y (m)", Data: axisLabels(g.Y)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(-limit),
			Max:        float32(limit),
			InRange:    &opts.VisualMapInRange{Color: divergingColors},
		}),
	)
	hm.SetXAxis(axisLabels(g.X)).AddSeries("control", data)
	return hm.Render(w)
}
