// Package render draws control grids: static PNG heatmaps through gonum/plot
// and interactive HTML heatmaps through go-echarts.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Noofbiz/pitchControl/control"
)

// ErrGridTooSmall is returned for grids a heatmap cannot be drawn from.
var ErrGridTooSmall = errors.New("grid needs at least 2x2 cells to render")

var (
	homeColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	awayColor = color.RGBA{R: 20, G: 80, B: 200, A: 255}
)

// Options controls figure size and title. Zero values pick defaults.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length

	// Min and Max fix the color range. Both zero means [-1, 1] for control
	// grids and [-0.5, 0.5] for differential grids.
	Min, Max float64
}

func (o Options) withDefaults(title string, lo, hi float64) Options {
	if o.Title == "" {
		o.Title = title
	}
	if o.Width == 0 {
		o.Width = 10 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 7 * vg.Inch
	}
	if o.Min == 0 && o.Max == 0 {
		o.Min, o.Max = lo, hi
	}
	return o
}

// gridXYZ adapts a control grid to plotter.GridXYZ. gonum/plot indexes
// (column, row), the grid indexes (row, column).
type gridXYZ struct {
	g *control.Grid
}

func (g gridXYZ) Dims() (c, r int) {
	rows, cols := g.g.Dims()
	return cols, rows
}

func (g gridXYZ) Z(c, r int) float64 {
	return g.g.At(r, c)
}

func (g gridXYZ) X(c int) float64 {
	return g.g.X[c]
}

func (g gridXYZ) Y(r int) float64 {
	return g.g.Y[r]
}

func newGridPlot(g *control.Grid, o Options, pal palette.Palette) (*plot.Plot, error) {
	rows, cols := g.Dims()
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%dx%d: %w", rows, cols, ErrGridTooSmall)
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	hm := plotter.NewHeatMap(gridXYZ{g}, pal)
	hm.Min = o.Min
	hm.Max = o.Max
	p.Add(hm)

	p.X.Min, p.X.Max = g.X[0], g.X[cols-1]
	p.Y.Min, p.Y.Max = g.Y[0], g.Y[rows-1]
	return p, nil
}

func divergingPalette(lo, hi float64) palette.Palette {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)
	return cm.Palette(255)
}

func pointsXY(pts []control.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X = p.X
		xys[i].Y = p.Y
	}
	return xys
}

// addPlayers overlays one team's players. Empty teams add nothing.
func addPlayers(p *plot.Plot, label string, pts []control.Point, c color.Color, shape draw.GlyphDrawer) error {
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pointsXY(pts))
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(4)
	sc.GlyphStyle.Shape = shape
	p.Add(sc)
	if label != "" {
		p.Legend.Add(label, sc)
	}
	return nil
}

func save(p *plot.Plot, o Options, path string) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return p.Save(o.Width, o.Height, path)
}

// HeatmapPNG writes the control grid to path with both teams' players on
// top. Home dominance is red, away dominance blue.
func HeatmapPNG(path string, g *control.Grid, ps control.PositionSet, opts Options) error {
	o := opts.withDefaults("Pitch Control", -1, 1)
	p, err := newGridPlot(g, o, divergingPalette(o.Min, o.Max))
	if err != nil {
		return err
	}
	if err := addPlayers(p, "home", ps.Home, homeColor, draw.CircleGlyph{}); err != nil {
		return err
	}
	if err := addPlayers(p, "away", ps.Away, awayColor, draw.CircleGlyph{}); err != nil {
		return err
	}
	return save(p, o, path)
}

// DiffPNG writes the differential grid of a counterfactual to path. The
// original positions are drawn faded, the modified ones solid, and an arrow
// marks home player moved (pass a negative index when no home player moved).
func DiffPNG(path string, res *control.CounterfactualResult, original, modified control.PositionSet, moved int, opts Options) error {
	if res == nil || res.Diff == nil {
		return fmt.Errorf("counterfactual has no differential grid")
	}
	title := fmt.Sprintf("Space Control Impact: %+.1f%% control change", res.ControlChange)
	o := opts.withDefaults(title, -0.5, 0.5)
	p, err := newGridPlot(res.Diff, o, divergingPalette(o.Min, o.Max))
	if err != nil {
		return err
	}

	faded := func(c color.RGBA) color.RGBA {
		c.A = 90
		return c
	}
	if err := addPlayers(p, "", original.Home, faded(homeColor), draw.RingGlyph{}); err != nil {
		return err
	}
	if err := addPlayers(p, "", original.Away, faded(awayColor), draw.RingGlyph{}); err != nil {
		return err
	}
	if err := addPlayers(p, "home", modified.Home, homeColor, draw.CircleGlyph{}); err != nil {
		return err
	}
	if err := addPlayers(p, "away", modified.Away, awayColor, draw.CircleGlyph{}); err != nil {
		return err
	}

	if moved >= 0 {
		if moved >= len(original.Home) || moved >= len(modified.Home) {
			return fmt.Errorf("moved player %d: %w", moved, control.ErrPlayerIndex)
		}
		if err := addArrow(p, original.Home[moved], modified.Home[moved]); err != nil {
			return err
		}
	}
	return save(p, o, path)
}

// SpreadPNG writes a non-negative grid (e.g. Monte Carlo standard
// deviations) with a sequential palette scaled to its maximum.
func SpreadPNG(path string, g *control.Grid, ps control.PositionSet, opts Options) error {
	hi := 1.0
	if rows, cols := g.Dims(); rows > 0 && cols > 0 {
		if m := floats.Max(g.Values()); m > 0 {
			hi = m
		}
	}
	o := opts.withDefaults("Control Uncertainty (std)", 0, hi)
	p, err := newGridPlot(g, o, palette.Heat(255, 1))
	if err != nil {
		return err
	}
	if err := addPlayers(p, "home", ps.Home, homeColor, draw.CircleGlyph{}); err != nil {
		return err
	}
	if err := addPlayers(p, "away", ps.Away, awayColor, draw.CircleGlyph{}); err != nil {
		return err
	}
	return save(p, o, path)
}

// addArrow draws a shaft from -> to with a triangle at the head.
func addArrow(p *plot.Plot, from, to control.Point) error {
	shaft, err := plotter.NewLine(plotter.XYs{{X: from.X, Y: from.Y}, {X: to.X, Y: to.Y}})
	if err != nil {
		return err
	}
	shaft.Color = color.Black
	shaft.Width = vg.Points(2)
	p.Add(shaft)

	head, err := plotter.NewScatter(plotter.XYs{{X: to.X, Y: to.Y}})
	if err != nil {
		return err
	}
	head.GlyphStyle.Color = color.Black
	head.GlyphStyle.Radius = vg.Points(5)
	head.GlyphStyle.Shape = draw.TriangleGlyph{}
	p.Add(head)
	p.Legend.Add("move", shaft)
	return nil
}

func ensureDir(path string) error {
	// Attempt to create directory if it doesn't exist (silently succeed if present).
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
