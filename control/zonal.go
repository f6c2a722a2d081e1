package control

import (
	"fmt"
	"math"
)

// Metrics summarizes a control grid as percentages of cells, rounded to one
// decimal. Home thirds run left to right (defensive, middle, attacking);
// away thirds are mirrored, so the away attacking third is the leftmost
// column segment.
type Metrics struct {
	HomeControlTotal float64 `json:"home_control_total"`
	AwayControlTotal float64 `json:"away_control_total"`
	NeutralControl   float64 `json:"neutral_control"`

	HomeDefensiveThird float64 `json:"home_defensive_third"`
	HomeMiddleThird    float64 `json:"home_middle_third"`
	HomeAttackingThird float64 `json:"home_attacking_third"`

	AwayDefensiveThird float64 `json:"away_defensive_third"`
	AwayMiddleThird    float64 `json:"away_middle_third"`
	AwayAttackingThird float64 `json:"away_attacking_third"`
}

// segment is a half-open column range [lo, hi).
type segment struct{ lo, hi int }

// thirds splits cols columns with third = cols/3. The remainder of the
// integer division goes to the last segment, which can therefore be wider
// than the other two.
func thirds(cols int) [3]segment {
	third := cols / 3
	return [3]segment{
		{0, third},
		{third, 2 * third},
		{2 * third, cols},
	}
}

// share counts the cells in columns [seg.lo, seg.hi) for which keep is true
// and returns them as a percentage of the segment. Empty segments report 0.
func share(g *Grid, seg segment, keep func(float64) bool) float64 {
	rows, _ := g.Dims()
	total := rows * (seg.hi - seg.lo)
	if total == 0 {
		return 0
	}
	var n int
	for r := 0; r < rows; r++ {
		row := g.Control.RawRowView(r)
		for c := seg.lo; c < seg.hi; c++ {
			if keep(row[c]) {
				n++
			}
		}
	}
	return 100 * float64(n) / float64(total)
}

// ZonalMetrics aggregates a control grid into global and per-third shares.
func ZonalMetrics(g *Grid) (Metrics, error) {
	rows, cols := g.Dims()
	if rows == 0 || cols == 0 {
		return Metrics{}, fmt.Errorf("zonal metrics: %w", ErrEmptyGrid)
	}

	home := func(v float64) bool { return v > 0 }
	away := func(v float64) bool { return v < 0 }
	neutral := func(v float64) bool { return v == 0 }

	all := segment{0, cols}
	z := thirds(cols)
	return Metrics{
		HomeControlTotal: round1(share(g, all, home)),
		AwayControlTotal: round1(share(g, all, away)),
		NeutralControl:   round1(share(g, all, neutral)),

		HomeDefensiveThird: round1(share(g, z[0], home)),
		HomeMiddleThird:    round1(share(g, z[1], home)),
		HomeAttackingThird: round1(share(g, z[2], home)),

		AwayDefensiveThird: round1(share(g, z[2], away)),
		AwayMiddleThird:    round1(share(g, z[1], away)),
		AwayAttackingThird: round1(share(g, z[0], away)),
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
