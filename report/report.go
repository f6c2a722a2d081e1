// Package report prints control metrics as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/Noofbiz/pitchControl/control"
	"github.com/Noofbiz/pitchControl/monte"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

// WriteMetrics writes the zonal breakdown of a single grid. Thirds are
// labelled from each team's own point of view.
func WriteMetrics(w io.Writer, m control.Metrics) {
	table := newTable(w)
	table.Header("ZONE", "HOME", "AWAY")
	table.Append("total", pct(m.HomeControlTotal), pct(m.AwayControlTotal))
	table.Append("defensive third", pct(m.HomeDefensiveThird), pct(m.AwayDefensiveThird))
	table.Append("middle third", pct(m.HomeMiddleThird), pct(m.AwayMiddleThird))
	table.Append("attacking third", pct(m.HomeAttackingThird), pct(m.AwayAttackingThird))
	table.Render()
	fmt.Fprintf(w, "Neutral: %s\n", pct(m.NeutralControl))
}

// WriteCounterfactual writes original vs. modified metrics side by side,
// followed by a one-line summary of the change.
func WriteCounterfactual(w io.Writer, res *control.CounterfactualResult) {
	o, m := res.Original, res.Modified
	rows := []struct {
		name      string
		orig, mod float64
	}{
		{"home total", o.HomeControlTotal, m.HomeControlTotal},
		{"away total", o.AwayControlTotal, m.AwayControlTotal},
		{"neutral", o.NeutralControl, m.NeutralControl},
		{"home defensive third", o.HomeDefensiveThird, m.HomeDefensiveThird},
		{"home middle third", o.HomeMiddleThird, m.HomeMiddleThird},
		{"home attacking third", o.HomeAttackingThird, m.HomeAttackingThird},
		{"away defensive third", o.AwayDefensiveThird, m.AwayDefensiveThird},
		{"away middle third", o.AwayMiddleThird, m.AwayMiddleThird},
		{"away attacking third", o.AwayAttackingThird, m.AwayAttackingThird},
	}

	table := newTable(w)
	table.Header("METRIC", "ORIGINAL", "MODIFIED", "CHANGE")
	for _, r := range rows {
		table.Append(r.name, pct(r.orig), pct(r.mod), signedPct(r.mod-r.orig))
	}
	table.Render()

	fmt.Fprintf(w, "Control change: %+.2f%%  |  Space gained: %d cells  |  Space lost: %d cells\n",
		res.ControlChange, res.SpaceGained, res.SpaceLost)
}

// WriteUncertainty writes the spread of team totals across Monte Carlo
// draws.
func WriteUncertainty(w io.Writer, s *monte.Summary) {
	table := newTable(w)
	table.Header("TEAM", "MEAN", "STD", "DRAWS")
	draws := strconv.Itoa(s.Samples)
	table.Append("home", pct(s.HomeTotal.Mean), fmt.Sprintf("%.2f", s.HomeTotal.Std), draws)
	table.Append("away", pct(s.AwayTotal.Mean), fmt.Sprintf("%.2f", s.AwayTotal.Std), draws)
	table.Render()
}

// FrameRow is one line of the frame listing.
type FrameRow struct {
	Index   int
	FrameID int
	Home    int
	Away    int
	Missing int
}

// WriteFrames lists frames with their per-team player counts.
func WriteFrames(w io.Writer, rows []FrameRow) {
	table := newTable(w)
	table.Header("INDEX", "FRAME", "HOME", "AWAY", "MISSING")
	for _, r := range rows {
		table.Append(
			strconv.Itoa(r.Index),
			strconv.Itoa(r.FrameID),
			strconv.Itoa(r.Home),
			strconv.Itoa(r.Away),
			strconv.Itoa(r.Missing),
		)
	}
	table.Render()
}
