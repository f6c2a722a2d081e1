// Package control estimates which team dominates each point of the pitch at a
// single instant of a match, and how moving a player changes that dominance.
//
// The pipeline is:
//
//	PositionSet -> InfluenceSurface (home, away) -> Compose -> Grid -> ZonalMetrics
//
// and Counterfactual runs it twice (original vs. modified positions) and
// diffs the results. Every operation is a pure function of its inputs; no
// state is kept between calls.
//
// Coordinates are meters with the origin at the pitch center. The grid is
// stored row-major: rows follow the width (y) axis and columns follow the
// length (x) axis, so "thirds" of the pitch are column ranges.
package control

import (
	"fmt"
	"math"
)

// Point is a position on the pitch in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pitch is a rectangle of Length x Width meters centered at the origin.
type Pitch struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Contains reports whether p lies inside (or on the boundary of) the pitch.
func (p Pitch) Contains(pt Point) bool {
	return math.Abs(pt.X) <= p.Length/2 && math.Abs(pt.Y) <= p.Width/2
}

// PositionSet holds the two teams' player positions for one evaluation.
// Either side may be empty (players missing from the frame are simply left
// out by the extractor).
type PositionSet struct {
	Home []Point `json:"home"`
	Away []Point `json:"away"`
}

// Clone returns a deep copy of the set.
func (ps PositionSet) Clone() PositionSet {
	return PositionSet{
		Home: append([]Point(nil), ps.Home...),
		Away: append([]Point(nil), ps.Away...),
	}
}

// Len returns the total number of players across both teams.
func (ps PositionSet) Len() int {
	return len(ps.Home) + len(ps.Away)
}

// MoveHome returns a copy of the set with home player i relocated to p.
func (ps PositionSet) MoveHome(i int, p Point) (PositionSet, error) {
	if i < 0 || i >= len(ps.Home) {
		return PositionSet{}, fmt.Errorf("home player %d (have %d): %w", i, len(ps.Home), ErrPlayerIndex)
	}
	out := ps.Clone()
	out.Home[i] = p
	return out, nil
}

// MoveAway returns a copy of the set with away player i relocated to p.
func (ps PositionSet) MoveAway(i int, p Point) (PositionSet, error) {
	if i < 0 || i >= len(ps.Away) {
		return PositionSet{}, fmt.Errorf("away player %d (have %d): %w", i, len(ps.Away), ErrPlayerIndex)
	}
	out := ps.Clone()
	out.Away[i] = p
	return out, nil
}

// Mirrored returns a copy with every x coordinate negated (reflection across
// the halfway line).
func (ps PositionSet) Mirrored() PositionSet {
	out := ps.Clone()
	for i := range out.Home {
		out.Home[i].X = -out.Home[i].X
	}
	for i := range out.Away {
		out.Away[i].X = -out.Away[i].X
	}
	return out
}

// Swapped returns a copy with the home and away players exchanged.
func (ps PositionSet) Swapped() PositionSet {
	out := ps.Clone()
	out.Home, out.Away = out.Away, out.Home
	return out
}
