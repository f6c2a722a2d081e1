package control

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CounterfactualResult compares the control grid of a modified position set
// against the original one.
type CounterfactualResult struct {
	Original Metrics `json:"original_metrics"`
	Modified Metrics `json:"modified_metrics"`

	// ControlChange is Modified.HomeControlTotal - Original.HomeControlTotal,
	// rounded to two decimals.
	ControlChange float64 `json:"control_change"`

	// Diff is modified minus original, cell by cell.
	Diff *Grid `json:"-"`

	SpaceGained int `json:"space_gained"`
	SpaceLost   int `json:"space_lost"`

	X []float64 `json:"x_grid"`
	Y []float64 `json:"y_grid"`
}

// Counterfactual evaluates both position sets under cfg and reports how the
// modified set changes home control. The two evaluations run concurrently.
func Counterfactual(ctx context.Context, original, modified PositionSet, cfg Config) (*CounterfactualResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var origGrid, modGrid *Grid
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		origGrid, err = ComputeInfluence(original, cfg)
		if err != nil {
			return fmt.Errorf("original positions: %w", err)
		}
		return ctx.Err()
	})
	g.Go(func() error {
		var err error
		modGrid, err = ComputeInfluence(modified, cfg)
		if err != nil {
			return fmt.Errorf("modified positions: %w", err)
		}
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return CompareGrids(origGrid, modGrid, cfg.ChangeThreshold)
}

// CompareGrids diffs two grids computed on the same lattice. Cells whose
// difference exceeds threshold count as space gained; cells below
// -threshold count as space lost.
func CompareGrids(original, modified *Grid, threshold float64) (*CounterfactualResult, error) {
	diff, err := original.Diff(modified)
	if err != nil {
		return nil, err
	}
	origMetrics, err := ZonalMetrics(original)
	if err != nil {
		return nil, err
	}
	modMetrics, err := ZonalMetrics(modified)
	if err != nil {
		return nil, err
	}

	res := &CounterfactualResult{
		Original:      origMetrics,
		Modified:      modMetrics,
		ControlChange: round2(modMetrics.HomeControlTotal - origMetrics.HomeControlTotal),
		Diff:          diff,
		X:             diff.X,
		Y:             diff.Y,
	}
	for _, v := range diff.Control.RawMatrix().Data {
		switch {
		case v > threshold:
			res.SpaceGained++
		case v < -threshold:
			res.SpaceLost++
		}
	}
	return res, nil
}

// Analyzer binds a Config to a logger for callers that run many analyses
// with the same grid settings.
type Analyzer struct {
	cfg Config
	log logrus.FieldLogger
}

// NewAnalyzer validates cfg and returns an Analyzer. A nil logger discards
// output.
func NewAnalyzer(cfg Config, log logrus.FieldLogger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Analyzer{cfg: cfg, log: log}, nil
}

// Config returns the analyzer's grid settings.
func (a *Analyzer) Config() Config { return a.cfg }

// Grid computes the control grid for ps.
func (a *Analyzer) Grid(ps PositionSet) (*Grid, Metrics, error) {
	g, err := ComputeInfluence(ps, a.cfg)
	if err != nil {
		return nil, Metrics{}, err
	}
	m, err := ZonalMetrics(g)
	if err != nil {
		return nil, Metrics{}, err
	}
	a.log.WithFields(logrus.Fields{
		"home":    len(ps.Home),
		"away":    len(ps.Away),
		"home_pc": m.HomeControlTotal,
		"away_pc": m.AwayControlTotal,
	}).Debug("control grid computed")
	return g, m, nil
}

// WhatIfHome moves home player idx to p and runs the counterfactual.
func (a *Analyzer) WhatIfHome(ctx context.Context, ps PositionSet, idx int, p Point) (*CounterfactualResult, error) {
	modified, err := ps.MoveHome(idx, p)
	if err != nil {
		return nil, err
	}
	res, err := Counterfactual(ctx, ps, modified, a.cfg)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"player": idx,
		"from":   ps.Home[idx],
		"to":     p,
		"change": res.ControlChange,
		"gained": res.SpaceGained,
		"lost":   res.SpaceLost,
	}).Debug("counterfactual computed")
	return res, nil
}
