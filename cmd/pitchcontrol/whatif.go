package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Noofbiz/pitchControl/control"
	"github.com/Noofbiz/pitchControl/render"
	"github.com/Noofbiz/pitchControl/report"
)

var (
	whatIfPlayer int
	whatIfToX    float64
	whatIfToY    float64
	whatIfOut    string
	whatIfJSON   bool
)

var whatIfCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Move one home player and measure the change in control",
	Long: "Recompute the control grid with one home player moved to (--to-x, --to-y)\n" +
		"and report the change per zone and the cells gained or lost.",
	Args: cobra.NoArgs,
	RunE: runWhatIf,
}

func init() {
	f := whatIfCmd.Flags()
	f.IntVar(&whatIfPlayer, "player", 0, "index of the home player to move (order in the frame)")
	f.Float64Var(&whatIfToX, "to-x", 0, "new x position in meters")
	f.Float64Var(&whatIfToY, "to-y", 0, "new y position in meters")
	f.StringVar(&whatIfOut, "out", "plots/whatif.png", "differential PNG output path (empty to skip)")
	f.BoolVar(&whatIfJSON, "json", false, "print the result as JSON instead of a table")
	_ = whatIfCmd.MarkFlagRequired("to-x")
	_ = whatIfCmd.MarkFlagRequired("to-y")
}

func runWhatIf(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if printEffectiveConfig {
		return printEffective(cmd.OutOrStdout(), s)
	}

	sel, err := selectFrame(s)
	if err != nil {
		return err
	}
	to := control.Point{X: whatIfToX, Y: whatIfToY}
	if !s.Cfg.Pitch.Contains(to) {
		log.WithField("to", to).Warn("target position is outside the pitch")
	}

	analyzer, err := control.NewAnalyzer(s.Cfg, log)
	if err != nil {
		return err
	}
	res, err := analyzer.WhatIfHome(cmd.Context(), sel.positions, whatIfPlayer, to)
	if err != nil {
		return fmt.Errorf("what-if on frame %d: %w", sel.frameID, err)
	}

	if whatIfOut != "" {
		modified, err := sel.positions.MoveHome(whatIfPlayer, to)
		if err != nil {
			return err
		}
		if err := render.DiffPNG(whatIfOut, res, sel.positions, modified, whatIfPlayer, render.Options{}); err != nil {
			return fmt.Errorf("plot %s: %w", whatIfOut, err)
		}
		log.WithField("path", whatIfOut).Info("wrote differential heatmap")
	}

	out := cmd.OutOrStdout()
	if whatIfJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	from := sel.positions.Home[whatIfPlayer]
	fmt.Fprintf(out, "Frame %d: home player %d (%.1f, %.1f) -> (%.1f, %.1f)\n",
		sel.frameID, whatIfPlayer, from.X, from.Y, to.X, to.Y)
	report.WriteCounterfactual(out, res)
	return nil
}
