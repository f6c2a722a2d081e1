package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pitchControl/monte"
	"github.com/Noofbiz/pitchControl/render"
	"github.com/Noofbiz/pitchControl/report"
)

var (
	uncNoise   float64
	uncSamples int
	uncSeed    int64
	uncNoClamp bool
	uncOut     string
)

var uncertaintyCmd = &cobra.Command{
	Use:   "uncertainty",
	Short: "Estimate how sensitive the control grid is to tracking noise",
	Args:  cobra.NoArgs,
	RunE:  runUncertainty,
}

func init() {
	f := uncertaintyCmd.Flags()
	f.Float64Var(&uncNoise, "noise", 1.0, "per-axis position noise std in meters (overrides JSON if provided)")
	f.IntVar(&uncSamples, "samples", 50, "number of Monte Carlo draws (overrides JSON if provided)")
	f.Int64Var(&uncSeed, "seed", 1, "random seed (overrides JSON if provided)")
	f.BoolVar(&uncNoClamp, "no-clamp", false, "allow jittered players to leave the pitch")
	f.StringVar(&uncOut, "out", "plots/uncertainty.png", "PNG of the per-cell std (empty to skip)")
}

func runUncertainty(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("noise") {
		s.Noise = uncNoise
	}
	if flags.Changed("samples") {
		s.Samples = uncSamples
	}
	if flags.Changed("seed") {
		s.Seed = uncSeed
	}
	if printEffectiveConfig {
		return printEffective(cmd.OutOrStdout(), s)
	}

	sel, err := selectFrame(s)
	if err != nil {
		return err
	}
	sampler, err := monte.NewSampler(s.Cfg, s.Noise, s.Seed)
	if err != nil {
		return err
	}
	sampler.SetClampToPitch(!uncNoClamp)

	log.WithFields(logrus.Fields{
		"samples": s.Samples,
		"noise":   s.Noise,
		"seed":    s.Seed,
	}).Info("sampling")
	sum, err := sampler.Sample(cmd.Context(), sel.positions, s.Samples)
	if err != nil {
		return fmt.Errorf("sample frame %d: %w", sel.frameID, err)
	}

	if uncOut != "" {
		title := fmt.Sprintf("Control Uncertainty: frame %d, noise %.1fm", sel.frameID, s.Noise)
		if err := render.SpreadPNG(uncOut, sum.Std, sel.positions, render.Options{Title: title}); err != nil {
			return fmt.Errorf("plot %s: %w", uncOut, err)
		}
		log.WithField("path", uncOut).Info("wrote uncertainty heatmap")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Frame %d: %d draws, noise %.2fm\n", sel.frameID, sum.Samples, s.Noise)
	report.WriteUncertainty(out, sum)
	return nil
}
