package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pitchControl/control"
	"github.com/Noofbiz/pitchControl/render"
	"github.com/Noofbiz/pitchControl/report"
)

var (
	gridOut     string
	gridHTMLOut   string
	gridTensorOut string
	gridJSON      bool
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Compute and plot the control grid of one frame",
	Args:  cobra.NoArgs,
	RunE:  runGrid,
}

func init() {
	gridCmd.Flags().StringVar(&gridOut, "out", "plots/control.png", "PNG output path (empty to skip)")
	gridCmd.Flags().StringVar(&gridHTMLOut, "html", "", "optional interactive HTML output path")
	gridCmd.Flags().StringVar(&gridTensorOut, "tensor-out", "", "optional path for the grid as a gob-encoded [rows, cols] gomlx tensor")
	gridCmd.Flags().BoolVar(&gridJSON, "json", false, "print metrics as JSON instead of a table")
}

func runGrid(cmd *cobra.Command, args []string) error {
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
	analyzer, err := control.NewAnalyzer(s.Cfg, log)
	if err != nil {
		return err
	}
	g, m, err := analyzer.Grid(sel.positions)
	if err != nil {
		return fmt.Errorf("frame %d: %w", sel.frameID, err)
	}

	title := fmt.Sprintf("Pitch Control: frame %d (%s vs %s)", sel.frameID, sel.home, sel.away)
	if gridOut != "" {
		if err := render.HeatmapPNG(gridOut, g, sel.positions, render.Options{Title: title}); err != nil {
			return fmt.Errorf("plot %s: %w", gridOut, err)
		}
		log.WithField("path", gridOut).Info("wrote heatmap")
	}
	if gridHTMLOut != "" {
		if err := writeHTML(gridHTMLOut, g, title); err != nil {
			return err
		}
		log.WithField("path", gridHTMLOut).Info("wrote interactive heatmap")
	}
	if gridTensorOut != "" {
		t, err := g.ToGomlxTensor()
		if err != nil {
			return err
		}
		if err := saveTensor(gridTensorOut, t); err != nil {
			return err
		}
		log.WithField("path", gridTensorOut).Info("wrote grid tensor")
	}

	out := cmd.OutOrStdout()
	if gridJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	fmt.Fprintf(out, "Frame %d: %s (home) vs %s (away)\n", sel.frameID, sel.home, sel.away)
	report.WriteMetrics(out, m)
	return nil
}

func writeHTML(path string, g *control.Grid, title string) error {
	if !strings.EqualFold(filepath.Ext(path), ".html") {
		return fmt.Errorf("html output must end in .html, got %q", path)
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := render.HeatmapHTML(f, g, title); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func saveTensor(path string, t *tensors.Tensor) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	if err := t.Save(path); err != nil {
		return fmt.Errorf("save tensor %s: %w", path, err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
