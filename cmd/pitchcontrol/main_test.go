package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/pitchControl/control"
)

// resetFlags puts every flag back to its default so commands can be run
// repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTracking(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.csv")
	rows := []string{
		"frame_id,team_id,player_id,x,y",
		"10,H,h1,-30,0",
		"10,H,h2,-20,15",
		"10,A,a1,20,0",
		"10,A,a2,25,-10",
		"11,H,h1,-29,0",
		"11,H,h2,-20,14",
		"11,A,a1,20,1",
		"11,A,a2,,",
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

func TestGridCommand(t *testing.T) {
	data := writeTracking(t)
	dir := t.TempDir()
	png := filepath.Join(dir, "control.png")
	html := filepath.Join(dir, "control.html")

	out, err := runCLI(t, "grid", "--data", data, "--home", "H", "--away", "A",
		"--grid-size", "21", "--sigma", "2", "--out", png, "--html", html)
	require.NoError(t, err)
	assert.Contains(t, out, "Frame 10: H (home) vs A (away)")
	assert.Contains(t, out, "attacking third")
	assert.Contains(t, out, "48.5%")

	for _, p := range []string{png, html} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestGridCommand_JSON(t *testing.T) {
	data := writeTracking(t)
	out, err := runCLI(t, "grid", "--data", data, "--home", "H", "--away", "A",
		"--frame", "11", "--grid-size", "15", "--sigma", "1", "--out", "", "--json")
	require.NoError(t, err)

	var m control.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.InDelta(t, 100, m.HomeControlTotal+m.AwayControlTotal+m.NeutralControl, 0.1+1e-9)
}

func TestGridCommand_UnknownFrame(t *testing.T) {
	_, err := runCLI(t, "grid", "--data", writeTracking(t), "--frame", "99", "--out", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 99 not found")
}

func TestWhatIfCommand(t *testing.T) {
	data := writeTracking(t)
	png := filepath.Join(t.TempDir(), "whatif.png")

	out, err := runCLI(t, "whatif", "--data", data, "--home", "H", "--away", "A", "--frame", "10",
		"--grid-size", "21", "--sigma", "2", "--player", "0", "--to-x", "-10", "--to-y", "0", "--out", png)
	require.NoError(t, err)
	assert.Contains(t, out, "home player 0 (-30.0, 0.0) -> (-10.0, 0.0)")
	assert.Contains(t, out, "Control change: +4.80%")
	assert.Contains(t, out, "Space gained: 149 cells")
	assert.Contains(t, out, "Space lost: 62 cells")

	_, err = os.Stat(png)
	require.NoError(t, err)
}

func TestWhatIfCommand_BadPlayer(t *testing.T) {
	_, err := runCLI(t, "whatif", "--data", writeTracking(t), "--home", "H", "--away", "A",
		"--grid-size", "10", "--player", "5", "--to-x", "0", "--to-y", "0", "--out", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, control.ErrPlayerIndex), "got %v", err)
}

func TestUncertaintyCommand(t *testing.T) {
	png := filepath.Join(t.TempDir(), "std.png")
	out, err := runCLI(t, "uncertainty", "--data", writeTracking(t), "--home", "H", "--away", "A",
		"--grid-size", "12", "--sigma", "1", "--samples", "4", "--noise", "0.5", "--out", png)
	require.NoError(t, err)
	assert.Contains(t, out, "4 draws")
	assert.Contains(t, out, "MEAN")

	_, err = os.Stat(png)
	require.NoError(t, err)
}

func TestFramesCommand(t *testing.T) {
	out, err := runCLI(t, "frames", "--data", writeTracking(t), "--home", "H", "--away", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "2 frames, teams: [A H]")
	assert.Contains(t, out, "MISSING")

	out, err = runCLI(t, "frames", "--data", writeTracking(t), "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "... 1 more")
}

func TestPrintEffectiveConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"grid_size": 30, "decay_k": 7, "samples": 9}`), 0o644))

	// the file fills, explicit flags win
	out, err := runCLI(t, "uncertainty", "--config", cfgPath, "--grid-size", "40", "--seed", "3", "--print-effective-config")
	require.NoError(t, err)

	var eff effectiveConfig
	require.NoError(t, json.Unmarshal([]byte(out), &eff))
	require.NotNil(t, eff.Grid)
	assert.Equal(t, 40, *eff.Grid.GridSize)
	assert.Equal(t, 7.0, *eff.Grid.DecayK)
	assert.Equal(t, control.DefaultSigma, *eff.Grid.Sigma)
	assert.Equal(t, 9, eff.Samples)
	assert.Equal(t, int64(3), eff.Seed)
}

func TestInvalidSettings(t *testing.T) {
	_, err := runCLI(t, "grid", "--log-level", "loud")
	require.Error(t, err)

	_, err = runCLI(t, "grid", "--data", writeTracking(t), "--grid-size", "0", "--out", "")
	assert.True(t, errors.Is(err, control.ErrInvalidConfig), "got %v", err)

	_, err = runCLI(t, "grid", "--data", writeTracking(t), "--home", "A", "--away", "A", "--out", "")
	require.Error(t, err)
}

func TestTeamDefaults(t *testing.T) {
	teams := []string{"A", "H", "REF"}
	cases := []struct {
		home, away         string
		wantHome, wantAway string
	}{
		{"", "", "A", "H"},
		{"H", "", "H", "A"},
		{"", "A", "H", "A"},
		{"REF", "H", "REF", "H"},
	}
	for _, tc := range cases {
		home, away := resolveTeams(teams, tc.home, tc.away)
		assert.Equal(t, tc.wantHome, home, "home for %q/%q", tc.home, tc.away)
		assert.Equal(t, tc.wantAway, away, "away for %q/%q", tc.home, tc.away)
	}

	home, away := resolveTeams([]string{"H"}, "H", "")
	assert.Equal(t, "H", home)
	assert.Equal(t, "", away)
}

func TestGridCommand_HomeOnly(t *testing.T) {
	// teams sort as [A H]; away falls back to A
	out, err := runCLI(t, "grid", "--data", writeTracking(t), "--home", "H",
		"--grid-size", "21", "--sigma", "2", "--out", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Frame 10: H (home) vs A (away)")
	assert.Contains(t, out, "48.5%")
}

func TestGridCommand_TensorOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tensors", "grid.gob")
	_, err := runCLI(t, "grid", "--data", writeTracking(t), "--home", "H", "--away", "A",
		"--grid-size", "21", "--sigma", "2", "--out", "", "--tensor-out", path)
	require.NoError(t, err)

	tensor, err := tensors.Load(path)
	require.NoError(t, err)
	require.NotNil(t, tensor)
	assert.Equal(t, []int{21, 21}, tensor.Shape().Dimensions)
}

func TestFramesCommand_BatchOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.gob")
	_, err := runCLI(t, "frames", "--data", writeTracking(t), "--home", "H", "--away", "A",
		"--slots", "6", "--batch-out", path)
	require.NoError(t, err)

	tensor, err := tensors.Load(path)
	require.NoError(t, err)
	require.NotNil(t, tensor)
	assert.Equal(t, []int{2, 6, 3}, tensor.Shape().Dimensions)

	_, err = runCLI(t, "frames", "--data", writeTracking(t), "--home", "H", "--away", "A",
		"--slots", "2", "--batch-out", path)
	require.Error(t, err)
}
