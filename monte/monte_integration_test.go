package monte

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Noofbiz/pitchControl/datasets"
)

// TestIntegrationWithTrackingDataset loads a frame through the tracking
// dataset and runs the sampler on it end to end.
func TestIntegrationWithTrackingDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.csv")
	rows := []string{
		"frame_id,team_id,player_id,x,y",
		"100,HOME,1,-30,0",
		"100,HOME,2,-12,18",
		"100,HOME,3,,",
		"100,AWAY,9,22,-4",
		"100,AWAY,10,40,12",
		"101,HOME,1,-29,0",
	}
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	ds, err := datasets.NewTrackingDataset(path)
	if err != nil {
		t.Fatalf("NewTrackingDataset failed: %v", err)
	}
	ps, err := ds.FramePositions(0, "HOME", "AWAY")
	if err != nil {
		t.Fatalf("FramePositions failed: %v", err)
	}
	if len(ps.Home) != 2 || len(ps.Away) != 2 {
		t.Fatalf("unexpected frame sizes: %d home, %d away", len(ps.Home), len(ps.Away))
	}

	s, err := NewSampler(smallConfig(), 1.5, 2024)
	if err != nil {
		t.Fatalf("NewSampler failed: %v", err)
	}
	sum, err := s.Sample(context.Background(), ps, 8)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	total := sum.HomeTotal.Mean + sum.AwayTotal.Mean
	if !approxEqual(total, 100, 0.2) {
		t.Fatalf("home+away mean share = %v, want ~100 (no neutral cells with players on both sides)", total)
	}
	rows2, cols := sum.Mean.Dims()
	if rows2 != smallConfig().GridSize || cols != smallConfig().GridSize {
		t.Fatalf("unexpected summary grid %dx%d", rows2, cols)
	}
}
