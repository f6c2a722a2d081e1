package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Noofbiz/pitchControl/report"
)

var (
	framesLimit    int
	framesBatchOut string
	framesSlots    int
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List the frames and teams in the tracking data",
	Args:  cobra.NoArgs,
	RunE:  runFrames,
}

func init() {
	framesCmd.Flags().IntVar(&framesLimit, "limit", 20, "maximum frames to list (0 = all)")
	framesCmd.Flags().StringVar(&framesBatchOut, "batch-out", "", "optional path for the listed frames as a gob-encoded [frames, slots, 3] gomlx tensor")
	framesCmd.Flags().IntVar(&framesSlots, "slots", 22, "player slots per frame in --batch-out")
}

func runFrames(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ds, err := openDataset(s)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	frames := ds.Frames()
	fmt.Fprintf(out, "%d frames, teams: %v\n", len(frames), ds.Teams())
	if len(frames) == 0 {
		return nil
	}

	home, away := resolveTeams(ds.Teams(), homeTeam, awayTeam)

	n := len(frames)
	if framesLimit > 0 && framesLimit < n {
		n = framesLimit
	}
	rows := make([]report.FrameRow, 0, n)
	for i := 0; i < n; i++ {
		players, err := ds.FramePlayers(i)
		if err != nil {
			return err
		}
		row := report.FrameRow{Index: i, FrameID: frames[i]}
		for _, p := range players {
			switch {
			case p.Missing:
				row.Missing++
			case p.Team == home:
				row.Home++
			case p.Team == away:
				row.Away++
			}
		}
		rows = append(rows, row)
	}
	report.WriteFrames(out, rows)
	if n < len(frames) {
		fmt.Fprintf(out, "... %d more\n", len(frames)-n)
	}

	if framesBatchOut != "" {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		batch, err := ds.MakePositionBatchFlat(indices, home, away, framesSlots)
		if err != nil {
			return err
		}
		t, err := batch.ToGomlxTensor()
		if err != nil {
			return err
		}
		if err := saveTensor(framesBatchOut, t); err != nil {
			return err
		}
		log.WithField("path", framesBatchOut).Info("wrote position batch")
	}
	return nil
}
