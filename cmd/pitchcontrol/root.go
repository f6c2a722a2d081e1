package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Noofbiz/pitchControl/config"
	"github.com/Noofbiz/pitchControl/control"
	"github.com/Noofbiz/pitchControl/datasets"
)

var (
	logLevel             string
	configPath           string
	printEffectiveConfig bool

	dataPath string
	frameID  int
	homeTeam string
	awayTeam string

	gridSize  int
	decayK    float64
	sigma     float64
	threshold float64
	workers   int
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "pitchcontrol",
	Short: "Pitch control grids from tracking data",
	Long: "Compute which team controls each part of the pitch for a tracking frame,\n" +
		"summarize it by thirds and measure how moving a player changes it.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&configPath, "config", "", "optional JSON tuning file; explicit flags override its values")
	pf.BoolVar(&printEffectiveConfig, "print-effective-config", false, "print the effective (JSON+CLI merged) configuration and exit")

	pf.StringVar(&dataPath, "data", "data", "tracking CSV file, directory or glob pattern")
	pf.IntVar(&frameID, "frame", -1, "frame id to analyze (default: first frame)")
	pf.StringVar(&homeTeam, "home", "", "home team id (default: first team in the data other than --away)")
	pf.StringVar(&awayTeam, "away", "", "away team id (default: first team in the data other than --home)")

	pf.IntVar(&gridSize, "grid-size", control.DefaultGridSize, "samples per axis")
	pf.Float64Var(&decayK, "decay-k", control.DefaultDecayK, "distance in meters at which influence halves")
	pf.Float64Var(&sigma, "sigma", control.DefaultSigma, "gaussian smoothing in grid cells (0 disables)")
	pf.Float64Var(&threshold, "threshold", control.DefaultChangeThreshold, "per-cell change counted as space gained or lost")
	pf.IntVar(&workers, "workers", 0, "row workers per surface (0 = NumCPU)")

	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(whatIfCmd)
	rootCmd.AddCommand(uncertaintyCmd)
	rootCmd.AddCommand(framesCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// settings is the merged result of defaults, the tuning file and flags.
type settings struct {
	Cfg    control.Config
	Tuning *config.Tuning

	// Monte Carlo knobs; the uncertainty command lets flags override them.
	Noise   float64
	Samples int
	Seed    int64
}

// loadSettings starts from the defaults, applies the tuning file and then
// every flag the user set explicitly.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	var tu *config.Tuning
	if configPath != "" {
		var err error
		if tu, err = config.LoadTuning(configPath); err != nil {
			return nil, err
		}
		log.WithField("path", configPath).Info("loaded tuning config")
	}

	cfg := control.DefaultConfig()
	if tu != nil {
		var err error
		if cfg, err = tu.Apply(cfg); err != nil {
			return nil, fmt.Errorf("tuning config %s: %w", configPath, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("grid-size") {
		cfg.GridSize = gridSize
	}
	if flags.Changed("decay-k") {
		cfg.DecayK = decayK
	}
	if flags.Changed("sigma") {
		cfg.Sigma = sigma
	}
	if flags.Changed("threshold") {
		cfg.ChangeThreshold = threshold
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &settings{
		Cfg:     cfg,
		Tuning:  tu,
		Noise:   tu.GetNoise(),
		Samples: tu.GetSamples(),
		Seed:    tu.GetSeed(),
	}, nil
}

// effectiveConfig is what --print-effective-config writes.
type effectiveConfig struct {
	Grid    *config.Tuning `json:"grid"`
	Noise   float64        `json:"noise"`
	Samples int            `json:"samples"`
	Seed    int64          `json:"seed"`
	Dataset struct {
		CacheTTLSeconds int `json:"cache_ttl_seconds"`
		CacheMaxEntries int `json:"cache_max_entries"`
	} `json:"dataset"`
}

func printEffective(w io.Writer, s *settings) error {
	var out effectiveConfig
	out.Grid = config.FromConfig(s.Cfg)
	out.Noise = s.Noise
	out.Samples = s.Samples
	out.Seed = s.Seed
	out.Dataset.CacheTTLSeconds = int(s.Tuning.GetFrameCacheTTL().Seconds())
	out.Dataset.CacheMaxEntries = s.Tuning.GetFrameCacheMaxEntries()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// frameSelection is the resolved frame a subcommand works on.
type frameSelection struct {
	ds        *datasets.TrackingDataset
	frameIdx  int
	frameID   int
	home      string
	away      string
	positions control.PositionSet
}

func openDataset(s *settings) (*datasets.TrackingDataset, error) {
	pattern, err := datasets.ResolvePattern(dataPath)
	if err != nil {
		return nil, err
	}
	ds, err := datasets.NewTrackingDataset(pattern)
	if err != nil {
		return nil, fmt.Errorf("open tracking data: %w", err)
	}
	ds.SetFrameCacheTTL(s.Tuning.GetFrameCacheTTL())
	ds.SetFrameCacheMaxEntries(s.Tuning.GetFrameCacheMaxEntries())
	log.WithFields(logrus.Fields{
		"pattern": pattern,
		"frames":  ds.Len(),
		"teams":   ds.Teams(),
	}).Debug("tracking data indexed")
	return ds, nil
}

// resolveTeams fills an empty home or away id with the first team, in
// sorted order, that differs from the other side.
func resolveTeams(teams []string, home, away string) (string, string) {
	firstOther := func(other string) string {
		for _, t := range teams {
			if t != other {
				return t
			}
		}
		return ""
	}
	if home == "" {
		home = firstOther(away)
	}
	if away == "" {
		away = firstOther(home)
	}
	return home, away
}

// selectFrame resolves --frame, --home and --away against the dataset.
func selectFrame(s *settings) (*frameSelection, error) {
	ds, err := openDataset(s)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("no frames in %s", dataPath)
	}

	sel := &frameSelection{ds: ds, home: homeTeam, away: awayTeam}
	if frameID < 0 {
		sel.frameIdx = 0
	} else {
		idx, ok := ds.FrameIndex(frameID)
		if !ok {
			return nil, fmt.Errorf("frame %d not found in %s", frameID, dataPath)
		}
		sel.frameIdx = idx
	}
	sel.frameID = ds.Frames()[sel.frameIdx]

	sel.home, sel.away = resolveTeams(ds.Teams(), sel.home, sel.away)
	if sel.home == sel.away {
		return nil, fmt.Errorf("home and away team must differ, both are %q", sel.home)
	}

	sel.positions, err = ds.FramePositions(sel.frameIdx, sel.home, sel.away)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"frame": sel.frameID,
		"home":  fmt.Sprintf("%s (%d)", sel.home, len(sel.positions.Home)),
		"away":  fmt.Sprintf("%s (%d)", sel.away, len(sel.positions.Away)),
	}).Info("frame loaded")
	return sel, nil
}
