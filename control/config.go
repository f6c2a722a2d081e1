package control

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

var (
	// ErrInvalidConfig is returned for pitch or grid parameters that cannot
	// produce a meaningful grid (non-positive sizes, NaN, ...).
	ErrInvalidConfig = errors.New("invalid pitch control config")

	// ErrShapeMismatch is returned when two grids or surfaces that must be
	// combined cell by cell do not share the same shape or coordinates.
	ErrShapeMismatch = errors.New("grid shape mismatch")

	// ErrEmptyGrid is returned when metrics are requested for a nil or
	// zero-sized grid.
	ErrEmptyGrid = errors.New("empty control grid")

	// ErrPlayerIndex is returned when a what-if move names a player that is
	// not in the position set.
	ErrPlayerIndex = errors.New("player index out of range")
)

// Defaults used when a Config field is left at its zero value.
const (
	DefaultPitchLength     = 105.0
	DefaultPitchWidth      = 68.0
	DefaultGridSize        = 50
	DefaultDecayK          = 10.0
	DefaultSigma           = 5.0
	DefaultChangeThreshold = 0.1
)

// Config holds the grid parameters shared by every stage of the pipeline.
// Two grids can only be compared if they were produced from the same Config.
type Config struct {
	// Pitch dimensions in meters.
	Pitch Pitch `json:"pitch"`

	// GridSize is the number of samples along each axis; the grid has
	// GridSize x GridSize cells.
	GridSize int `json:"grid_size"`

	// DecayK is the distance (meters) at which a player's influence has
	// dropped to one half.
	DecayK float64 `json:"decay_k"`

	// Sigma is the standard deviation of the Gaussian blur in grid cells.
	// Zero disables smoothing.
	Sigma float64 `json:"sigma"`

	// ChangeThreshold is the per-cell difference beyond which a cell counts
	// as space gained or lost in a counterfactual.
	ChangeThreshold float64 `json:"change_threshold"`

	// Workers bounds the row worker pool. Zero means runtime.NumCPU().
	Workers int `json:"workers"`
}

// DefaultConfig returns the standard 105x68 pitch on a 50x50 lattice.
func DefaultConfig() Config {
	return Config{
		Pitch:           Pitch{Length: DefaultPitchLength, Width: DefaultPitchWidth},
		GridSize:        DefaultGridSize,
		DecayK:          DefaultDecayK,
		Sigma:           DefaultSigma,
		ChangeThreshold: DefaultChangeThreshold,
	}
}

// WithDefaults returns a copy of c with zero-valued fields replaced by their
// defaults. Sigma is left alone: zero is a valid "no smoothing" setting, so
// callers that want the default blur should start from DefaultConfig.
func (c Config) WithDefaults() Config {
	if c.Pitch.Length == 0 {
		c.Pitch.Length = DefaultPitchLength
	}
	if c.Pitch.Width == 0 {
		c.Pitch.Width = DefaultPitchWidth
	}
	if c.GridSize == 0 {
		c.GridSize = DefaultGridSize
	}
	if c.DecayK == 0 {
		c.DecayK = DefaultDecayK
	}
	if c.ChangeThreshold == 0 {
		c.ChangeThreshold = DefaultChangeThreshold
	}
	return c
}

// Validate fails fast on parameters that would otherwise produce NaNs or
// empty grids.
func (c Config) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch {
	case !finite(c.Pitch.Length) || c.Pitch.Length <= 0:
		return fmt.Errorf("pitch length must be > 0, got %v: %w", c.Pitch.Length, ErrInvalidConfig)
	case !finite(c.Pitch.Width) || c.Pitch.Width <= 0:
		return fmt.Errorf("pitch width must be > 0, got %v: %w", c.Pitch.Width, ErrInvalidConfig)
	case c.GridSize <= 0:
		return fmt.Errorf("grid size must be > 0, got %d: %w", c.GridSize, ErrInvalidConfig)
	case !finite(c.DecayK) || c.DecayK <= 0:
		return fmt.Errorf("decay k must be > 0, got %v: %w", c.DecayK, ErrInvalidConfig)
	case !finite(c.Sigma) || c.Sigma < 0:
		return fmt.Errorf("smoothing sigma must be >= 0, got %v: %w", c.Sigma, ErrInvalidConfig)
	case !finite(c.ChangeThreshold) || c.ChangeThreshold < 0:
		return fmt.Errorf("change threshold must be >= 0, got %v: %w", c.ChangeThreshold, ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d: %w", c.Workers, ErrInvalidConfig)
	}
	return nil
}

// workerCount resolves the pool size for n jobs.
func (c Config) workerCount(n int) int {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
