// Package config loads optional JSON tuning files for the pitch control
// CLI. Every field is a pointer so a partial file only overrides what it
// names; everything else keeps the control package defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Noofbiz/pitchControl/control"
)

// Monte Carlo defaults used when the tuning file leaves them out.
const (
	DefaultNoise   = 1.0
	DefaultSamples = 50
	DefaultSeed    = int64(1)

	DefaultFrameCacheTTLSeconds = 300
	DefaultFrameCacheMaxEntries = 256
)

// Tuning mirrors control.Config plus the sampler and dataset knobs.
type Tuning struct {
	// Grid params
	PitchLength     *float64 `json:"pitch_length,omitempty"`
	PitchWidth      *float64 `json:"pitch_width,omitempty"`
	GridSize        *int     `json:"grid_size,omitempty"`
	DecayK          *float64 `json:"decay_k,omitempty"`
	Sigma           *float64 `json:"sigma,omitempty"`
	ChangeThreshold *float64 `json:"change_threshold,omitempty"`
	Workers         *int     `json:"workers,omitempty"`

	// Monte Carlo params
	Noise   *float64 `json:"noise,omitempty"`
	Samples *int     `json:"samples,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`

	Dataset *DatasetTuning `json:"dataset,omitempty"`
}

// DatasetTuning configures the tracking dataset frame cache.
type DatasetTuning struct {
	CacheTTLSeconds *int `json:"cache_ttl_seconds,omitempty"`
	CacheMaxEntries *int `json:"cache_max_entries,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// FromConfig captures every grid field of cfg, e.g. for printing the
// effective configuration.
func FromConfig(cfg control.Config) *Tuning {
	return &Tuning{
		PitchLength:     ptrFloat64(cfg.Pitch.Length),
		PitchWidth:      ptrFloat64(cfg.Pitch.Width),
		GridSize:        ptrInt(cfg.GridSize),
		DecayK:          ptrFloat64(cfg.DecayK),
		Sigma:           ptrFloat64(cfg.Sigma),
		ChangeThreshold: ptrFloat64(cfg.ChangeThreshold),
		Workers:         ptrInt(cfg.Workers),
	}
}

// LoadTuning reads a Tuning from a JSON file. The file must have a .json
// extension and be at most 1MB.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	t := &Tuning{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return t, nil
}

// Validate checks the fields that control.Config.Validate cannot see.
// Grid fields are validated after Apply, against the merged config.
func (t *Tuning) Validate() error {
	if t.Noise != nil && *t.Noise < 0 {
		return fmt.Errorf("noise must be >= 0, got %f", *t.Noise)
	}
	if t.Samples != nil && *t.Samples <= 0 {
		return fmt.Errorf("samples must be > 0, got %d", *t.Samples)
	}
	if d := t.Dataset; d != nil {
		if d.CacheMaxEntries != nil && *d.CacheMaxEntries < 0 {
			return fmt.Errorf("dataset.cache_max_entries must be >= 0, got %d", *d.CacheMaxEntries)
		}
	}
	return nil
}

// Apply returns cfg with every field set in t overridden. The result is
// validated.
func (t *Tuning) Apply(cfg control.Config) (control.Config, error) {
	if t != nil {
		if t.PitchLength != nil {
			cfg.Pitch.Length = *t.PitchLength
		}
		if t.PitchWidth != nil {
			cfg.Pitch.Width = *t.PitchWidth
		}
		if t.GridSize != nil {
			cfg.GridSize = *t.GridSize
		}
		if t.DecayK != nil {
			cfg.DecayK = *t.DecayK
		}
		if t.Sigma != nil {
			cfg.Sigma = *t.Sigma
		}
		if t.ChangeThreshold != nil {
			cfg.ChangeThreshold = *t.ChangeThreshold
		}
		if t.Workers != nil {
			cfg.Workers = *t.Workers
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetNoise returns the noise value or the default.
func (t *Tuning) GetNoise() float64 {
	if t == nil || t.Noise == nil {
		return DefaultNoise
	}
	return *t.Noise
}

// GetSamples returns the samples value or the default.
func (t *Tuning) GetSamples() int {
	if t == nil || t.Samples == nil {
		return DefaultSamples
	}
	return *t.Samples
}

// GetSeed returns the seed value or the default.
func (t *Tuning) GetSeed() int64 {
	if t == nil || t.Seed == nil {
		return DefaultSeed
	}
	return *t.Seed
}

// GetFrameCacheTTL returns the dataset frame cache TTL or the default.
// Zero disables the cache.
func (t *Tuning) GetFrameCacheTTL() time.Duration {
	if t == nil || t.Dataset == nil || t.Dataset.CacheTTLSeconds == nil {
		return DefaultFrameCacheTTLSeconds * time.Second
	}
	return time.Duration(*t.Dataset.CacheTTLSeconds) * time.Second
}

// GetFrameCacheMaxEntries returns the dataset frame cache capacity or the
// default.
func (t *Tuning) GetFrameCacheMaxEntries() int {
	if t == nil || t.Dataset == nil || t.Dataset.CacheMaxEntries == nil {
		return DefaultFrameCacheMaxEntries
	}
	return *t.Dataset.CacheMaxEntries
}
