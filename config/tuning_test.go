package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/pitchControl/control"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTuning_Partial(t *testing.T) {
	path := writeFile(t, "tuning.json", `{"grid_size": 20, "sigma": 0, "samples": 12}`)

	tu, err := LoadTuning(path)
	require.NoError(t, err)
	require.NotNil(t, tu.GridSize)
	require.NotNil(t, tu.Sigma)
	assert.Nil(t, tu.DecayK)

	cfg, err := tu.Apply(control.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.GridSize)
	// explicit zero survives the merge
	assert.Equal(t, 0.0, cfg.Sigma)
	assert.Equal(t, control.DefaultDecayK, cfg.DecayK)
	assert.Equal(t, control.DefaultPitchLength, cfg.Pitch.Length)

	assert.Equal(t, 12, tu.GetSamples())
	assert.Equal(t, DefaultNoise, tu.GetNoise())
	assert.Equal(t, DefaultSeed, tu.GetSeed())
}

func TestLoadTuning_Dataset(t *testing.T) {
	path := writeFile(t, "tuning.json", `{"dataset": {"cache_ttl_seconds": 0, "cache_max_entries": 8}}`)
	tu, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), tu.GetFrameCacheTTL())
	assert.Equal(t, 8, tu.GetFrameCacheMaxEntries())
}

func TestLoadTuning_Errors(t *testing.T) {
	_, err := LoadTuning(writeFile(t, "tuning.yaml", `{}`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), ".json"))

	_, err = LoadTuning(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = LoadTuning(writeFile(t, "bad.json", `{"grid_size": "many"}`))
	require.Error(t, err)

	_, err = LoadTuning(writeFile(t, "neg.json", `{"noise": -1}`))
	require.Error(t, err)

	_, err = LoadTuning(writeFile(t, "zero.json", `{"samples": 0}`))
	require.Error(t, err)

	big := writeFile(t, "big.json", `{"pad": "`+strings.Repeat("x", 1<<20)+`"}`)
	_, err = LoadTuning(big)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "too large"))
}

func TestApply_InvalidMerge(t *testing.T) {
	tu := &Tuning{DecayK: ptrFloat64(-3)}
	_, err := tu.Apply(control.DefaultConfig())
	assert.True(t, errors.Is(err, control.ErrInvalidConfig), "got %v", err)
}

func TestNilTuning(t *testing.T) {
	var tu *Tuning
	cfg, err := tu.Apply(control.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, control.DefaultConfig(), cfg)
	assert.Equal(t, DefaultSamples, tu.GetSamples())
	assert.Equal(t, DefaultFrameCacheTTLSeconds*time.Second, tu.GetFrameCacheTTL())
	assert.Equal(t, DefaultFrameCacheMaxEntries, tu.GetFrameCacheMaxEntries())
}

func TestFromConfig_RoundTrip(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.GridSize = 33
	cfg.Workers = 2

	tu := FromConfig(cfg)
	tu.Seed = ptrInt64(7)
	got, err := tu.Apply(control.Config{})
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, int64(7), tu.GetSeed())
}
