package datasets

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// parseCoord parses a coordinate cell. Blank, NaN and infinite values are
// errors so callers can treat the player as missing.
func parseCoord(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite coordinate %q", s)
	}
	return v, nil
}

// ResolvePattern turns a CLI data argument into a glob pattern: directories
// become "<dir>/*.csv", anything else is used as given.
func ResolvePattern(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		// not a directory (or a glob): use verbatim
		return path, nil
	}
	return FindCSVInDir(path)
}

// FindCSVInDir returns a glob pattern matching the CSV files in dir, or an
// error if there are none.
func FindCSVInDir(dir string) (string, error) {
	pattern := filepath.Join(dir, "*.csv")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no CSV files found in %s", dir)
	}
	return pattern, nil
}
