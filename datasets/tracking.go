package datasets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Noofbiz/pitchControl/control"
)

// Player is one tracking row for a single frame.
type Player struct {
	ID   string
	Team string
	X, Y float64

	// Missing is set when the row has no usable coordinates.
	Missing bool
}

// Point returns the player's location.
func (p Player) Point() control.Point {
	return control.Point{X: p.X, Y: p.Y}
}

// frameLocation records where a frame's rows live.
type frameLocation struct {
	fileIdx int
	rows    []int
}

// TrackingDataset lazily serves frames from tracking CSVs matching a glob
// pattern.
type TrackingDataset struct {
	// Pattern used to find CSV files (e.g., "data/match_*.csv")
	Pattern string

	csvPaths []string

	// column indices, shared by every file (checked at index time)
	frameCol, teamCol, playerCol, xCol, yCol int

	frameIDs       []int
	frameLocations map[int]frameLocation
	teams          []string

	cache *frameCache
}

const (
	defaultFrameCacheTTL        = 5 * time.Minute
	defaultFrameCacheMaxEntries = 256
)

// NewTrackingDataset indexes every CSV matching pattern. Rows are not kept
// in memory; FramePlayers reads them back on demand.
func NewTrackingDataset(pattern string) (*TrackingDataset, error) {
	csvPaths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	if len(csvPaths) == 0 {
		return nil, fmt.Errorf("no CSV files found matching pattern: %s", pattern)
	}
	sort.Strings(csvPaths)

	ds := &TrackingDataset{
		Pattern:        pattern,
		csvPaths:       csvPaths,
		frameLocations: make(map[int]frameLocation),
		cache:          newFrameCache(defaultFrameCacheTTL, defaultFrameCacheMaxEntries),
	}

	if err := ds.buildFrameIndex(); err != nil {
		return nil, err
	}
	return ds, nil
}

// SetFrameCacheTTL sets how long a loaded frame is served from memory and
// empties the cache. Zero or negative disables caching. Safe to call while
// other goroutines read frames.
func (d *TrackingDataset) SetFrameCacheTTL(ttl time.Duration) {
	d.cache.setTTL(ttl)
}

// SetFrameCacheMaxEntries bounds the number of cached frames (0 means
// unbounded) and empties the cache.
func (d *TrackingDataset) SetFrameCacheMaxEntries(n int) {
	d.cache.setMaxEntries(n)
}

// findColumn returns the index of the first alias present in colIndex.
func findColumn(colIndex map[string]int, aliases ...string) (int, bool) {
	for _, name := range aliases {
		if idx, ok := colIndex[name]; ok {
			return idx, true
		}
	}
	return -1, false
}

// readColumns maps the header of one file onto the dataset's column slots.
func readColumns(header []string) (frame, team, player, x, y int, err error) {
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}

	var ok bool
	if frame, ok = findColumn(colIndex, "frame_id", "frame", "frameid"); !ok {
		return 0, 0, 0, 0, 0, fmt.Errorf("could not find frame column")
	}
	if team, ok = findColumn(colIndex, "team_id", "team", "teamid"); !ok {
		return 0, 0, 0, 0, 0, fmt.Errorf("could not find team column")
	}
	if player, ok = findColumn(colIndex, "player_id", "player", "playerid"); !ok {
		return 0, 0, 0, 0, 0, fmt.Errorf("could not find player column")
	}
	if x, ok = findColumn(colIndex, "x"); !ok {
		return 0, 0, 0, 0, 0, fmt.Errorf("required column %q not found in CSV", "x")
	}
	if y, ok = findColumn(colIndex, "y"); !ok {
		return 0, 0, 0, 0, 0, fmt.Errorf("required column %q not found in CSV", "y")
	}
	return frame, team, player, x, y, nil
}

// buildFrameIndex scans every file once, recording which rows belong to
// which frame and which teams appear.
func (d *TrackingDataset) buildFrameIndex() error {
	teams := make(map[string]bool)

	for fileIdx, path := range d.csvPaths {
		if err := d.scanFile(fileIdx, path, teams); err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
	}

	d.frameIDs = make([]int, 0, len(d.frameLocations))
	for id := range d.frameLocations {
		d.frameIDs = append(d.frameIDs, id)
	}
	sort.Ints(d.frameIDs)

	d.teams = make([]string, 0, len(teams))
	for team := range teams {
		d.teams = append(d.teams, team)
	}
	sort.Strings(d.teams)
	return nil
}

func (d *TrackingDataset) scanFile(fileIdx int, path string, teams map[string]bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	frame, team, player, x, y, err := readColumns(header)
	if err != nil {
		return err
	}
	if fileIdx == 0 {
		d.frameCol, d.teamCol, d.playerCol, d.xCol, d.yCol = frame, team, player, x, y
	} else if frame != d.frameCol || team != d.teamCol || player != d.playerCol || x != d.xCol || y != d.yCol {
		return fmt.Errorf("column layout differs from %s", d.csvPaths[0])
	}

	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if d.frameCol >= len(record) || d.teamCol >= len(record) {
			return fmt.Errorf("row %d: short record (%d fields)", rowIdx+1, len(record))
		}

		frameID, err := strconv.Atoi(strings.TrimSpace(record[d.frameCol]))
		if err != nil {
			return fmt.Errorf("row %d: invalid frame id %q", rowIdx+1, record[d.frameCol])
		}
		loc, ok := d.frameLocations[frameID]
		if ok && loc.fileIdx != fileIdx {
			return fmt.Errorf("frame %d also present in %s", frameID, d.csvPaths[loc.fileIdx])
		}
		loc.fileIdx = fileIdx
		loc.rows = append(loc.rows, rowIdx)
		d.frameLocations[frameID] = loc

		teams[strings.TrimSpace(record[d.teamCol])] = true
		rowIdx++
	}
	return nil
}

// Len returns the number of distinct frames.
func (d *TrackingDataset) Len() int {
	return len(d.frameIDs)
}

// Frames returns the frame ids in ascending order. Frame indices used by
// the other methods are positions in this slice.
func (d *TrackingDataset) Frames() []int {
	return append([]int(nil), d.frameIDs...)
}

// FrameIndex returns the index of frameID in Frames().
func (d *TrackingDataset) FrameIndex(frameID int) (int, bool) {
	i := sort.SearchInts(d.frameIDs, frameID)
	if i < len(d.frameIDs) && d.frameIDs[i] == frameID {
		return i, true
	}
	return -1, false
}

// Teams returns the team ids seen in the data, sorted.
func (d *TrackingDataset) Teams() []string {
	return append([]string(nil), d.teams...)
}

// FramePlayers returns every row of frame frameIdx in file order, including
// players without usable coordinates.
func (d *TrackingDataset) FramePlayers(frameIdx int) ([]Player, error) {
	if frameIdx < 0 || frameIdx >= len(d.frameIDs) {
		return nil, fmt.Errorf("frame index %d out of range [0, %d)", frameIdx, len(d.frameIDs))
	}
	frameID := d.frameIDs[frameIdx]

	if players, ok := d.cache.get(frameID); ok {
		return players, nil
	}
	players, err := d.loadFrame(frameID)
	if err != nil {
		return nil, err
	}
	d.cache.put(frameID, players)
	return players, nil
}

// FramePositions returns the positions of the two teams' players in frame
// frameIdx. Rows of other teams are ignored and players with missing
// coordinates are omitted.
func (d *TrackingDataset) FramePositions(frameIdx int, homeTeamID, awayTeamID string) (control.PositionSet, error) {
	players, err := d.FramePlayers(frameIdx)
	if err != nil {
		return control.PositionSet{}, err
	}

	var ps control.PositionSet
	for _, p := range players {
		if p.Missing {
			continue
		}
		switch p.Team {
		case homeTeamID:
			ps.Home = append(ps.Home, p.Point())
		case awayTeamID:
			ps.Away = append(ps.Away, p.Point())
		}
	}
	return ps, nil
}

// loadFrame reads the rows of one frame back from disk.
func (d *TrackingDataset) loadFrame(frameID int) ([]Player, error) {
	loc, ok := d.frameLocations[frameID]
	if !ok {
		return nil, fmt.Errorf("frame %d not found", frameID)
	}

	file, err := os.Open(d.csvPaths[loc.fileIdx])
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	wanted := make(map[int]bool, len(loc.rows))
	last := 0
	for _, r := range loc.rows {
		wanted[r] = true
		if r > last {
			last = r
		}
	}

	players := make([]Player, 0, len(loc.rows))
	for currentRow := 0; currentRow <= last; currentRow++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("frame %d: %s changed since it was indexed", frameID, d.csvPaths[loc.fileIdx])
		}
		if err != nil {
			return nil, err
		}
		if !wanted[currentRow] {
			continue
		}
		players = append(players, d.parsePlayer(record))
	}
	return players, nil
}

func (d *TrackingDataset) parsePlayer(record []string) Player {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	p := Player{
		ID:   strings.TrimSpace(field(d.playerCol)),
		Team: strings.TrimSpace(field(d.teamCol)),
	}
	x, errX := parseCoord(field(d.xCol))
	y, errY := parseCoord(field(d.yCol))
	if errX != nil || errY != nil {
		p.Missing = true
		return p
	}
	p.X, p.Y = x, y
	return p
}
