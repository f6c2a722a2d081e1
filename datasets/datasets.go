package datasets

import "github.com/Noofbiz/pitchControl/control"

// This package turns tracking data on disk into position sets the control
// package can evaluate.
//
// Tracking CSVs are "long" format: one row per player per frame, with at
// least these columns (names are case-insensitive, first alias found wins):
//
//	frame_id | frame     integer frame identifier
//	team_id  | team      team identifier (string)
//	player_id| player    player identifier (string)
//	x, y                 pitch coordinates in meters, origin at the center
//
// Files are indexed once when the dataset is opened (frame -> file, rows)
// and rows are only read when a frame is requested. Recently read frames
// are kept in a small TTL/LRU cache.
//
// Players whose x or y is blank, NaN or not a number are reported with
// Missing set and left out of position sets: absent players simply do not
// contribute influence.

// FrameSource is anything that can hand out per-frame position sets.
type FrameSource interface {
	Len() int
	Frames() []int
	FramePositions(frameIdx int, homeTeamID, awayTeamID string) (control.PositionSet, error)
}

var _ FrameSource = (*TrackingDataset)(nil)
