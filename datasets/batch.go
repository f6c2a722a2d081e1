package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// PositionChannels is the per-slot layout of a PositionBatchFlat:
// x, y, side (+1 home, -1 away, 0 empty slot).
const PositionChannels = 3

// PositionBatchFlat is a batch of frames as a contiguous float32 buffer of
// shape [Batch, Slots, PositionChannels]. Home players fill the first slots
// of each frame, away players follow, and unused slots stay zero.
type PositionBatchFlat struct {
	Buf      []float32
	Batch    int
	Slots    int
	Channels int
}

// MakePositionBatchFlat loads the frames at indices and packs the two
// teams' positions into a fixed number of slots per frame. Frames with more
// than slots players are an error.
func (d *TrackingDataset) MakePositionBatchFlat(indices []int, homeTeamID, awayTeamID string, slots int) (*PositionBatchFlat, error) {
	if slots <= 0 {
		return nil, fmt.Errorf("slots must be > 0, got %d", slots)
	}
	batch := len(indices)
	flat := make([]float32, batch*slots*PositionChannels)

	for i, idx := range indices {
		ps, err := d.FramePositions(idx, homeTeamID, awayTeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load frame index %d: %w", idx, err)
		}
		if ps.Len() > slots {
			return nil, fmt.Errorf("frame index %d has %d players, batch has %d slots", idx, ps.Len(), slots)
		}

		off := i * slots * PositionChannels
		for _, p := range ps.Home {
			flat[off], flat[off+1], flat[off+2] = float32(p.X), float32(p.Y), 1
			off += PositionChannels
		}
		for _, p := range ps.Away {
			flat[off], flat[off+1], flat[off+2] = float32(p.X), float32(p.Y), -1
			off += PositionChannels
		}
	}

	return &PositionBatchFlat{
		Buf:      flat,
		Batch:    batch,
		Slots:    slots,
		Channels: PositionChannels,
	}, nil
}

// At returns channel ch of the given slot in frame batch.
func (b *PositionBatchFlat) At(batch, slot, ch int) float32 {
	return b.Buf[(batch*b.Slots+slot)*b.Channels+ch]
}

// ToGomlxTensor converts PositionBatchFlat to a gomlx tensor
func (b *PositionBatchFlat) ToGomlxTensor() (*tensors.Tensor, error) {
	if b.Batch == 0 || b.Slots == 0 || b.Channels == 0 {
		empty := make([][][]float32, 0)
		return tensors.FromAnyValue(empty), nil
	}
	data := make([][][]float32, b.Batch)
	idx := 0
	for i := 0; i < b.Batch; i++ {
		data[i] = make([][]float32, b.Slots)
		for j := 0; j < b.Slots; j++ {
			data[i][j] = b.Buf[idx : idx+b.Channels]
			idx += b.Channels
		}
	}
	return tensors.FromAnyValue(data), nil
}
