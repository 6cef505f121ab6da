package doc

import (
	"image"

	"layout-studio/internal/raster"
)

// HistoryCap bounds every per-layer history stack. When a push would exceed
// it, the oldest snapshot is evicted.
const HistoryCap = 40

// history is a bounded stack of full raster snapshots with a current index.
// Snapshots are pushed before each mutating operation; undo and redo only
// move the index and hand back the snapshot to repaint from, never mutating
// the stack except through eviction.
type history struct {
	snapshots []*image.RGBA
	index     int
}

func newHistory(seed *image.RGBA) *history {
	return &history{snapshots: []*image.RGBA{raster.CloneRGBA(seed)}}
}

// push records the pre-mutation state of the layer buffer. Any redo tail
// above the current index is discarded first.
func (h *history) push(current *image.RGBA) {
	h.snapshots = h.snapshots[:h.index+1]
	h.snapshots = append(h.snapshots, raster.CloneRGBA(current))
	h.index = len(h.snapshots) - 1
	h.evict()
}

// undo steps back one snapshot. Because pushes record pre-mutation states,
// the state produced by the latest mutation lives only in the live buffer;
// it is captured onto the stack on the way down so redo can restore it.
func (h *history) undo(current *image.RGBA) (*image.RGBA, error) {
	if h.index == 0 {
		return nil, ErrNothingToUndo
	}
	if h.index == len(h.snapshots)-1 && !raster.EqualPix(h.snapshots[h.index], current) {
		h.snapshots = append(h.snapshots, raster.CloneRGBA(current))
		h.index++
		h.evict()
		if h.index == 0 {
			return nil, ErrNothingToUndo
		}
	}
	h.index--
	return raster.CloneRGBA(h.snapshots[h.index]), nil
}

// redo steps forward one snapshot.
func (h *history) redo() (*image.RGBA, error) {
	if h.index >= len(h.snapshots)-1 {
		return nil, ErrNothingToRedo
	}
	h.index++
	return raster.CloneRGBA(h.snapshots[h.index]), nil
}

// reset discards everything and reseeds with the given state. Used after
// operations that change the buffer dimensions (resize, crop), where old
// snapshots no longer fit the canvas.
func (h *history) reset(seed *image.RGBA) {
	h.snapshots = []*image.RGBA{raster.CloneRGBA(seed)}
	h.index = 0
}

// evict drops the oldest snapshots until the stack fits the cap, keeping
// the index pointed at the same logical entry.
func (h *history) evict() {
	for len(h.snapshots) > HistoryCap {
		h.snapshots = h.snapshots[1:]
		if h.index > 0 {
			h.index--
		}
	}
}

// depth returns the number of stored snapshots.
func (h *history) depth() int { return len(h.snapshots) }

// canUndo reports whether an undo step is available.
func (h *history) canUndo() bool { return h.index > 0 }

// canRedo reports whether a redo step is available.
func (h *history) canRedo() bool { return h.index < len(h.snapshots)-1 }
