// Package doc owns the document model: the ordered layer stack, per-layer
// undo/redo history, anchor points, vanishing points, and the resize/crop
// pipeline. Every mutation goes through a named operation on Document so
// the change hook fires exactly once per user-visible action.
package doc

import "errors"

// Sentinel errors signaled at operation boundaries. Callers treat these as
// no-op signals rather than failures: the UI simply does not perform the
// action.
var (
	ErrLastLayer     = errors.New("cannot delete the last remaining layer")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNoSuchLayer   = errors.New("no such layer")
	ErrLayerBoundary = errors.New("layer already at stack boundary")
	ErrTooManyPoints = errors.New("at most three vanishing points")
	ErrDegenerateCrop = errors.New("crop rectangle too small")
)
