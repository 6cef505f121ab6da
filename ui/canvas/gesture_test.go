package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"layout-studio/pkg/geometry"
)

func TestPinchDeltaPanOnly(t *testing.T) {
	prev := TouchPair{{X: 100, Y: 100}, {X: 200, Y: 100}}
	cur := TouchPair{{X: 130, Y: 140}, {X: 230, Y: 140}}

	pan, factor := PinchDelta(prev, cur)
	assert.InDelta(t, 30, pan.X, 1e-9)
	assert.InDelta(t, 40, pan.Y, 1e-9)
	assert.InDelta(t, 1.0, factor, 1e-9, "equal spreads must not zoom")
}

func TestPinchDeltaZoomOnly(t *testing.T) {
	prev := TouchPair{{X: 100, Y: 100}, {X: 200, Y: 100}}
	cur := TouchPair{{X: 50, Y: 100}, {X: 250, Y: 100}}

	pan, factor := PinchDelta(prev, cur)
	assert.InDelta(t, 0, pan.X, 1e-9)
	assert.InDelta(t, 0, pan.Y, 1e-9)
	assert.InDelta(t, 2.0, factor, 1e-9, "spread doubled")
}

func TestPinchDeltaDegenerateSpread(t *testing.T) {
	prev := TouchPair{{X: 100, Y: 100}, {X: 100, Y: 100}}
	cur := TouchPair{{X: 90, Y: 100}, {X: 110, Y: 100}}

	_, factor := PinchDelta(prev, cur)
	assert.Equal(t, 1.0, factor, "zero previous spread cannot define a ratio")
}

func TestApplyPinchUpdatesView(t *testing.T) {
	sc := newTestCanvas(t, 400, 300)

	prev := TouchPair{{X: 100, Y: 100}, {X: 200, Y: 100}}
	cur := TouchPair{{X: 60, Y: 120}, {X: 260, Y: 120}}
	sc.ApplyPinch(prev, cur)

	v := sc.State().View
	assert.InDelta(t, 10, v.Pan.X, 1e-9, "midpoint travel pans")
	assert.InDelta(t, 20, v.Pan.Y, 1e-9)
	assert.InDelta(t, 2.0, v.Zoom, 1e-9, "spread ratio zooms")

	// Repeated zoom-in is clamped to the view bounds.
	for i := 0; i < 20; i++ {
		sc.ApplyPinch(prev, cur)
	}
	assert.Equal(t, geometry.MaxZoom, sc.State().View.Zoom)
}

func TestScrubbyZoomDirectionAndClamp(t *testing.T) {
	assert.Greater(t, ScrubbyZoom(1, 100), 1.0, "rightward drag zooms in")
	assert.Less(t, ScrubbyZoom(1, -100), 1.0, "leftward drag zooms out")
	assert.Equal(t, 1.0, ScrubbyZoom(1, 0))

	assert.Equal(t, geometry.MaxZoom, ScrubbyZoom(geometry.MaxZoom, 10000))
	assert.Equal(t, geometry.MinZoom, ScrubbyZoom(geometry.MinZoom, -10000))
}

func TestScrubbyZoomSymmetry(t *testing.T) {
	// A drag out and back lands on the starting zoom.
	z := ScrubbyZoom(ScrubbyZoom(2.0, 80), -80)
	assert.InDelta(t, 2.0, z, 1e-9)
}
