package doc

import (
	"image"
	"image/color"

	"layout-studio/internal/raster"
)

// Layer is a named raster drawing surface with its own visibility, opacity,
// and blend mode. Its buffer always matches the document's current canvas
// dimensions; the resize/crop pipeline keeps that invariant.
type Layer struct {
	ID      int
	Name    string
	Visible bool
	Opacity float64
	Blend   raster.BlendMode

	// Buffer is owned exclusively by the document; the interaction layer
	// draws into it only between BeginStroke and CommitStroke.
	Buffer *image.RGBA

	// Refs holds uploaded style-reference images in attachment order.
	Refs []*StyleRef

	// Anchors holds the character position markers placed on this layer.
	Anchors []*AnchorPoint

	history *history
}

// newLayer allocates a blank layer and seeds its history with the blank
// state.
func newLayer(id int, name string, width, height int) *Layer {
	buf := raster.NewCanvas(width, height)
	return &Layer{
		ID:      id,
		Name:    name,
		Visible: true,
		Opacity: 1.0,
		Blend:   raster.BlendNormal,
		Buffer:  buf,
		history: newHistory(buf),
	}
}

// CanUndo reports whether the layer has an undo step available.
func (l *Layer) CanUndo() bool { return l.history.canUndo() }

// CanRedo reports whether the layer has a redo step available.
func (l *Layer) CanRedo() bool { return l.history.canRedo() }

// HistoryDepth returns the number of snapshots currently held.
func (l *Layer) HistoryDepth() int { return l.history.depth() }

// StyleRef is an uploaded reference image defining character design or art
// style for a layer, optionally paired with a painted directional mask
// (front/side/back encoded as red/green/blue). The image is immutable once
// loaded; only the mask may be replaced.
type StyleRef struct {
	Name  string
	Image image.Image
	Mask  *image.RGBA
}

// AnchorPoint marks where a named character is located in the scene.
// Position and radius are fractional (percent of canvas width/height) so
// they survive canvas resizes without remapping.
type AnchorPoint struct {
	Name   string     `json:"name"`
	X      float64    `json:"x"`      // 0-100, percent of canvas width
	Y      float64    `json:"y"`      // 0-100, percent of canvas height
	Radius float64    `json:"radius"` // percent of canvas width
	Color  color.RGBA `json:"color"`
}

// DefaultAnchorRadius is the initial influence radius, as a percent of
// canvas width.
const DefaultAnchorRadius = 8.0

// anchorPalette cycles through distinct marker colors as points are placed.
var anchorPalette = []color.RGBA{
	{R: 255, G: 99, B: 71, A: 255},
	{R: 65, G: 105, B: 225, A: 255},
	{R: 60, G: 179, B: 113, A: 255},
	{R: 238, G: 130, B: 238, A: 255},
	{R: 255, G: 165, B: 0, A: 255},
}

// PixelPos resolves the anchor's fractional position to pixel coordinates
// on a canvas of the given size.
func (a *AnchorPoint) PixelPos(width, height int) (float64, float64) {
	return a.X / 100 * float64(width), a.Y / 100 * float64(height)
}

// PixelRadius resolves the fractional influence radius against the canvas
// width.
func (a *AnchorPoint) PixelRadius(width int) float64 {
	return a.Radius / 100 * float64(width)
}
