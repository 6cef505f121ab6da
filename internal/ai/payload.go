// Package ai defines the interface to the image synthesis/analysis
// collaborator and builds the structured payload the core emits to it. All
// network calls and prompt construction live behind the Collaborator
// interface in the host application; the core only assembles inputs and
// consumes returned images or text.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"layout-studio/internal/doc"
	"layout-studio/internal/raster"
	"layout-studio/pkg/geometry"
)

// Collaborator is implemented by the host application's AI service client.
type Collaborator interface {
	// Generate synthesizes a new image from the current sketch state.
	Generate(ctx context.Context, p Payload) (image.Image, error)
	// Analyze returns descriptive text for the current sketch state.
	Analyze(ctx context.Context, p Payload) (string, error)
}

// RefPayload is one attached style reference with its optional directional
// mask.
type RefPayload struct {
	Name  string
	Image image.Image
	Mask  image.Image
}

// LayerPayload carries one layer's flattened raster plus its metadata.
type LayerPayload struct {
	Name    string
	Image   *image.RGBA
	Refs    []RefPayload
	Anchors []doc.AnchorPoint
}

// Payload is the structured snapshot handed to the collaborator on every
// debounced change.
type Payload struct {
	Layers []LayerPayload

	// VanishingPoints in fractional coordinates (0-1 of canvas size).
	VanishingPoints []geometry.Point2D

	CanvasWidth  int
	CanvasHeight int

	// Bounds is the tight bounding box of all visible sketch content.
	// HasContent is false when every visible layer is fully transparent.
	Bounds     image.Rectangle
	HasContent bool

	LensTag string

	// GlobalRefURI is the visible global reference image as a PNG data
	// URI, or empty when hidden or absent.
	GlobalRefURI string
}

// BuildPayload assembles the emission payload from the document.
func BuildPayload(d *doc.Document) (Payload, error) {
	p := Payload{
		CanvasWidth:  d.Width(),
		CanvasHeight: d.Height(),
		LensTag:      d.LensTag,
	}

	for _, l := range d.Layers() {
		lp := LayerPayload{
			Name:  l.Name,
			Image: raster.CloneRGBA(l.Buffer),
		}
		for _, ref := range l.Refs {
			rp := RefPayload{Name: ref.Name, Image: ref.Image}
			if ref.Mask != nil {
				rp.Mask = ref.Mask
			}
			lp.Refs = append(lp.Refs, rp)
		}
		for _, a := range l.Anchors {
			lp.Anchors = append(lp.Anchors, *a)
		}
		p.Layers = append(p.Layers, lp)
	}

	w := float64(d.Width())
	h := float64(d.Height())
	for _, vp := range d.VanishingPoints() {
		p.VanishingPoints = append(p.VanishingPoints, geometry.Point2D{
			X: vp.Pos.X / w,
			Y: vp.Pos.Y / h,
		})
	}

	p.Bounds, p.HasContent = raster.ContentBounds(d.VisibleBuffers())

	if d.GlobalRef.Visible && d.GlobalRef.Image != nil {
		uri, err := DataURI(d.GlobalRef.Image)
		if err != nil {
			return p, fmt.Errorf("encode global reference: %w", err)
		}
		p.GlobalRefURI = uri
	}
	return p, nil
}

// DataURI encodes an image as a base64 PNG data URI.
func DataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
