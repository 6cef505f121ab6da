package doc

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"layout-studio/internal/raster"
)

// MinCanvasDim is the smallest canvas edge the resize pipeline accepts,
// enforced on both axes independently.
const MinCanvasDim = 200

// minCropDim rejects degenerate crop rectangles reachable through rapid or
// accidental drags.
const minCropDim = 4

// Resize rescales the document to new pixel dimensions. Every layer's
// raster is redrawn into the new size by scaling a backup of its pre-resize
// buffer (a full-canvas stretch, never a crop). Vanishing points are
// remapped by the same ratios; anchor points are fractional and stay put.
// A failure scaling one layer is logged and skipped so it cannot block the
// rest of the pipeline.
func (d *Document) Resize(width, height int) error {
	if width < MinCanvasDim {
		width = MinCanvasDim
	}
	if height < MinCanvasDim {
		height = MinCanvasDim
	}
	if width == d.width && height == d.height {
		return nil
	}

	rx := float64(width) / float64(d.width)
	ry := float64(height) / float64(d.height)

	for _, l := range d.layers {
		backup := raster.CloneRGBA(l.Buffer)
		scaled, err := scaleRGBA(backup, width, height)
		if err != nil {
			log.Warn().Err(err).Str("layer", l.Name).Msg("resize: skipping layer")
			// The layer still needs a canvas-sized buffer; fall back to a
			// blank one rather than leaving a mismatched raster.
			scaled = raster.NewCanvas(width, height)
		}
		l.Buffer = scaled
		l.history.reset(scaled)
	}

	d.rescaleVanishingPoints(rx, ry)
	d.width = width
	d.height = height
	d.changed()
	return nil
}

// Crop extracts the sub-rectangle from every layer raster and from the
// base/reference images; the rectangle's own dimensions become the new
// canvas size. Unlike Resize this is a literal sub-extraction with no
// stretching. Near-zero-area rectangles are rejected.
func (d *Document) Crop(rect image.Rectangle) error {
	rect = rect.Canon().Intersect(image.Rect(0, 0, d.width, d.height))
	if rect.Dx() < minCropDim || rect.Dy() < minCropDim {
		return ErrDegenerateCrop
	}
	if rect == image.Rect(0, 0, d.width, d.height) {
		// Cropping to the full canvas is a no-op on content.
		return nil
	}

	for _, l := range d.layers {
		// transform.Crop keeps the sub-rectangle at its original
		// coordinates; rebase so the buffer is anchored at the origin like
		// every other canvas-sized raster.
		l.Buffer = raster.ToRGBA(transform.Crop(l.Buffer, rect))
		l.history.reset(l.Buffer)
	}
	if d.GlobalRef.Image != nil {
		d.GlobalRef.Image = cropFitted(d.GlobalRef.Image, d.width, d.height, rect)
	}
	if d.EditBase.Image != nil {
		d.EditBase.Image = cropFitted(d.EditBase.Image, d.width, d.height, rect)
	}

	// Vanishing points translate into the cropped frame.
	for i := range d.vps {
		d.vps[i].Pos.X -= float64(rect.Min.X)
		d.vps[i].Pos.Y -= float64(rect.Min.Y)
	}

	d.width = rect.Dx()
	d.height = rect.Dy()
	d.changed()
	return nil
}

// cropFitted extracts the crop rectangle from a reference image as it
// appears on the canvas: the reference is first rendered at its fitted
// placement, then sub-extracted, so what the user framed is what remains.
func cropFitted(img image.Image, canvasW, canvasH int, rect image.Rectangle) image.Image {
	surface := raster.Composite(canvasW, canvasH, []raster.Input{
		{Image: img, Opacity: 1, Visible: true, Fit: true},
	})
	return raster.ToRGBA(transform.Crop(surface, rect))
}

// scaleRGBA stretches src to the given dimensions with linear
// interpolation.
func scaleRGBA(src *image.RGBA, width, height int) (*image.RGBA, error) {
	if src.Bounds().Dx() == 0 || src.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("scale: zero-sized source raster")
	}
	m, err := gocv.ImageToMatRGBA(src)
	if err != nil {
		return nil, fmt.Errorf("scale: convert to mat: %w", err)
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(m, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("scale: convert from mat: %w", err)
	}
	return raster.ToRGBA(out), nil
}
