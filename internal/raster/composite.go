package raster

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Input is one element of the composite stack: a raster plus its
// presentation settings. Reference images set Fit so they are scaled into
// the canvas preserving aspect ratio; layer buffers are canvas-sized and
// drawn as-is.
type Input struct {
	Image   image.Image
	Opacity float64
	Mode    BlendMode
	Visible bool
	Fit     bool
}

// Composite renders the input stack bottom-to-top into a single RGBA
// surface of the given dimensions. Draw order and blend semantics are
// deterministic: each visible input is blended onto the accumulated result
// at its own opacity and mode.
func Composite(width, height int, inputs []Input) *image.RGBA {
	result := NewCanvas(width, height)
	for _, in := range inputs {
		if !in.Visible || in.Image == nil {
			continue
		}
		src := in.Image
		var offset image.Point
		if in.Fit {
			fitted, origin := fitInto(src, width, height)
			src = fitted
			offset = origin
		}
		blendOnto(result, src, offset, in.Mode, in.Opacity)
	}
	return result
}

// Merge composites src onto dst in place at full opacity using the given
// blend mode. dst and src must have identical dimensions; used by the
// merge-down layer operation.
func Merge(dst, src *image.RGBA, mode BlendMode) {
	blendOnto(dst, src, image.Point{}, mode, 1.0)
}

// FitRect computes the centered rectangle that fits an imgW x imgH image
// into a canvasW x canvasH canvas while preserving aspect ratio.
func FitRect(imgW, imgH, canvasW, canvasH int) image.Rectangle {
	if imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return image.Rectangle{}
	}
	scaleX := float64(canvasW) / float64(imgW)
	scaleY := float64(canvasH) / float64(imgH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	w := int(float64(imgW)*scale + 0.5)
	h := int(float64(imgH)*scale + 0.5)
	x := (canvasW - w) / 2
	y := (canvasH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// fitInto scales src into the canvas bounds preserving aspect ratio and
// returns the scaled image together with its top-left placement.
func fitInto(src image.Image, canvasW, canvasH int) (*image.RGBA, image.Point) {
	b := src.Bounds()
	rect := FitRect(b.Dx(), b.Dy(), canvasW, canvasH)
	if rect.Empty() {
		return NewCanvas(0, 0), image.Point{}
	}
	scaled := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, b, xdraw.Over, nil)
	return scaled, rect.Min
}

// blendOnto composites src onto dst at the given offset. The normal mode at
// full opacity takes the fast path through the stdlib compositor; all other
// combinations blend pixel by pixel.
func blendOnto(dst *image.RGBA, src image.Image, offset image.Point, mode BlendMode, opacity float64) {
	if opacity <= 0 {
		return
	}
	srcBounds := src.Bounds()
	if mode == BlendNormal && opacity >= 1.0 {
		target := image.Rect(offset.X, offset.Y, offset.X+srcBounds.Dx(), offset.Y+srcBounds.Dy())
		draw.Draw(dst, target, src, srcBounds.Min, draw.Over)
		return
	}

	dstBounds := dst.Bounds()
	for y := srcBounds.Min.Y; y < srcBounds.Max.Y; y++ {
		dy := y - srcBounds.Min.Y + offset.Y
		if dy < dstBounds.Min.Y || dy >= dstBounds.Max.Y {
			continue
		}
		for x := srcBounds.Min.X; x < srcBounds.Max.X; x++ {
			dx := x - srcBounds.Min.X + offset.X
			if dx < dstBounds.Min.X || dx >= dstBounds.Max.X {
				continue
			}
			_, _, _, sa := src.At(x, y).RGBA()
			if sa == 0 {
				continue
			}
			dst.SetRGBA(dx, dy, BlendPixel(dst.RGBAAt(dx, dy), src.At(x, y), mode, opacity))
		}
	}
}
