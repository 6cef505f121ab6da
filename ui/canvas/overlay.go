package canvas

import (
	"image"
	"image/color"
)

// Overlay palette. Everything here is drawn in screen space on top of the
// transformed document preview.
var (
	backdropColor = color.RGBA{R: 46, G: 46, B: 50, A: 255}
	frameColor    = color.RGBA{R: 90, G: 90, B: 96, A: 255}
	guideFaint    = color.RGBA{R: 130, G: 170, B: 255, A: 80}
	guideStrong   = color.RGBA{R: 130, G: 170, B: 255, A: 200}
	vpFill        = color.RGBA{R: 130, G: 170, B: 255, A: 255}
	vpActiveFill  = color.RGBA{R: 255, G: 179, B: 0, A: 255}
	snapColor     = color.RGBA{R: 255, G: 179, B: 0, A: 200}
	cropDimColor  = color.RGBA{R: 0, G: 0, B: 0, A: 140}
	cropLineColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	handleColor   = color.RGBA{R: 230, G: 230, B: 235, A: 255}
)

// overRGBA composites src over dst with 8-bit source-over alpha.
func overRGBA(dst, src color.RGBA) color.RGBA {
	if src.A == 255 {
		return src
	}
	if src.A == 0 {
		return dst
	}
	sa := uint32(src.A)
	da := uint32(255 - src.A)
	return color.RGBA{
		R: uint8((uint32(src.R)*sa + uint32(dst.R)*da) / 255),
		G: uint8((uint32(src.G)*sa + uint32(dst.G)*da) / 255),
		B: uint8((uint32(src.B)*sa + uint32(dst.B)*da) / 255),
		A: uint8(sa + uint32(dst.A)*da/255),
	}
}

// blendPx alpha-blends col into the pixel at (x, y), clipped to the image.
func blendPx(out *image.RGBA, x, y int, col color.RGBA) {
	b := out.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	out.SetRGBA(x, y, overRGBA(out.RGBAAt(x, y), col))
}

// drawLinePx draws a thick line with Bresenham stepping.
func drawLinePx(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	dy := y2 - y1
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				blendPx(out, x1+s, y1+t, col)
			}
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawCirclePx draws a circle outline, or a filled disc.
func drawCirclePx(out *image.RGBA, cx, cy int, r float64, col color.RGBA, filled bool) {
	if r <= 0 {
		return
	}
	r2 := r * r
	inner2 := (r - 2) * (r - 2)
	minX, maxX := cx-int(r)-1, cx+int(r)+1
	minY, maxY := cy-int(r)-1, cy+int(r)+1
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			dist2 := dx*dx + dy*dy
			if dist2 > r2 {
				continue
			}
			if filled || dist2 >= inner2 {
				blendPx(out, x, y, col)
			}
		}
	}
}

// drawDashedRectPx outlines a screen-space rectangle with alternating
// dashes, the live crop-selection look.
func drawDashedRectPx(out *image.RGBA, r image.Rectangle, col color.RGBA) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		if (x+r.Min.Y)%6 < 3 {
			blendPx(out, x, r.Min.Y, col)
		}
		if (x+r.Max.Y)%6 < 3 {
			blendPx(out, x, r.Max.Y, col)
		}
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		if (r.Min.X+y)%6 < 3 {
			blendPx(out, r.Min.X, y, col)
		}
		if (r.Max.X+y)%6 < 3 {
			blendPx(out, r.Max.X, y, col)
		}
	}
}

// darkenOutsidePx dims everything outside the rectangle so the crop
// preview stands out.
func darkenOutsidePx(out *image.RGBA, keep image.Rectangle) {
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (image.Point{X: x, Y: y}).In(keep) {
				continue
			}
			out.SetRGBA(x, y, overRGBA(out.RGBAAt(x, y), cropDimColor))
		}
	}
}

// drawHandlePx draws a resize grab handle as a small filled square.
func drawHandlePx(out *image.RGBA, cx, cy int) {
	const half = 4
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			blendPx(out, x, y, handleColor)
		}
	}
}
