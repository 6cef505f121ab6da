package stroke

import (
	"image"
	"image/color"
	"math"

	"layout-studio/internal/raster"
	"layout-studio/pkg/geometry"
)

// MarkerShape selects the stamp geometry for the marker tool.
type MarkerShape int

const (
	MarkerRect MarkerShape = iota
	MarkerCircle
)

// MarkerOptions configures the stamped marker renderer.
type MarkerOptions struct {
	Shape    MarkerShape
	Size     float64 // stamp edge length / diameter in canvas px
	Opacity  float64 // per-stamp opacity in [0,1]
	Rotation float64 // stamp rotation in degrees (rect shape)
	Color    color.RGBA
}

// StampedMarker approximates a textured brush by stamping a rotated
// rectangle or circle along the path at a spacing derived from the stamp
// size. All stamps of one stroke are drawn opaque into a scratch surface
// which is then composited once at the stamp opacity, so overlapping
// stamps do not accumulate darkness within the stroke.
func StampedMarker(dst *image.RGBA, pts []geometry.Point2D, opts MarkerOptions) {
	if len(pts) == 0 || opts.Size <= 0 {
		return
	}
	if opts.Opacity <= 0 {
		return
	}
	if opts.Opacity > 1 {
		opts.Opacity = 1
	}

	scratch := raster.NewCanvas(dst.Bounds().Dx(), dst.Bounds().Dy())
	solid := opts.Color
	solid.A = 255

	spacing := math.Max(1, opts.Size/3)
	stampAt := func(p geometry.Point2D) {
		switch opts.Shape {
		case MarkerCircle:
			dab(scratch, p, opts.Size/2, solid, paintOver)
		default:
			stampRect(scratch, p, opts.Size, opts.Rotation*math.Pi/180, solid)
		}
	}

	stampAt(pts[0])
	carry := 0.0
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dist := a.Distance(b)
		if dist == 0 {
			continue
		}
		for d := spacing - carry; d <= dist; d += spacing {
			stampAt(a.Lerp(b, d/dist))
		}
		carry = math.Mod(carry+dist, spacing)
	}

	// One elevated-alpha pass for the whole stroke.
	b := scratch.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := scratch.RGBAAt(x, y)
			if s.A == 0 {
				continue
			}
			dst.SetRGBA(x, y, raster.BlendPixel(dst.RGBAAt(x, y), s, raster.BlendNormal, opts.Opacity))
		}
	}
}

// stampRect fills a rotated square stamp centered on p.
func stampRect(dst *image.RGBA, p geometry.Point2D, size, radians float64, col color.RGBA) {
	half := size / 2
	cos := math.Cos(radians)
	sin := math.Sin(radians)

	// Conservative bounding box of the rotated square.
	extent := half * (math.Abs(cos) + math.Abs(sin))
	bounds := dst.Bounds()
	minX := int(math.Floor(p.X - extent))
	maxX := int(math.Ceil(p.X + extent))
	minY := int(math.Floor(p.Y - extent))
	maxY := int(math.Ceil(p.Y + extent))

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			// Rotate the pixel into stamp-local space.
			dx := float64(x) + 0.5 - p.X
			dy := float64(y) + 0.5 - p.Y
			lx := dx*cos + dy*sin
			ly := -dx*sin + dy*cos
			if lx >= -half && lx <= half && ly >= -half && ly <= half {
				dst.SetRGBA(x, y, col)
			}
		}
	}
}
