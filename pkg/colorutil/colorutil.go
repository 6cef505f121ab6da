// Package colorutil provides shared color utilities for the layout studio.
package colorutil

import (
	"image/color"
	"math"
)

// Axis colors: strokes drawn in one of these colors participate in
// vanishing-point snapping (one color per perspective axis).
var (
	AxisRed   = color.RGBA{R: 230, G: 57, B: 70, A: 255}
	AxisGreen = color.RGBA{R: 42, G: 157, B: 88, A: 255}
	AxisBlue  = color.RGBA{R: 38, G: 84, B: 224, A: 255}
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// SameRGB reports whether two colors have identical 8-bit RGB components,
// ignoring alpha. Used to match a stroke color against the axis colors.
func SameRGB(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar>>8 == br>>8 && ag>>8 == bg>>8 && ab>>8 == bb>>8
}

// Lum returns the luminosity of an RGB triple in [0,1] components.
func Lum(r, g, b float64) float64 {
	return 0.3*r + 0.59*g + 0.11*b
}

// Sat returns the saturation of an RGB triple in [0,1] components.
func Sat(r, g, b float64) float64 {
	return math.Max(r, math.Max(g, b)) - math.Min(r, math.Min(g, b))
}

// SetLum adjusts an RGB triple to the given luminosity, clipping the result
// back into gamut.
func SetLum(r, g, b, l float64) (float64, float64, float64) {
	d := l - Lum(r, g, b)
	return clipColor(r+d, g+d, b+d)
}

// SetSat adjusts an RGB triple to the given saturation, preserving the
// ordering of its components.
func SetSat(r, g, b, s float64) (float64, float64, float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))

	set := func(c float64) float64 {
		if maxC <= minC {
			return 0
		}
		return (c - minC) / (maxC - minC) * s
	}
	return set(r), set(g), set(b)
}

// clipColor clamps an RGB triple back into [0,1] while preserving its
// luminosity, per the W3C compositing model.
func clipColor(r, g, b float64) (float64, float64, float64) {
	l := Lum(r, g, b)
	minC := math.Min(r, math.Min(g, b))
	maxC := math.Max(r, math.Max(g, b))

	if minC < 0 {
		r = l + (r-l)*l/(l-minC)
		g = l + (g-l)*l/(l-minC)
		b = l + (b-l)*l/(l-minC)
	}
	if maxC > 1 {
		r = l + (r-l)*(1-l)/(maxC-l)
		g = l + (g-l)*(1-l)/(maxC-l)
		b = l + (b-l)*(1-l)/(maxC-l)
	}
	return r, g, b
}
