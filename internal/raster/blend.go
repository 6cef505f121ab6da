// Package raster provides raster buffers, blend modes, and layer compositing.
package raster

import (
	"fmt"
	"image/color"
	"math"

	"layout-studio/pkg/colorutil"
)

// BlendMode specifies how a layer is composited onto what lies beneath it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
)

var blendNames = [...]string{
	BlendNormal:     "normal",
	BlendMultiply:   "multiply",
	BlendScreen:     "screen",
	BlendOverlay:    "overlay",
	BlendDarken:     "darken",
	BlendLighten:    "lighten",
	BlendColorDodge: "color-dodge",
	BlendColorBurn:  "color-burn",
	BlendHardLight:  "hard-light",
	BlendSoftLight:  "soft-light",
	BlendDifference: "difference",
	BlendExclusion:  "exclusion",
	BlendHue:        "hue",
	BlendSaturation: "saturation",
	BlendColor:      "color",
	BlendLuminosity: "luminosity",
)

// BlendModes lists every mode in display order.
func BlendModes() []BlendMode {
	modes := make([]BlendMode, len(blendNames))
	for i := range blendNames {
		modes[i] = BlendMode(i)
	}
	return modes
}

func (m BlendMode) String() string {
	if int(m) < 0 || int(m) >= len(blendNames) {
		return "unknown"
	}
	return blendNames[m]
}

// ParseBlendMode returns the mode with the given name.
func ParseBlendMode(name string) (BlendMode, error) {
	for i, n := range blendNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", name)
}

// MarshalText implements encoding.TextMarshaler so modes persist as names.
func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(text []byte) error {
	mode, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// BlendPixel composites src over dst using the given blend mode and an extra
// opacity factor in [0,1]. Colors are blended in non-premultiplied [0,1]
// space and the result is alpha-composited onto dst.
func BlendPixel(dst, src color.Color, mode BlendMode, opacity float64) color.RGBA {
	sr, sg, sb, sa := src.RGBA()
	dr, dg, db, da := dst.RGBA()

	sf := [4]float64{float64(sr) / 65535.0, float64(sg) / 65535.0, float64(sb) / 65535.0, float64(sa) / 65535.0}
	df := [4]float64{float64(dr) / 65535.0, float64(dg) / 65535.0, float64(db) / 65535.0, float64(da) / 65535.0}

	// Un-premultiply so the blend formulas see plain color values.
	if sf[3] > 0 {
		sf[0] /= sf[3]
		sf[1] /= sf[3]
		sf[2] /= sf[3]
	}
	if df[3] > 0 {
		df[0] /= df[3]
		df[1] /= df[3]
		df[2] /= df[3]
	}

	rf := blendRGB(df, sf, mode)

	alpha := sf[3] * opacity
	finalA := alpha + df[3]*(1-alpha)
	var finalR, finalG, finalB float64
	if finalA > 0 {
		// Backdrop contributes through its own alpha where the source is
		// absent; the blended color applies only where both overlap.
		finalR = (rf[0]*alpha*df[3] + sf[0]*alpha*(1-df[3]) + df[0]*df[3]*(1-alpha)) / finalA
		finalG = (rf[1]*alpha*df[3] + sf[1]*alpha*(1-df[3]) + df[1]*df[3]*(1-alpha)) / finalA
		finalB = (rf[2]*alpha*df[3] + sf[2]*alpha*(1-df[3]) + df[2]*df[3]*(1-alpha)) / finalA
	}

	return color.RGBA{
		R: uint8(clamp(finalR, 0, 1)*255 + 0.5),
		G: uint8(clamp(finalG, 0, 1)*255 + 0.5),
		B: uint8(clamp(finalB, 0, 1)*255 + 0.5),
		A: uint8(clamp(finalA, 0, 1)*255 + 0.5),
	}
}

// blendRGB applies the blend formula channel-wise (separable modes) or on
// the whole triple (hue/saturation/color/luminosity). df and sf are
// non-premultiplied backdrop and source values.
func blendRGB(df, sf [4]float64, mode BlendMode) [3]float64 {
	var rf [3]float64

	switch mode {
	case BlendNormal:
		rf[0], rf[1], rf[2] = sf[0], sf[1], sf[2]

	case BlendMultiply:
		for i := 0; i < 3; i++ {
			rf[i] = sf[i] * df[i]
		}

	case BlendScreen:
		for i := 0; i < 3; i++ {
			rf[i] = 1 - (1-sf[i])*(1-df[i])
		}

	case BlendOverlay:
		for i := 0; i < 3; i++ {
			if df[i] < 0.5 {
				rf[i] = 2 * sf[i] * df[i]
			} else {
				rf[i] = 1 - 2*(1-sf[i])*(1-df[i])
			}
		}

	case BlendDarken:
		for i := 0; i < 3; i++ {
			rf[i] = math.Min(sf[i], df[i])
		}

	case BlendLighten:
		for i := 0; i < 3; i++ {
			rf[i] = math.Max(sf[i], df[i])
		}

	case BlendColorDodge:
		for i := 0; i < 3; i++ {
			switch {
			case df[i] == 0:
				rf[i] = 0
			case sf[i] >= 1:
				rf[i] = 1
			default:
				rf[i] = math.Min(1, df[i]/(1-sf[i]))
			}
		}

	case BlendColorBurn:
		for i := 0; i < 3; i++ {
			switch {
			case df[i] >= 1:
				rf[i] = 1
			case sf[i] == 0:
				rf[i] = 0
			default:
				rf[i] = 1 - math.Min(1, (1-df[i])/sf[i])
			}
		}

	case BlendHardLight:
		for i := 0; i < 3; i++ {
			if sf[i] < 0.5 {
				rf[i] = 2 * sf[i] * df[i]
			} else {
				rf[i] = 1 - 2*(1-sf[i])*(1-df[i])
			}
		}

	case BlendSoftLight:
		for i := 0; i < 3; i++ {
			if sf[i] <= 0.5 {
				rf[i] = df[i] - (1-2*sf[i])*df[i]*(1-df[i])
			} else {
				var d float64
				if df[i] <= 0.25 {
					d = ((16*df[i]-12)*df[i] + 4) * df[i]
				} else {
					d = math.Sqrt(df[i])
				}
				rf[i] = df[i] + (2*sf[i]-1)*(d-df[i])
			}
		}

	case BlendDifference:
		for i := 0; i < 3; i++ {
			rf[i] = math.Abs(sf[i] - df[i])
		}

	case BlendExclusion:
		for i := 0; i < 3; i++ {
			rf[i] = sf[i] + df[i] - 2*sf[i]*df[i]
		}

	case BlendHue:
		r, g, b := colorutil.SetSat(sf[0], sf[1], sf[2], colorutil.Sat(df[0], df[1], df[2]))
		rf[0], rf[1], rf[2] = colorutil.SetLum(r, g, b, colorutil.Lum(df[0], df[1], df[2]))

	case BlendSaturation:
		r, g, b := colorutil.SetSat(df[0], df[1], df[2], colorutil.Sat(sf[0], sf[1], sf[2]))
		rf[0], rf[1], rf[2] = colorutil.SetLum(r, g, b, colorutil.Lum(df[0], df[1], df[2]))

	case BlendColor:
		rf[0], rf[1], rf[2] = colorutil.SetLum(sf[0], sf[1], sf[2], colorutil.Lum(df[0], df[1], df[2]))

	case BlendLuminosity:
		rf[0], rf[1], rf[2] = colorutil.SetLum(df[0], df[1], df[2], colorutil.Lum(sf[0], sf[1], sf[2]))

	default:
		rf[0], rf[1], rf[2] = sf[0], sf[1], sf[2]
	}

	return rf
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
