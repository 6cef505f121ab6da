package raster

import "image"

// ContentBounds scans the alpha channels of the given buffers and returns
// the minimal rectangle containing any non-transparent pixel. The bool
// result is false when every pixel of every buffer is fully transparent.
// Nil buffers are skipped; all buffers are assumed to share dimensions.
func ContentBounds(buffers []*image.RGBA) (image.Rectangle, bool) {
	minX, minY := -1, -1
	maxX, maxY := -1, -1

	for _, buf := range buffers {
		if buf == nil {
			continue
		}
		b := buf.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := buf.Pix[buf.PixOffset(b.Min.X, y) : buf.PixOffset(b.Max.X-1, y)+4]
			for x := 0; x < b.Dx(); x++ {
				if row[x*4+3] == 0 {
					continue
				}
				px := b.Min.X + x
				if minX < 0 {
					minX, minY, maxX, maxY = px, y, px, y
					continue
				}
				if px < minX {
					minX = px
				}
				if px > maxX {
					maxX = px
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if minX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
