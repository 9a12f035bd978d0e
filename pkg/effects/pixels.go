package effects

import (
	"image"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// wrap forces x into [0, n).
func wrap(x, n int) int {
	if x < 0 {
		x %= n
		if x < 0 {
			x += n
		}
		return x
	}
	if x >= n {
		return x % n
	}
	return x
}

func clamp(v int, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// luma returns Rec. 601 luminance in [0, 255].
func luma(p []uint8) int {
	return (299*int(p[0]) + 587*int(p[1]) + 114*int(p[2])) / 1000
}

// replace swaps buf's pixels for img and returns buf. Effects that build a
// new image keep the caller's buffer (and its format) this way.
func replace(buf *imagebuf.Buffer, img *image.NRGBA) *imagebuf.Buffer {
	buf.Replace(img)
	return buf
}

// forEachPixel calls fn with the 4-byte RGBA slice of every pixel.
func forEachPixel(img *image.NRGBA, fn func(x, y int, p []uint8)) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < w; x++ {
			fn(x, y, row[4*x:4*x+4])
		}
	}
}
