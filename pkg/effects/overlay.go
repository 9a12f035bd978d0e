package effects

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func overlayEffects() []Effect {
	return []Effect{
		{Category: CategoryOverlay, Name: "Error Text", Transform: errorText},
		{Category: CategoryOverlay, Name: "Scan Bars", Transform: scanBars},
	}
}

var errorMessages = []string{
	"FATAL EXCEPTION 0x%08X",
	"SEGMENTATION FAULT AT 0x%08X",
	"CRC MISMATCH IN BLOCK %d",
	"UNEXPECTED EOF AT OFFSET %d",
	"BAD SECTOR %d",
	"STACK OVERFLOW 0x%08X",
	"HUFFMAN TABLE CORRUPT (%d)",
	"ERR_PIXEL_UNDERRUN %d",
}

// errorText stamps fake system error messages onto the image.
func errorText(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	face := basicfont.Face7x13
	const charH = 13

	lines := rng.Range(1, 6)
	for i := 0; i < lines; i++ {
		msg := fmt.Sprintf(errorMessages[rng.IntN(len(errorMessages))], rng.IntN(1<<30))
		c := color.NRGBA{A: 255}
		switch rng.IntN(3) {
		case 0:
			c.R, c.G, c.B = 255, 255, 255
		case 1:
			c.R = 255
		default:
			c.G = 255
		}
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(rng.IntN(max(1, w/2)), rng.IntN(max(1, h))+charH-2),
		}
		d.DrawString(msg)
	}
	return buf
}

// scanBars draws translucent horizontal bars, like a failing CRT.
func scanBars(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	dc := gg.NewContextForImage(img)

	bars := rng.Range(2, 9)
	for i := 0; i < bars; i++ {
		y := rng.FloatRange(0, float64(h))
		bh := rng.FloatRange(1, max(2, float64(h)/12))
		dc.SetRGBA(rng.Float64(), rng.Float64(), rng.Float64(), rng.FloatRange(0.25, 0.7))
		dc.DrawRectangle(0, y, float64(w), bh)
		dc.Fill()
	}

	// Fine scanlines across the whole frame.
	dc.SetRGBA(0, 0, 0, 0.2)
	for y := 0; y < h; y += 3 {
		dc.DrawRectangle(0, float64(y), float64(w), 1)
	}
	dc.Fill()

	return replace(buf, imaging.Clone(dc.Image()))
}
