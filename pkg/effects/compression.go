package effects

import (
	"bytes"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func compressionEffects() []Effect {
	effect := func(name string, fn Transform) Effect {
		return Effect{Category: CategoryCompression, Name: name, Compression: true, Transform: fn}
	}
	return []Effect{
		effect("JPEG Crush", jpegCrush),
		effect("Bit Crush", bitCrush),
		effect("Macroblock", macroblock),
		effect("Downsample", downsample),
	}
}

// jpegCrush round-trips the image through a very low quality JPEG encoder,
// a few times so the artifacts compound.
func jpegCrush(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	passes := rng.Range(1, 4)
	img := buf.Image()
	for i := 0; i < passes; i++ {
		var enc bytes.Buffer
		if err := imaging.Encode(&enc, img, imaging.JPEG, imaging.JPEGQuality(rng.Range(1, 11))); err != nil {
			return buf
		}
		dec, err := imaging.Decode(&enc)
		if err != nil {
			return buf
		}
		img = imaging.Clone(dec)
	}
	return replace(buf, img)
}

// bitCrush drops the low bits of every color channel.
func bitCrush(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	keep := rng.Range(1, 4)
	mask := uint8(0xff << (8 - keep))
	forEachPixel(buf.Image(), func(_, _ int, p []uint8) {
		p[0] &= mask
		p[1] &= mask
		p[2] &= mask
	})
	return buf
}

// macroblock averages square blocks, like a heavily quantized DCT codec.
func macroblock(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	sizes := []int{4, 8, 16, 32}
	bs := sizes[rng.IntN(len(sizes))]
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()

	for by := 0; by < h; by += bs {
		for bx := 0; bx < w; bx += bs {
			x1, y1 := min(bx+bs, w), min(by+bs, h)
			var r, g, b, n int
			for y := by; y < y1; y++ {
				for x := bx; x < x1; x++ {
					i := y*img.Stride + 4*x
					r += int(img.Pix[i])
					g += int(img.Pix[i+1])
					b += int(img.Pix[i+2])
					n++
				}
			}
			ar, ag, ab := uint8(r/n), uint8(g/n), uint8(b/n)
			for y := by; y < y1; y++ {
				for x := bx; x < x1; x++ {
					i := y*img.Stride + 4*x
					img.Pix[i], img.Pix[i+1], img.Pix[i+2] = ar, ag, ab
				}
			}
		}
	}
	return buf
}

// downsample shrinks with a nearest-neighbour filter and scales back up,
// keeping the original dimensions.
func downsample(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	factor := rng.Range(4, 13)
	sw, sh := max(1, w/factor), max(1, h/factor)
	small := imaging.Resize(img, sw, sh, imaging.Box)
	return replace(buf, imaging.Resize(small, w, h, imaging.NearestNeighbor))
}
