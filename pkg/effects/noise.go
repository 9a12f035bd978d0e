package effects

import (
	"image"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func noiseEffects() []Effect {
	return []Effect{
		{Category: CategoryNoise, Name: "Gaussian Noise", Transform: gaussianNoise},
		{Category: CategoryNoise, Name: "Static Lines", Transform: staticLines},
		{Category: CategoryNoise, Name: "Dissolve", Transform: dissolve},
	}
}

func gaussianNoise(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	sigma := rng.FloatRange(10, 45)
	mono := rng.Bool(0.3)
	forEachPixel(buf.Image(), func(_, _ int, p []uint8) {
		if mono {
			n := rng.NormFloat64() * sigma
			p[0] = clamp8(float64(p[0]) + n)
			p[1] = clamp8(float64(p[1]) + n)
			p[2] = clamp8(float64(p[2]) + n)
			return
		}
		p[0] = clamp8(float64(p[0]) + rng.NormFloat64()*sigma)
		p[1] = clamp8(float64(p[1]) + rng.NormFloat64()*sigma)
		p[2] = clamp8(float64(p[2]) + rng.NormFloat64()*sigma)
	})
	return buf
}

// staticLines replaces random scanlines with grey static.
func staticLines(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	lines := max(1, h/rng.Range(6, 20))
	for i := 0; i < lines; i++ {
		y := rng.IntN(h)
		thick := rng.Range(1, 4)
		for dy := 0; dy < thick && y+dy < h; dy++ {
			row := img.Pix[(y+dy)*img.Stride:]
			for x := 0; x < w; x++ {
				v := rng.Byte()
				row[4*x], row[4*x+1], row[4*x+2] = v, v, v
			}
		}
	}
	return buf
}

// dissolve scatters each pixel by a normally distributed offset.
func dissolve(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	src := buf.Image()
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	mag := rng.FloatRange(2, 9)
	for y := 0; y < h; y++ {
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			sx := wrap(x+int(rng.NormFloat64()*mag), w)
			sy := wrap(y+int(rng.NormFloat64()*mag), h)
			si := sy*src.Stride + 4*sx
			copy(dstRow[4*x:4*x+4], src.Pix[si:si+4])
		}
	}
	return replace(buf, dst)
}
