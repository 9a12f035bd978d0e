package effects

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func colorEffects() []Effect {
	return []Effect{
		{Category: CategoryColor, Name: "Invert", Transform: invert},
		{Category: CategoryColor, Name: "Hue Shift", Transform: hueShift},
		{Category: CategoryColor, Name: "Saturation Boost", Transform: saturationBoost},
		{Category: CategoryColor, Name: "Contrast Punch", Transform: contrastPunch},
		{Category: CategoryColor, Name: "Channel Swap", Transform: channelSwap},
		{Category: CategoryColor, Name: "Posterize", Transform: posterize},
	}
}

func invert(buf *imagebuf.Buffer, _ *random.Source) *imagebuf.Buffer {
	return replace(buf, imaging.Invert(buf.Image()))
}

// hueShift rotates every pixel's hue by the same random angle in HSV space.
func hueShift(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	shift := rng.FloatRange(30, 330)
	img := imaging.AdjustFunc(buf.Image(), func(c color.NRGBA) color.NRGBA {
		h, s, v := colorful.Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
		}.Hsv()
		r, g, b := colorful.Hsv(math.Mod(h+shift, 360), s, v).Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: c.A}
	})
	return replace(buf, img)
}

func saturationBoost(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	return replace(buf, imaging.AdjustSaturation(buf.Image(), rng.FloatRange(50, 100)))
}

func contrastPunch(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	return replace(buf, imaging.AdjustContrast(buf.Image(), rng.FloatRange(30, 80)))
}

// channelSwap permutes the RGB channels. The identity permutation is
// rotated so the image always changes.
func channelSwap(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	perm := rng.Perm(3)
	if perm[0] == 0 && perm[1] == 1 && perm[2] == 2 {
		perm = []int{1, 2, 0}
	}
	var tmp [3]uint8
	forEachPixel(buf.Image(), func(_, _ int, p []uint8) {
		tmp[0], tmp[1], tmp[2] = p[0], p[1], p[2]
		p[0], p[1], p[2] = tmp[perm[0]], tmp[perm[1]], tmp[perm[2]]
	})
	return buf
}

func posterize(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	levels := rng.Range(2, 6)
	step := 255.0 / float64(levels-1)
	quant := func(v uint8) uint8 {
		return clamp8(math.Round(float64(v)/step) * step)
	}
	forEachPixel(buf.Image(), func(_, _ int, p []uint8) {
		p[0], p[1], p[2] = quant(p[0]), quant(p[1]), quant(p[2])
	})
	return buf
}
