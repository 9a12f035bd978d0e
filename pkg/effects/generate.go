package effects

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

// Generators draw a new picture the size of their input and ignore its
// pixels.
func generateEffects() []Effect {
	effect := func(name string, fn Transform) Effect {
		return Effect{Category: CategoryGenerate, Name: name, Generator: true, Transform: fn}
	}
	return []Effect{
		effect("Circles", circles),
		effect("Stripes", stripes),
		effect("Plasma", plasma),
	}
}

func circles(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	w, h := buf.Size()
	dc := gg.NewContext(w, h)
	dc.SetRGB(rng.Float64()*0.2, rng.Float64()*0.2, rng.Float64()*0.2)
	dc.Clear()

	n := rng.Range(8, 40)
	maxR := math.Max(4, float64(min(w, h))/3)
	for i := 0; i < n; i++ {
		dc.DrawCircle(rng.FloatRange(0, float64(w)), rng.FloatRange(0, float64(h)), rng.FloatRange(2, maxR))
		dc.SetRGBA(rng.Float64(), rng.Float64(), rng.Float64(), rng.FloatRange(0.3, 1))
		if rng.Bool(0.3) {
			dc.SetLineWidth(rng.FloatRange(1, 6))
			dc.Stroke()
		} else {
			dc.Fill()
		}
	}
	return replace(buf, imaging.Clone(dc.Image()))
}

func stripes(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	w, h := buf.Size()
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	// Rotate around the centre so diagonal stripes still cover the frame.
	diag := math.Hypot(float64(w), float64(h))
	dc.RotateAbout(gg.Radians(rng.FloatRange(0, 180)), float64(w)/2, float64(h)/2)
	width := rng.FloatRange(4, math.Max(5, diag/10))
	palette := [][3]float64{
		{rng.Float64(), rng.Float64(), rng.Float64()},
		{rng.Float64(), rng.Float64(), rng.Float64()},
		{rng.Float64(), rng.Float64(), rng.Float64()},
	}
	x0 := float64(w)/2 - diag/2
	y0 := float64(h)/2 - diag/2
	for i := 0; float64(i)*width < diag; i++ {
		c := palette[i%len(palette)]
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(x0+float64(i)*width, y0, width, diag)
		dc.Fill()
	}
	return replace(buf, imaging.Clone(dc.Image()))
}

// plasma renders a classic sum-of-sines plasma field.
func plasma(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	w, h := buf.Size()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	fx := rng.FloatRange(4, 16) / float64(max(1, w))
	fy := rng.FloatRange(4, 16) / float64(max(1, h))
	fr := rng.FloatRange(4, 12) / math.Hypot(float64(w), float64(h))
	p1, p2, p3 := rng.FloatRange(0, 2*math.Pi), rng.FloatRange(0, 2*math.Pi), rng.FloatRange(0, 2*math.Pi)
	cx, cy := rng.FloatRange(0, float64(w)), rng.FloatRange(0, float64(h))

	forEachPixel(dst, func(x, y int, p []uint8) {
		fxv, fyv := float64(x), float64(y)
		v := math.Sin(fxv*fx*math.Pi+p1) +
			math.Sin(fyv*fy*math.Pi+p2) +
			math.Sin(math.Hypot(fxv-cx, fyv-cy)*fr*math.Pi+p3)
		p[0] = clamp8(128 + 127*math.Sin(v*math.Pi))
		p[1] = clamp8(128 + 127*math.Sin(v*math.Pi+2*math.Pi/3))
		p[2] = clamp8(128 + 127*math.Sin(v*math.Pi+4*math.Pi/3))
		p[3] = 255
	})
	return replace(buf, dst)
}
