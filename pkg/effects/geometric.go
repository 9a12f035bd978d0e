package effects

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func geometricEffects() []Effect {
	return []Effect{
		{Category: CategoryGeometric, Name: "Mirror", Transform: mirror},
		{Category: CategoryGeometric, Name: "Kaleidoscope", Transform: kaleidoscope},
		{Category: CategoryGeometric, Name: "Rotate", Transform: rotate},
		{Category: CategoryGeometric, Name: "Mosaic", Transform: mosaic},
		{Category: CategoryGeometric, Name: "Wave", Transform: wave},
	}
}

// mirror reflects one half of the image onto the other, horizontally or
// vertically.
func mirror(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if rng.Bool(0.5) {
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < w/2; x++ {
				copy(row[4*(w-1-x):4*(w-x)], row[4*x:4*x+4])
			}
		}
		return buf
	}
	for y := 0; y < h/2; y++ {
		copy(img.Pix[(h-1-y)*img.Stride:(h-1-y)*img.Stride+4*w], img.Pix[y*img.Stride:y*img.Stride+4*w])
	}
	return buf
}

// kaleidoscope mirrors the top-left quadrant into the other three.
func kaleidoscope(buf *imagebuf.Buffer, _ *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		sy := y
		if y >= (h+1)/2 {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if x >= (w+1)/2 {
				sx = w - 1 - x
			}
			if sx == x && sy == y {
				continue
			}
			si := sy*img.Stride + 4*sx
			di := y*img.Stride + 4*x
			copy(img.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return buf
}

// rotate turns the image by a quarter, half or three-quarter turn. Quarter
// turns swap the dimensions.
func rotate(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	switch rng.IntN(3) {
	case 0:
		return replace(buf, imaging.Rotate90(img))
	case 1:
		return replace(buf, imaging.Rotate180(img))
	default:
		return replace(buf, imaging.Rotate270(img))
	}
}

// mosaic tiles a shrunken copy of the image n×n times.
func mosaic(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	n := rng.Range(2, 5)
	tw, th := max(1, w/n), max(1, h/n)
	tile := imaging.Resize(img, tw, th, imaging.Lanczos)

	dst := imaging.New(w, h, image.Black)
	for ty := 0; ty*th < h; ty++ {
		for tx := 0; tx*tw < w; tx++ {
			t := tile
			if (tx+ty)%2 == 1 && rng.Bool(0.5) {
				t = imaging.FlipH(tile)
			}
			dst = imaging.Paste(dst, t, image.Pt(tx*tw, ty*th))
		}
	}
	return replace(buf, dst)
}

// wave displaces rows sideways along a sine.
func wave(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	src := buf.Image()
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	amp := rng.FloatRange(0.01, 0.08) * float64(w)
	period := rng.FloatRange(0.1, 0.6) * float64(h)
	phase := rng.FloatRange(0, 2*math.Pi)
	for y := 0; y < h; y++ {
		shift := int(amp * math.Sin(2*math.Pi*float64(y)/period+phase))
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			sx := wrap(x+shift, w)
			copy(dstRow[4*x:4*x+4], srcRow[4*sx:4*sx+4])
		}
	}
	return replace(buf, dst)
}
