package effects

import (
	"image"
	"sort"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func corruptionEffects() []Effect {
	effect := func(name string, fn Transform) Effect {
		return Effect{Category: CategoryCorruption, Name: name, Corruption: true, Transform: fn}
	}
	return []Effect{
		effect("Byte Rot", byteRot),
		effect("Scanline Shift", scanlineShift),
		effect("Pixel Sort", pixelSort),
		effect("Channel Drift", channelDrift),
		effect("Block Shuffle", blockShuffle),
	}
}

// byteRot overwrites short runs of color bytes with random data. Alpha is
// left alone so the image stays opaque where it was.
func byteRot(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	runs := max(1, w*h/rng.Range(200, 800))
	for i := 0; i < runs; i++ {
		y := rng.IntN(h)
		x := rng.IntN(w)
		length := rng.Range(1, max(2, w/8))
		for k := 0; k < length && x+k < w; k++ {
			p := img.Pix[y*img.Stride+4*(x+k):]
			p[rng.IntN(3)] = rng.Byte()
		}
	}
	return buf
}

// scanlineShift displaces horizontal bands sideways with a per-band skew.
func scanlineShift(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	src := buf.Image()
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	bandHeight := rng.Range(4, 24)

	offset, skew, start := 0, 0.0, 0
	for y := 0; y < h; y++ {
		if rng.IntN(bandHeight) == 0 {
			offset = int(rng.NormFloat64() * float64(w) / 10)
			skew = rng.NormFloat64() * 0.2
			start = y
		}
		shift := offset + int(skew*float64(y-start))
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			sx := wrap(x+shift, w)
			copy(dstRow[4*x:4*x+4], srcRow[4*sx:4*sx+4])
		}
	}
	return replace(buf, dst)
}

// pixelSort sorts runs of pixels brighter than a threshold by luminance,
// along rows.
func pixelSort(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	threshold := rng.Range(40, 180)
	descending := rng.Bool(0.5)

	type px struct {
		l int
		c [4]uint8
	}
	run := make([]px, 0, w)
	flush := func(row []uint8, end int) {
		if len(run) > 1 {
			sort.SliceStable(run, func(i, j int) bool {
				if descending {
					return run[i].l > run[j].l
				}
				return run[i].l < run[j].l
			})
			start := end - len(run)
			for k, p := range run {
				copy(row[4*(start+k):], p.c[:])
			}
		}
		run = run[:0]
	}

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < w; x++ {
			p := row[4*x : 4*x+4]
			l := luma(p)
			if l < threshold {
				flush(row, x)
				continue
			}
			run = append(run, px{l: l, c: [4]uint8{p[0], p[1], p[2], p[3]}})
		}
		flush(row, w)
	}
	return buf
}

// channelDrift offsets the red and blue channels horizontally in opposite
// directions, with a slowly wandering lag per scanline.
func channelDrift(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	src := buf.Image()
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)

	base := rng.Range(3, max(4, w/20))
	lag := 0.0
	for y := 0; y < h; y++ {
		lag += rng.NormFloat64() * 0.5
		off := base + int(lag)
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			r := srcRow[4*wrap(x+off, w)]
			b := srcRow[4*wrap(x-off, w)+2]
			i := 4 * x
			dstRow[i] = r
			dstRow[i+1] = srcRow[i+1]
			dstRow[i+2] = b
			dstRow[i+3] = srcRow[i+3]
		}
	}
	return replace(buf, dst)
}

// blockShuffle cuts the image into horizontal strips and swaps random pairs.
func blockShuffle(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer {
	img := buf.Image()
	h := img.Rect.Dy()
	strips := clamp(rng.Range(6, 24), 2, max(2, h))
	stripH := max(1, h/strips)
	rowBytes := 4 * img.Rect.Dx()
	tmp := make([]uint8, rowBytes)

	swaps := rng.Range(1, strips)
	for i := 0; i < swaps; i++ {
		a, b := rng.IntN(strips), rng.IntN(strips)
		if a == b {
			continue
		}
		for k := 0; k < stripH; k++ {
			ya, yb := a*stripH+k, b*stripH+k
			if ya >= h || yb >= h {
				break
			}
			ra := img.Pix[ya*img.Stride : ya*img.Stride+rowBytes]
			rb := img.Pix[yb*img.Stride : yb*img.Stride+rowBytes]
			copy(tmp, ra)
			copy(ra, rb)
			copy(rb, tmp)
		}
	}
	return buf
}
