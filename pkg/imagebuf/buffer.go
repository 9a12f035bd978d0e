// Package imagebuf provides the owned pixel buffer every effect consumes and
// produces.
//
// A [Buffer] wraps an [image.NRGBA] anchored at the origin together with the
// format it was decoded from. Buffers are never shared: effects either
// mutate the buffer they are given and return it, or return a fresh buffer
// that replaces the caller's reference. The replaced buffer is released
// exactly once by whoever performed the replacement (the glitch pipeline or
// the engine session); releasing twice or touching a released buffer panics.
//
// # Decoding and Encoding
//
// [Open] and [Decode] accept PNG, JPEG, GIF, BMP, TIFF and WebP input.
// [Buffer.Save] and [Buffer.Encode] write PNG or JPEG only; the format is
// chosen from the target extension by [FormatForPath] and anything else is
// an UNSUPPORTED_FORMAT error.
package imagebuf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Buffer is an owned, mutable NRGBA pixel buffer.
type Buffer struct {
	img      *image.NRGBA
	format   Format
	released bool
}

// New returns an opaque black buffer of the given size.
func New(width, height int) *Buffer {
	return Filled(width, height, color.NRGBA{A: 255})
}

// Filled returns a buffer of the given size filled with c.
func Filled(width, height int, c color.Color) *Buffer {
	return &Buffer{img: imaging.New(width, height, c), format: PNG}
}

// FromImage copies img into a new buffer.
func FromImage(img image.Image) *Buffer {
	return &Buffer{img: imaging.Clone(img), format: PNG}
}

// Wrap takes ownership of img without copying when it is already anchored
// at the origin. The caller must not retain img.
func Wrap(img *image.NRGBA) *Buffer {
	if img.Rect.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	return &Buffer{img: img, format: PNG}
}

// Image returns the underlying pixels. The returned image is owned by the
// buffer and is only valid until the next Replace or Release.
func (b *Buffer) Image() *image.NRGBA {
	b.mustLive()
	return b.img
}

// Replace swaps the pixel storage for img, which may have different
// dimensions. The format is kept.
func (b *Buffer) Replace(img *image.NRGBA) {
	b.mustLive()
	if img.Rect.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	b.img = img
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.Image().Rect.Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.Image().Rect.Dy() }

// Bounds returns the buffer rectangle, always anchored at (0, 0).
func (b *Buffer) Bounds() image.Rectangle { return b.Image().Rect }

// Size returns width and height.
func (b *Buffer) Size() (int, int) {
	r := b.Bounds()
	return r.Dx(), r.Dy()
}

// Format returns the format the buffer was decoded from (PNG for buffers
// created in memory).
func (b *Buffer) Format() Format { return b.format }

// SetFormat records the preferred persistence format.
func (b *Buffer) SetFormat(f Format) { b.format = f }

// Clone returns a deep copy that shares nothing with b.
func (b *Buffer) Clone() *Buffer {
	src := b.Image()
	dst := image.NewNRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Src)
	return &Buffer{img: dst, format: b.format}
}

// Equal reports whether both buffers have identical dimensions and pixels.
func (b *Buffer) Equal(other *Buffer) bool {
	x, y := b.Image(), other.Image()
	if x.Rect.Dx() != y.Rect.Dx() || x.Rect.Dy() != y.Rect.Dy() {
		return false
	}
	rowLen := x.Rect.Dx() * 4
	for row := 0; row < x.Rect.Dy(); row++ {
		xi, yi := row*x.Stride, row*y.Stride
		if !bytes.Equal(x.Pix[xi:xi+rowLen], y.Pix[yi:yi+rowLen]) {
			return false
		}
	}
	return true
}

// Release frees the pixel data. A buffer must be released at most once.
func (b *Buffer) Release() {
	if b.released {
		panic("imagebuf: buffer released twice")
	}
	b.released = true
	b.img = nil
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.released }

// String implements fmt.Stringer for log output.
func (b *Buffer) String() string {
	if b.released {
		return "Buffer(released)"
	}
	return fmt.Sprintf("Buffer(%dx%d %s)", b.img.Rect.Dx(), b.img.Rect.Dy(), b.format)
}

func (b *Buffer) mustLive() {
	if b.released {
		panic("imagebuf: use of released buffer")
	}
}
