package imagebuf

import (
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/matzehuels/glitchgen/pkg/errors"
)

// Format identifies an image encoding.
type Format string

// Known formats. Only PNG and JPEG can be written.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

// ExportExt returns the extension an image of format f is exported with
// by default: ".jpg" for JPEG, ".png" for everything else.
func (f Format) ExportExt() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// DefaultJPEGQuality matches imaging's default encoder quality.
const DefaultJPEGQuality = 95

// InputExtensions lists file extensions accepted by Open, lowercase with
// leading dot.
var InputExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// FormatForPath selects the export format from a file extension. Only
// ".png", ".jpg" and ".jpeg" (case-insensitive) are supported.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported export format %q (use .png, .jpg or .jpeg)", filepath.Ext(path))
	}
}

// IsInputPath reports whether path has an extension Open understands.
func IsInputPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode reads an image in any registered format.
func Decode(r io.Reader) (*Buffer, error) {
	b, err := decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceLoad, err, "decode image")
	}
	return b, nil
}

// Open decodes the image file at path.
func Open(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceLoad, err, "read %s", path)
	}
	b, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceLoad, err, "decode %s", path)
	}
	return b, nil
}

func decode(r io.Reader) (*Buffer, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := FromImage(img)
	b.format = Format(name)
	return b, nil
}

// EncodeOption configures encoding.
type EncodeOption func(*encodeOptions)

type encodeOptions struct {
	jpegQuality int
}

// WithJPEGQuality sets the JPEG quality (1-100). Ignored for PNG.
func WithJPEGQuality(q int) EncodeOption {
	return func(o *encodeOptions) { o.jpegQuality = q }
}

// Encode writes the buffer to w as PNG or JPEG.
func (b *Buffer) Encode(w io.Writer, f Format, opts ...EncodeOption) error {
	o := encodeOptions{jpegQuality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&o)
	}

	var format imaging.Format
	switch f {
	case PNG:
		format = imaging.PNG
	case JPEG:
		format = imaging.JPEG
	default:
		return errors.New(errors.ErrCodeUnsupportedFormat, "cannot encode %q (png or jpeg only)", f)
	}
	if err := imaging.Encode(w, b.Image(), format, imaging.JPEGQuality(o.jpegQuality)); err != nil {
		return errors.Wrap(errors.ErrCodeSourceSave, err, "encode %s", f)
	}
	return nil
}

// PNG returns the PNG encoding of the buffer.
func (b *Buffer) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Encode(&buf, PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes the buffer to path, choosing PNG or JPEG from the extension.
// Parent directories must already exist.
func (b *Buffer) Save(path string, opts ...EncodeOption) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := b.Encode(&buf, f, opts...); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeSourceSave, err, "write %s", path)
	}
	return nil
}
