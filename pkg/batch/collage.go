package batch

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// Compose lays out the first MaxCollageTiles variations on a
// CollageColumns-wide grid of cellW×cellH cells. The canvas is three cells
// in each direction; tiles that fall outside it are clipped. Failed
// variations leave their cell transparent.
func Compose(cellW, cellH int, variations []Variation, policy CollagePolicy) (*imagebuf.Buffer, error) {
	if err := errors.ValidateDimensions(cellW*CollageColumns, cellH*CollageColumns); err != nil {
		return nil, err
	}
	canvas := imaging.New(cellW*CollageColumns, cellH*CollageColumns, color.NRGBA{})

	for i, v := range variations {
		if i >= MaxCollageTiles {
			break
		}
		if v.Image == nil {
			continue
		}
		cell := image.Pt((i%CollageColumns)*cellW, (i/CollageColumns)*cellH)
		tile := v.Image.Image()
		tw, th := tile.Rect.Dx(), tile.Rect.Dy()

		if tw == cellW && th == cellH {
			canvas = imaging.Paste(canvas, tile, cell)
			continue
		}
		switch policy {
		case CollageReject:
			return nil, errors.New(errors.ErrCodeDimensionMismatch,
				"variation %d is %dx%d, collage cells are %dx%d", v.Index, tw, th, cellW, cellH)
		case CollageClip:
			clipped := imaging.Crop(tile, image.Rect(0, 0, min(tw, cellW), min(th, cellH)))
			canvas = imaging.Paste(canvas, clipped, cell)
		default:
			fitted := imaging.Fit(tile, cellW, cellH, imaging.Lanczos)
			off := image.Pt((cellW-fitted.Rect.Dx())/2, (cellH-fitted.Rect.Dy())/2)
			canvas = imaging.Paste(canvas, fitted, cell.Add(off))
		}
	}
	return imagebuf.Wrap(canvas), nil
}
