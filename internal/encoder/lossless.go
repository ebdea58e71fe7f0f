package encoder

import (
	"image"
	"image/png"
	"io"

	"github.com/xfmoulet/qoi"
)

// PNGEncoder encodes captures as PNG.
type PNGEncoder struct{}

func (PNGEncoder) Encode(w io.Writer, img *image.RGBA) error {
	return png.Encode(w, img)
}

// QOIEncoder encodes captures as QOI, a fast lossless format suited to
// screen content.
type QOIEncoder struct{}

func (QOIEncoder) Encode(w io.Writer, img *image.RGBA) error {
	return qoi.Encode(w, img)
}
