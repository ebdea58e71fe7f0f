package encoder

import (
	"image"
	"image/jpeg"
	"io"
)

// JPEGEncoder encodes captures as JPEG.
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{quality: min(max(quality, 1), 100)}
}

func (e *JPEGEncoder) Encode(w io.Writer, img *image.RGBA) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: e.quality})
}
