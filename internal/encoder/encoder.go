package encoder

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
)

// Encoder writes a decoded capture in an image file format.
type Encoder interface {
	Encode(w io.Writer, img *image.RGBA) error
}

// ForPath picks an encoder from the file extension of path.
func ForPath(path string, quality int) (Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNGEncoder{}, nil
	case ".jpg", ".jpeg":
		return NewJPEGEncoder(quality), nil
	case ".qoi":
		return QOIEncoder{}, nil
	default:
		return nil, fmt.Errorf("no image encoder for %q", ext)
	}
}
