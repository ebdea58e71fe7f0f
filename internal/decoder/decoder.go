package decoder

import (
	"image"

	"github.com/junsooki/fbrelay/internal/wire"
)

// Decoder turns a relay response into an image.
type Decoder interface {
	Decode(f *wire.Frame) (*image.RGBA, error)
}
