package decoder

import (
	"fmt"
	"image"

	"github.com/junsooki/fbrelay/internal/pixelformat"
	"github.com/junsooki/fbrelay/internal/wire"
)

// RawDecoder unpacks raw pixels using the layout carried in the header.
// Channel bit offsets count from the least significant bit of the pixel's
// first byte.
type RawDecoder struct{}

func NewRawDecoder() *RawDecoder {
	return &RawDecoder{}
}

func (d *RawDecoder) Decode(f *wire.Frame) (*image.RGBA, error) {
	h := f.Header
	bpp := int(h.BPP / 8)
	if bpp < 1 || bpp > 4 || h.BPP%8 != 0 {
		return nil, fmt.Errorf("decode: unsupported bpp %d", h.BPP)
	}
	w, ht := int(h.Width), int(h.Height)
	if len(f.Payload) != w*ht*bpp {
		return nil, fmt.Errorf("decode: payload is %d bytes, want %d", len(f.Payload), w*ht*bpp)
	}

	desc := h.Descriptor()
	img := image.NewRGBA(image.Rect(0, 0, w, ht))
	for i := 0; i < w*ht; i++ {
		px := f.Payload[i*bpp : i*bpp+bpp]
		var v uint32
		for k, b := range px {
			v |= uint32(b) << (8 * k)
		}
		o := i * 4
		img.Pix[o+0] = channel(v, desc.Red, 0)
		img.Pix[o+1] = channel(v, desc.Green, 0)
		img.Pix[o+2] = channel(v, desc.Blue, 0)
		img.Pix[o+3] = channel(v, desc.Alpha, 0xff)
	}
	return img, nil
}

// channel extracts c from v and scales it to 8 bits. Absent channels read as
// missing.
func channel(v uint32, c pixelformat.Channel, missing uint8) uint8 {
	if c.Length == 0 || c.Length > 16 {
		return missing
	}
	full := uint32(1)<<c.Length - 1
	x := (v >> c.Offset) & full
	return uint8(x * 255 / full)
}
