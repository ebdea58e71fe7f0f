package capture

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/junsooki/fbrelay/internal/pixelformat"
	"github.com/junsooki/fbrelay/internal/wire"
)

// PreambleSize is the size of the geometry block a producer writes before its
// pixels: width, height and native format code, 4 bytes each.
const PreambleSize = 12

// Geometry is the frame description a producer emits ahead of its payload.
type Geometry struct {
	Width  uint32
	Height uint32
	Format int32
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d %s", g.Width, g.Height, pixelformat.Name(g.Format))
}

// ReadGeometry reads the producer preamble in width, height, format order.
func ReadGeometry(r io.Reader) (Geometry, error) {
	var buf [PreambleSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Geometry{}, fmt.Errorf("read preamble: %w", err)
	}
	return ParseGeometry(buf), nil
}

// ParseGeometry decodes a preamble already read in full.
func ParseGeometry(buf [PreambleSize]byte) Geometry {
	return Geometry{
		Width:  wire.ByteOrder.Uint32(buf[0:4]),
		Height: wire.ByteOrder.Uint32(buf[4:8]),
		Format: int32(wire.ByteOrder.Uint32(buf[8:12])),
	}
}

// WriteGeometry writes g in preamble form.
func WriteGeometry(w io.Writer, g Geometry) error {
	var buf [PreambleSize]byte
	wire.ByteOrder.PutUint32(buf[0:4], g.Width)
	wire.ByteOrder.PutUint32(buf[4:8], g.Height)
	wire.ByteOrder.PutUint32(buf[8:12], uint32(g.Format))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write preamble: %w", err)
	}
	return nil
}

// Frame represents a captured screen frame.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
}

// Geometry returns the preamble describing f.
func (f *Frame) Geometry() Geometry {
	b := f.Image.Bounds()
	return Geometry{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: pixelformat.RGBA8888,
	}
}

// WriteTo writes f the way a producer does: preamble, then tightly packed
// RGBA rows.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	g := f.Geometry()
	if err := WriteGeometry(w, g); err != nil {
		return 0, err
	}
	n := int64(PreambleSize)
	rowLen := int(g.Width) * 4
	for y := 0; y < int(g.Height); y++ {
		off := y * f.Image.Stride
		m, err := w.Write(f.Image.Pix[off : off+rowLen])
		n += int64(m)
		if err != nil {
			return n, fmt.Errorf("write row %d: %w", y, err)
		}
	}
	return n, nil
}
