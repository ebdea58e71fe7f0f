// Package wire defines the fixed-layout raw image header sent ahead of every
// captured payload.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/junsooki/fbrelay/internal/pixelformat"
)

// Version identifies the header layout. Bump it whenever the layout changes;
// consumers select their decoder from it.
const Version = 1

// HeaderSize is the encoded size of a Header: 13 packed uint32 fields.
const HeaderSize = 13 * 4

// ByteOrder is the order of every header field. Producer and consumer share a
// host, so the relay speaks host-native order.
var ByteOrder = binary.NativeEndian

// ErrTooLarge is returned when a frame's payload size cannot be expressed in
// the 32-bit size field.
var ErrTooLarge = errors.New("wire: payload size exceeds 32 bits")

// Header describes the payload that follows it on the wire.
type Header struct {
	Version     uint32
	BPP         uint32
	Size        uint32
	Width       uint32
	Height      uint32
	RedOffset   uint32
	RedLength   uint32
	BlueOffset  uint32
	BlueLength  uint32
	GreenOffset uint32
	GreenLength uint32
	AlphaOffset uint32
	AlphaLength uint32
}

// NewHeader builds the header for a width x height frame in format d. The
// payload size is derived from the format's bytes per pixel.
func NewHeader(width, height uint32, d pixelformat.Descriptor) (Header, error) {
	size := uint64(width) * uint64(height) * uint64(d.BytesPerPixel())
	if size > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: %dx%d at %d bpp", ErrTooLarge, width, height, d.BitsPerPixel)
	}
	return Header{
		Version:     Version,
		BPP:         d.BitsPerPixel,
		Size:        uint32(size),
		Width:       width,
		Height:      height,
		RedOffset:   d.Red.Offset,
		RedLength:   d.Red.Length,
		BlueOffset:  d.Blue.Offset,
		BlueLength:  d.Blue.Length,
		GreenOffset: d.Green.Offset,
		GreenLength: d.Green.Length,
		AlphaOffset: d.Alpha.Offset,
		AlphaLength: d.Alpha.Length,
	}, nil
}

// Descriptor returns the pixel layout the header carries.
func (h Header) Descriptor() pixelformat.Descriptor {
	return pixelformat.Descriptor{
		BitsPerPixel: h.BPP,
		Red:          pixelformat.Channel{Offset: h.RedOffset, Length: h.RedLength},
		Green:        pixelformat.Channel{Offset: h.GreenOffset, Length: h.GreenLength},
		Blue:         pixelformat.Channel{Offset: h.BlueOffset, Length: h.BlueLength},
		Alpha:        pixelformat.Channel{Offset: h.AlphaOffset, Length: h.AlphaLength},
	}
}

// fields lists the header fields in wire order.
func (h *Header) fields() [13]*uint32 {
	return [13]*uint32{
		&h.Version, &h.BPP, &h.Size, &h.Width, &h.Height,
		&h.RedOffset, &h.RedLength,
		&h.BlueOffset, &h.BlueLength,
		&h.GreenOffset, &h.GreenLength,
		&h.AlphaOffset, &h.AlphaLength,
	}
}

// Encode returns the 52-byte wire form of h.
func (h Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	for i, f := range h.fields() {
		ByteOrder.PutUint32(buf[i*4:], *f)
	}
	return buf
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := h.Encode()
	return buf[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It accepts exactly
// HeaderSize bytes.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("wire: header is %d bytes, want %d", len(data), HeaderSize)
	}
	for i, f := range h.fields() {
		*f = ByteOrder.Uint32(data[i*4:])
	}
	return nil
}

// ReadHeader reads and validates one header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("wire: read header: %w", err)
	}
	var h Header
	if err := h.UnmarshalBinary(buf[:]); err != nil {
		return Header{}, err
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("wire: unsupported header version %d", h.Version)
	}
	if want := uint64(h.Width) * uint64(h.Height) * uint64(h.BPP/8); want != uint64(h.Size) {
		return Header{}, fmt.Errorf("wire: size %d does not match %dx%d at %d bpp", h.Size, h.Width, h.Height, h.BPP)
	}
	return h, nil
}
