package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// initialPayloadCap bounds the buffer reserved before any payload byte is read.
const initialPayloadCap = 8 << 20

// Frame is one complete relay response.
type Frame struct {
	Header  Header
	Payload []byte
}

// ReadFrame reads a header and exactly Header.Size payload bytes. A stream
// that ends early is a failed capture.
func ReadFrame(r io.Reader) (*Frame, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	// Size is untrusted until the bytes arrive; grow with the stream.
	var payload bytes.Buffer
	payload.Grow(int(min(h.Size, initialPayloadCap)))
	if _, err := io.CopyN(&payload, r, int64(h.Size)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("wire: read payload: %w", err)
	}
	return &Frame{Header: h, Payload: payload.Bytes()}, nil
}

// WriteTo writes the frame in wire form.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	if int64(len(f.Payload)) != int64(f.Header.Size) {
		return 0, fmt.Errorf("wire: payload is %d bytes, header says %d", len(f.Payload), f.Header.Size)
	}
	hdr := f.Header.Encode()
	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(f.Payload)
	return int64(n + m), err
}
