package wire

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/junsooki/fbrelay/internal/pixelformat"
)

func TestFrame_WriteRead(t *testing.T) {
	d, _ := pixelformat.Resolve(pixelformat.RGB888)
	h, _ := NewHeader(3, 2, d)
	want := &Frame{Header: h, Payload: bytes.Repeat([]byte{7, 8, 9}, 6)}

	var buf bytes.Buffer
	n, err := want.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(HeaderSize+18) {
		t.Fatalf("wrote %d bytes", n)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Header != want.Header || !bytes.Equal(got.Payload, want.Payload) {
		t.Fatal("frame differs after round trip")
	}
}

func TestReadFrame_Truncated(t *testing.T) {
	d, _ := pixelformat.Resolve(pixelformat.RGBA8888)
	h, _ := NewHeader(2, 2, d)
	data, _ := h.MarshalBinary()
	data = append(data, make([]byte, 15)...)

	_, err := ReadFrame(bytes.NewReader(data))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReadFrame_OversizedHeaderNoPayload(t *testing.T) {
	d, _ := pixelformat.Resolve(pixelformat.RGBA8888)
	h, err := NewHeader(65535, 16383, d)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := h.MarshalBinary()

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = ReadFrame(bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 64<<20 {
		t.Fatalf("allocated %d MiB for a %d-byte input", grew>>20, len(data))
	}
}

func TestFrame_WriteTo_SizeMismatch(t *testing.T) {
	d, _ := pixelformat.Resolve(pixelformat.RGBA8888)
	h, _ := NewHeader(2, 2, d)
	f := &Frame{Header: h, Payload: make([]byte, 3)}
	if _, err := f.WriteTo(io.Discard); err == nil {
		t.Fatal("expected size mismatch error")
	}
}
