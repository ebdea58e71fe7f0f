// Package snapshot stores relay responses on disk as zstd-compressed raw
// frames, so a capture can be inspected later without re-encoding it.
//
// File layout, inside one zstd stream:
//
//	[52 bytes] wire header
//	[size]     payload
//	[8 bytes]  xxhash64 of payload, wire byte order
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/junsooki/fbrelay/internal/wire"
)

// Ext is the conventional snapshot file extension.
const Ext = ".fbz"

var ErrChecksum = errors.New("snapshot: payload checksum mismatch")

// Checksum returns the payload digest stored in snapshots.
func Checksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// Write compresses f to w and returns the payload checksum.
func Write(w io.Writer, f *wire.Frame) (uint64, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return 0, fmt.Errorf("snapshot: zstd writer: %w", err)
	}
	if _, err := f.WriteTo(zw); err != nil {
		zw.Close()
		return 0, fmt.Errorf("snapshot: write frame: %w", err)
	}
	sum := Checksum(f.Payload)
	var trailer [8]byte
	wire.ByteOrder.PutUint64(trailer[:], sum)
	if _, err := zw.Write(trailer[:]); err != nil {
		zw.Close()
		return 0, fmt.Errorf("snapshot: write checksum: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("snapshot: flush: %w", err)
	}
	return sum, nil
}

// Read decompresses one snapshot from r and verifies its checksum.
func Read(r io.Reader) (*wire.Frame, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd reader: %w", err)
	}
	defer zr.Close()

	f, err := wire.ReadFrame(zr)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	var trailer [8]byte
	if _, err := io.ReadFull(zr, trailer[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read checksum: %w", err)
	}
	if wire.ByteOrder.Uint64(trailer[:]) != Checksum(f.Payload) {
		return nil, ErrChecksum
	}
	return f, nil
}

// Save writes f to path.
func Save(path string, f *wire.Frame) (uint64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	sum, err := Write(out, f)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return sum, nil
}

// Load reads the snapshot stored at path.
func Load(path string) (*wire.Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return Read(in)
}
