package pixelformat

import "fmt"

// Channel is the position of one color component inside a pixel, in bits.
type Channel struct {
	Offset uint32
	Length uint32
}

// Descriptor describes the bit layout of a native pixel format.
type Descriptor struct {
	BitsPerPixel uint32
	Red          Channel
	Green        Channel
	Blue         Channel
	Alpha        Channel
}

// BytesPerPixel returns the number of bytes one pixel occupies.
func (d Descriptor) BytesPerPixel() uint32 {
	return d.BitsPerPixel / 8
}

// Native format codes emitted by capture producers.
const (
	RGBA8888 int32 = 1
	RGBX8888 int32 = 2
	RGB888   int32 = 3
	RGB565   int32 = 4
	BGRA8888 int32 = 5
	RGBA5551 int32 = 6
	RGBA4444 int32 = 7
)

var names = map[int32]string{
	RGBA8888: "RGBA_8888",
	RGBX8888: "RGBX_8888",
	RGB888:   "RGB_888",
	RGB565:   "RGB_565",
	BGRA8888: "BGRA_8888",
	RGBA5551: "RGBA_5551",
	RGBA4444: "RGBA_4444",
}

// Name returns a readable name for a format code.
func Name(code int32) string {
	if n, ok := names[code]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}

// Table maps format codes to descriptors. Index 0 is reserved and never resolves.
type Table struct {
	name    string
	entries []Descriptor
}

// Name returns the table's config name.
func (t Table) Name() string {
	return t.name
}

// Max returns the highest code the table knows.
func (t Table) Max() int32 {
	return int32(len(t.entries)) - 1
}

// Resolve looks up a format code. It reports false for zero, negative and
// out-of-range codes.
func (t Table) Resolve(code int32) (Descriptor, bool) {
	if code <= 0 || code > t.Max() {
		return Descriptor{}, false
	}
	return t.entries[code], true
}

// Resolve resolves code against the Standard table.
func Resolve(code int32) (Descriptor, bool) {
	return Standard.Resolve(code)
}

// ByName returns the table registered under name.
func ByName(name string) (Table, error) {
	switch name {
	case "", Standard.name:
		return Standard, nil
	case Extended.name:
		return Extended, nil
	}
	return Table{}, fmt.Errorf("unknown pixel format table %q", name)
}
