package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/xfmoulet/qoi"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 30), uint8(y * 60), 90, 255})
		}
	}
	return img
}

func TestForPath(t *testing.T) {
	for path, ok := range map[string]bool{
		"shot.png":  true,
		"shot.JPG":  true,
		"shot.jpeg": true,
		"shot.qoi":  true,
		"shot.bmp":  false,
		"shot":      false,
	} {
		_, err := ForPath(path, 80)
		if (err == nil) != ok {
			t.Errorf("ForPath(%q) err = %v", path, err)
		}
	}
}

func TestLosslessRoundTrip(t *testing.T) {
	src := testImage()
	for _, tc := range []struct {
		name   string
		enc    Encoder
		decode func(*bytes.Buffer) (image.Image, error)
	}{
		{"png", PNGEncoder{}, func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) }},
		{"qoi", QOIEncoder{}, func(b *bytes.Buffer) (image.Image, error) { return qoi.Decode(b) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.enc.Encode(&buf, src); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := tc.decode(&buf)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 8; x++ {
					r1, g1, b1, a1 := src.At(x, y).RGBA()
					r2, g2, b2, a2 := got.At(x, y).RGBA()
					if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
						t.Fatalf("pixel (%d,%d) differs", x, y)
					}
				}
			}
		})
	}
}

func TestJPEGEncoder_ClampsQuality(t *testing.T) {
	if NewJPEGEncoder(0).quality != 1 || NewJPEGEncoder(500).quality != 100 {
		t.Fatal("quality not clamped")
	}
	var buf bytes.Buffer
	if err := NewJPEGEncoder(70).Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty JPEG")
	}
}
