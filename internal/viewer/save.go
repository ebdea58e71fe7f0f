package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/junsooki/fbrelay/internal/decoder"
	"github.com/junsooki/fbrelay/internal/encoder"
	"github.com/junsooki/fbrelay/internal/snapshot"
	"github.com/junsooki/fbrelay/internal/wire"
)

// Save writes f to path. Snapshot paths keep the raw frame; image paths are
// decoded and encoded by extension.
func Save(path string, f *wire.Frame, quality int) error {
	if strings.EqualFold(filepath.Ext(path), snapshot.Ext) {
		_, err := snapshot.Save(path, f)
		return err
	}

	enc, err := encoder.ForPath(path, quality)
	if err != nil {
		return err
	}
	img, err := decoder.NewRawDecoder().Decode(f)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
