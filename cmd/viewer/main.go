package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/junsooki/fbrelay/internal/config"
	"github.com/junsooki/fbrelay/internal/decoder"
	"github.com/junsooki/fbrelay/internal/display"
	"github.com/junsooki/fbrelay/internal/snapshot"
	"github.com/junsooki/fbrelay/internal/viewer"
	"github.com/junsooki/fbrelay/internal/wire"
)

const fetchTimeout = 30 * time.Second

func main() {
	cfg, err := config.ParseViewerFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("fbrelay viewer starting")
	log.Printf("  Viewer ID: %s", cfg.ViewerID)
	log.Printf("  Source:    %s", cfg.From)

	fetcher := &viewer.Fetcher{
		SignalingURL: cfg.SignalingURL,
		ViewerID:     cfg.ViewerID,
		ICEURLs:      cfg.ICEURLs(),
	}
	dec := decoder.NewRawDecoder()

	var (
		mu      sync.Mutex
		current *wire.Frame
	)
	fetch := func() (*wire.Frame, error) {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		f, err := fetcher.Fetch(ctx, cfg.From)
		if err != nil {
			return nil, err
		}
		h := f.Header
		log.Printf("capture %dx%d, %d bpp, %d bytes, xxhash %016x",
			h.Width, h.Height, h.BPP, h.Size, snapshot.Checksum(f.Payload))
		mu.Lock()
		current = f
		mu.Unlock()
		return f, nil
	}
	save := func(path string) {
		mu.Lock()
		f := current
		mu.Unlock()
		if f == nil {
			return
		}
		if err := viewer.Save(path, f, cfg.Quality); err != nil {
			log.Printf("save %s: %v", path, err)
			return
		}
		log.Printf("saved %s", path)
	}

	first, err := fetch()
	if err != nil {
		log.Fatalf("fetch: %v", err)
	}
	if cfg.Out != "" {
		save(cfg.Out)
	}
	if cfg.NoWindow {
		return
	}

	img, err := dec.Decode(first)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}

	var disp display.Display
	disp = display.NewEbitenDisplay(fmt.Sprintf("fbrelay - %s", cfg.From), display.Actions{
		Refresh: func() {
			f, err := fetch()
			if err != nil {
				log.Printf("refresh: %v", err)
				return
			}
			img, err := dec.Decode(f)
			if err != nil {
				log.Printf("decode: %v", err)
				return
			}
			disp.SetFrame(img)
		},
		Save: func() {
			path := cfg.Out
			if path == "" {
				path = time.Now().Format("capture-20060102-150405.png")
			}
			save(path)
		},
	})
	disp.SetFrame(img)

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(); err != nil {
		log.Fatalf("display: %v", err)
	}
}
