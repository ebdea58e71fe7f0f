package viewer

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/junsooki/fbrelay/internal/capture"
	"github.com/junsooki/fbrelay/internal/pixelformat"
	"github.com/junsooki/fbrelay/internal/relay"
	"github.com/junsooki/fbrelay/internal/service"
	"github.com/junsooki/fbrelay/internal/snapshot"
)

type replaySpawner struct {
	data []byte
}

func (r replaySpawner) Spawn(context.Context, []string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

func newServer(t *testing.T) (*service.Server, []byte) {
	t.Helper()
	g := capture.Geometry{Width: 4, Height: 3, Format: pixelformat.RGBA8888}
	payload := make([]byte, 4*3*4)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	var buf bytes.Buffer
	if err := capture.WriteGeometry(&buf, g); err != nil {
		t.Fatal(err)
	}
	buf.Write(payload)
	return service.New(relay.New(replaySpawner{buf.Bytes()}, nil), 2), payload
}

func TestFetch_TCP(t *testing.T) {
	srv, payload := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ServeTCP(ctx, ln)

	fctx, fcancel := context.WithTimeout(ctx, 5*time.Second)
	defer fcancel()
	f, err := (&Fetcher{}).Fetch(fctx, "tcp://"+ln.Addr().String())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if f.Header.Width != 4 || f.Header.Height != 3 || f.Header.BPP != 32 {
		t.Fatalf("header %+v", f.Header)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatal("payload mismatch")
	}
}

func TestFetch_WebSocket(t *testing.T) {
	srv, payload := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hs := httptest.NewServer(srv.Handler(ctx))
	defer hs.Close()

	fctx, fcancel := context.WithTimeout(ctx, 5*time.Second)
	defer fcancel()
	url := "ws" + strings.TrimPrefix(hs.URL, "http") + service.FramebufferPath
	f, err := (&Fetcher{}).Fetch(fctx, url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatal("payload mismatch")
	}
}

func TestFetch_Errors(t *testing.T) {
	ctx := context.Background()
	for _, src := range []string{
		"capture.png",
		"ftp://example.com/x",
		"webrtc://relay-1",
	} {
		if _, err := (&Fetcher{}).Fetch(ctx, src); err == nil {
			t.Errorf("Fetch(%q) succeeded", src)
		}
	}
}

func TestSaveAndFetchSnapshot(t *testing.T) {
	srv, payload := newServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ServeTCP(ctx, ln)

	f, err := (&Fetcher{}).Fetch(ctx, "tcp://"+ln.Addr().String())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	dir := t.TempDir()
	fbz := filepath.Join(dir, "shot"+snapshot.Ext)
	if err := Save(fbz, f, 90); err != nil {
		t.Fatalf("Save snapshot: %v", err)
	}
	loaded, err := (&Fetcher{}).Fetch(ctx, fbz)
	if err != nil {
		t.Fatalf("Fetch snapshot: %v", err)
	}
	if loaded.Header != f.Header || !bytes.Equal(loaded.Payload, payload) {
		t.Fatal("snapshot differs from fetched frame")
	}

	pngPath := filepath.Join(dir, "shot.png")
	if err := Save(pngPath, f, 90); err != nil {
		t.Fatalf("Save png: %v", err)
	}
	in, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	img, err := png.Decode(in)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("png bounds %v", b)
	}

	if err := Save(filepath.Join(dir, "shot.bmp"), f, 90); err == nil {
		t.Fatal("Save to .bmp succeeded")
	}
}

func TestErrorSlot_KeepsFirstAndNeverBlocks(t *testing.T) {
	slot := newErrorSlot()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			slot.report(fmt.Errorf("signaling error %d", i))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("report blocked")
	}
	if err := <-slot; err == nil || err.Error() != "signaling error 0" {
		t.Fatalf("first error = %v", err)
	}
}
