// Package viewer fetches single captures from a relay and stores them.
package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/junsooki/fbrelay/internal/peer"
	"github.com/junsooki/fbrelay/internal/signaling"
	"github.com/junsooki/fbrelay/internal/snapshot"
	"github.com/junsooki/fbrelay/internal/transport"
	"github.com/junsooki/fbrelay/internal/wire"
)

// Fetcher requests captures from a relay.
type Fetcher struct {
	// SignalingURL and ViewerID are used for webrtc:// sources.
	SignalingURL string
	ViewerID     string
	ICEURLs      []string
}

// Fetch returns one capture from source. Supported sources are
// tcp://host:port, ws:// or wss:// URLs, webrtc://relay-id and paths of
// snapshot files.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*wire.Frame, error) {
	if !strings.Contains(source, "://") {
		if strings.HasSuffix(source, snapshot.Ext) {
			return snapshot.Load(source)
		}
		return nil, fmt.Errorf("viewer: unsupported source %q", source)
	}

	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("viewer: parse source: %w", err)
	}
	switch u.Scheme {
	case "tcp":
		return fetchTCP(ctx, u.Host)
	case "ws", "wss":
		return fetchWebSocket(ctx, source)
	case "webrtc":
		return f.fetchWebRTC(ctx, u.Host)
	case "file":
		return snapshot.Load(u.Path)
	default:
		return nil, fmt.Errorf("viewer: unsupported scheme %q", u.Scheme)
	}
}

func fetchTCP(ctx context.Context, addr string) (*wire.Frame, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("viewer: dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	return readFrame(ctx, conn)
}

func fetchWebSocket(ctx context.Context, rawURL string) (*wire.Frame, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("viewer: dial %s: %w", rawURL, err)
	}
	src := transport.NewWebSocketReader(conn)
	defer src.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	return readFrame(ctx, src)
}

func (f *Fetcher) fetchWebRTC(ctx context.Context, relayID string) (*wire.Frame, error) {
	if f.SignalingURL == "" {
		return nil, fmt.Errorf("viewer: webrtc source needs a signaling URL")
	}
	errc := newErrorSlot()

	var ctrl *peer.Controller
	sig := signaling.NewClient(f.SignalingURL, f.ViewerID, signaling.RoleViewer, signaling.Handler{
		OnRegistered: func() {
			log.Printf("Registered with signaling server, connecting to %s", relayID)
			go func() {
				if err := ctrl.Connect(); err != nil {
					errc.report(err)
				}
			}()
		},
		OnAnswer: func(from string, payload json.RawMessage) {
			if err := ctrl.HandleAnswer(payload); err != nil {
				errc.report(err)
			}
		},
		OnHostDisconnected: func(hostID string) {
			if hostID == relayID {
				errc.report(fmt.Errorf("relay %s disconnected", hostID))
			}
		},
		OnError: func(msg string) {
			errc.report(fmt.Errorf("signaling: %s", msg))
		},
	})

	ctrl, err := peer.NewController(sig, relayID, f.ICEURLs)
	if err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}
	defer ctrl.Close()

	if err := sig.Connect(ctx); err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}
	defer sig.Close()

	type result struct {
		frame *wire.Frame
		err   error
	}
	done := make(chan result, 1)
	go func() {
		fr, err := wire.ReadFrame(ctrl.Frame())
		done <- result{fr, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("viewer: %w", r.err)
		}
		return r.frame, nil
	case err := <-errc:
		ctrl.Frame().Close()
		return nil, fmt.Errorf("viewer: %w", err)
	case <-ctx.Done():
		ctrl.Frame().Close()
		return nil, ctx.Err()
	}
}

// errorSlot keeps the first error reported to it. Later reports are dropped
// so signaling callbacks never block, even after Fetch has returned.
type errorSlot chan error

func newErrorSlot() errorSlot {
	return make(errorSlot, 1)
}

func (e errorSlot) report(err error) {
	select {
	case e <- err:
	default:
	}
}

func readFrame(ctx context.Context, src io.Reader) (*wire.Frame, error) {
	fr, err := wire.ReadFrame(src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("viewer: %w", err)
	}
	return fr, nil
}
