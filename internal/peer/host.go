package peer

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/fbrelay/internal/transport"
)

// ServeFunc answers one framebuffer request on ch and closes it.
type ServeFunc func(ch transport.Channel)

// Host is the relay side of one viewer connection.
type Host struct {
	pc       *webrtc.PeerConnection
	sig      Signaler
	viewerID string

	done     chan struct{}
	doneOnce sync.Once
}

// NewHost prepares a connection for viewerID. Every framebuffer DataChannel
// the viewer opens is passed to serve once it is open.
func NewHost(sig Signaler, viewerID string, iceURLs []string, serve ServeFunc) (*Host, error) {
	pc, err := NewPeerConnection(iceURLs)
	if err != nil {
		return nil, err
	}

	h := &Host{
		pc:       pc,
		sig:      sig,
		viewerID: viewerID,
		done:     make(chan struct{}),
	}

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != FramebufferLabel {
			log.Printf("relay peer %s: ignoring data channel %q", viewerID, dc.Label())
			return
		}
		dc.OnOpen(func() {
			go serve(transport.NewDataChannelWriter(dc))
		})
	})

	logConn := logState("relay", viewerID)
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logConn(state)
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			h.doneOnce.Do(func() { close(h.done) })
		}
	})

	return h, nil
}

// HandleOffer answers a viewer's offer.
func (h *Host) HandleOffer(payload json.RawMessage) error {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return fmt.Errorf("decode offer: %w", err)
	}
	if err := h.pc.SetRemoteDescription(offer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}

	answer, err := h.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	data, err := localDescription(h.pc, answer)
	if err != nil {
		return err
	}
	return h.sig.SendAnswer(h.viewerID, data)
}

// Done is closed when the viewer connection has ended.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// Close shuts down the peer connection.
func (h *Host) Close() {
	if h.pc != nil {
		h.pc.Close()
	}
}
