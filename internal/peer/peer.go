// Package peer negotiates the WebRTC connections that carry framebuffer
// responses from a relay to a viewer.
package peer

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/pion/webrtc/v4"
)

// FramebufferLabel names the DataChannel a viewer opens to request a capture.
const FramebufferLabel = "framebuffer"

// DefaultICEServers are the STUN servers used when none are configured.
var DefaultICEServers = []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}

// Signaler delivers session descriptions to the other side.
type Signaler interface {
	SendOffer(target string, payload json.RawMessage) error
	SendAnswer(target string, payload json.RawMessage) error
}

// NewPeerConnection creates a PeerConnection using the given STUN/TURN URLs.
func NewPeerConnection(iceURLs []string) (*webrtc.PeerConnection, error) {
	cfg := webrtc.Configuration{}
	if len(iceURLs) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: iceURLs}}
	}
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	return pc, nil
}

// localDescription applies sd as the local description and waits until ICE
// gathering finishes, so the returned SDP carries every candidate.
func localDescription(pc *webrtc.PeerConnection, sd webrtc.SessionDescription) (json.RawMessage, error) {
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(sd); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	<-gathered
	data, err := json.Marshal(pc.LocalDescription())
	if err != nil {
		return nil, fmt.Errorf("marshal description: %w", err)
	}
	return data, nil
}

func logState(role, remote string) func(webrtc.PeerConnectionState) {
	return func(state webrtc.PeerConnectionState) {
		log.Printf("%s peer %s: connection %s", role, remote, state)
	}
}
