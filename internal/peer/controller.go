package peer

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/fbrelay/internal/transport"
)

// Controller is the viewer side: it opens the framebuffer channel and reads
// the relay's response from it.
type Controller struct {
	pc     *webrtc.PeerConnection
	sig    Signaler
	hostID string
	frame  *transport.DataChannelReader
}

// NewController prepares a connection to the relay hostID.
func NewController(sig Signaler, hostID string, iceURLs []string) (*Controller, error) {
	pc, err := NewPeerConnection(iceURLs)
	if err != nil {
		return nil, err
	}

	ordered := true
	dc, err := pc.CreateDataChannel(FramebufferLabel, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create data channel: %w", err)
	}
	pc.OnConnectionStateChange(logState("viewer", hostID))

	return &Controller{
		pc:     pc,
		sig:    sig,
		hostID: hostID,
		frame:  transport.NewDataChannelReader(dc),
	}, nil
}

// Frame returns the byte stream of the relay response: wire header, then
// payload, then EOF.
func (c *Controller) Frame() transport.Source {
	return c.frame
}

// Connect sends the offer to the relay.
func (c *Controller) Connect() error {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	data, err := localDescription(c.pc, offer)
	if err != nil {
		return err
	}
	return c.sig.SendOffer(c.hostID, data)
}

// HandleAnswer applies the relay's answer.
func (c *Controller) HandleAnswer(payload json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	if err := c.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

// Close shuts down the peer connection.
func (c *Controller) Close() {
	if c.pc != nil {
		c.pc.Close()
	}
}
