// Package signaling exchanges WebRTC session descriptions between a relay
// and its viewers through a WebSocket rendezvous server.
package signaling

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const pingInterval = 25 * time.Second

// Handler callbacks for incoming signaling messages. Nil callbacks are skipped.
// Callbacks run on the client's read goroutine.
type Handler struct {
	OnRegistered       func()
	OnOffer            func(from string, payload json.RawMessage)
	OnAnswer           func(from string, payload json.RawMessage)
	OnHostsUpdated     func(hosts []HostInfo)
	OnHostDisconnected func(hostID string)
	OnError            func(msg string)
}

// Client is a WebSocket signaling client.
type Client struct {
	url     string
	id      string
	role    string
	handler Handler

	conn   *websocket.Conn
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewClient creates a signaling client registering as id with the given role.
func NewClient(url, id, role string, handler Handler) *Client {
	return &Client{
		url:     url,
		id:      id,
		role:    role,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// ID returns the identity the client registers with.
func (c *Client) ID() string {
	return c.id
}

// Connect dials the signaling server, registers and starts reading messages.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("signaling dial: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.send(Message{Type: TypeRegister, ID: c.id, ClientType: c.role}); err != nil {
		conn.Close()
		return fmt.Errorf("signaling register: %w", err)
	}

	go c.readLoop()
	go c.pingLoop()
	return nil
}

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts down the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
}

// SendOffer sends an SDP offer to target.
func (c *Client) SendOffer(target string, payload json.RawMessage) error {
	return c.send(Message{Type: TypeOffer, Target: target, Payload: payload})
}

// SendAnswer sends an SDP answer to target.
func (c *Client) SendAnswer(target string, payload json.RawMessage) error {
	return c.send(Message{Type: TypeAnswer, Target: target, Payload: payload})
}

// RequestHostList asks the server for registered relays.
func (c *Client) RequestHostList() error {
	return c.send(Message{Type: TypeListHosts})
}

func (c *Client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return fmt.Errorf("signaling: not connected")
	}
	return c.conn.WriteJSON(msg)
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("signaling read: %v", err)
			}
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	h := c.handler
	switch msg.Type {
	case TypeRegistered:
		if h.OnRegistered != nil {
			h.OnRegistered()
		}
	case TypeOffer:
		if h.OnOffer != nil {
			h.OnOffer(msg.From, msg.Payload)
		}
	case TypeAnswer:
		if h.OnAnswer != nil {
			h.OnAnswer(msg.From, msg.Payload)
		}
	case TypeHosts, TypeHostsUpdated:
		if h.OnHostsUpdated != nil {
			h.OnHostsUpdated(msg.List)
		}
	case TypeHostDisconnected:
		if h.OnHostDisconnected != nil {
			h.OnHostDisconnected(msg.HostID)
		}
	case TypeError:
		if h.OnError != nil {
			h.OnError(msg.Msg)
		}
	case TypeICECandidate:
		// Descriptions carry all candidates; trickled ones are not needed.
	case TypePong:
	default:
		log.Printf("signaling: unknown message type %q", msg.Type)
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.send(Message{Type: TypePing, Timestamp: time.Now().UnixMilli()})
		}
	}
}
