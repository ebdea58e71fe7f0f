package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

// WebSocketWriter sends a relay response as binary WebSocket messages, one
// per Write.
type WebSocketWriter struct {
	conn *websocket.Conn

	once     sync.Once
	closeErr error
}

// NewWebSocketWriter wraps an upgraded connection. The writer becomes the
// connection's only writer.
func NewWebSocketWriter(conn *websocket.Conn) *WebSocketWriter {
	return &WebSocketWriter{conn: conn}
}

func (w *WebSocketWriter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, fmt.Errorf("websocket write: %w", err)
	}
	return len(p), nil
}

// Close sends a normal close frame and closes the connection.
func (w *WebSocketWriter) Close() error {
	w.once.Do(func() {
		// The peer may already be gone; the close frame is best effort.
		_ = w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace),
		)
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

// WebSocketReader reads the concatenated binary messages of a connection.
// A normal close frame reads as io.EOF.
type WebSocketReader struct {
	conn *websocket.Conn
	cur  io.Reader
}

func NewWebSocketReader(conn *websocket.Conn) *WebSocketReader {
	return &WebSocketReader{conn: conn}
}

func (r *WebSocketReader) Read(p []byte) (int, error) {
	for {
		if r.cur == nil {
			mt, rd, err := r.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return 0, io.EOF
				}
				return 0, err
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			r.cur = rd
		}
		n, err := r.cur.Read(p)
		if errors.Is(err, io.EOF) {
			r.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (r *WebSocketReader) Close() error {
	return r.conn.Close()
}
