package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
)

const (
	// MaxMessageSize keeps each DataChannel message under the size every
	// WebRTC implementation accepts.
	MaxMessageSize = 16 * 1024

	maxBufferedAmount = 1 << 20
	lowWaterMark      = 256 * 1024
	flushTimeout      = 5 * time.Second
)

// DataChannelWriter sends a relay response over a WebRTC DataChannel.
type DataChannelWriter struct {
	dc    *webrtc.DataChannel
	lowCh chan struct{}

	once     sync.Once
	closeErr error
}

// NewDataChannelWriter wraps an open DataChannel.
func NewDataChannelWriter(dc *webrtc.DataChannel) *DataChannelWriter {
	w := &DataChannelWriter{
		dc:    dc,
		lowCh: make(chan struct{}, 1),
	}
	dc.SetBufferedAmountLowThreshold(lowWaterMark)
	dc.OnBufferedAmountLow(func() {
		select {
		case w.lowCh <- struct{}{}:
		default:
		}
	})
	return w
}

// Write splits p into messages of at most MaxMessageSize bytes. It blocks
// while the channel's send buffer is full.
func (w *DataChannelWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		if err := w.waitBuffer(maxBufferedAmount); err != nil {
			return written, err
		}
		n := min(len(p)-written, MaxMessageSize)
		// Send may retain the slice; callers reuse theirs.
		msg := make([]byte, n)
		copy(msg, p[written:written+n])
		if err := w.dc.Send(msg); err != nil {
			return written, fmt.Errorf("datachannel send: %w", err)
		}
		written += n
	}
	return written, nil
}

func (w *DataChannelWriter) waitBuffer(limit uint64) error {
	for w.dc.BufferedAmount() > limit {
		if w.dc.ReadyState() != webrtc.DataChannelStateOpen {
			return io.ErrClosedPipe
		}
		select {
		case <-w.lowCh:
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

// Close waits briefly for queued messages to drain, then closes the channel.
func (w *DataChannelWriter) Close() error {
	w.once.Do(func() {
		deadline := time.Now().Add(flushTimeout)
		for w.dc.BufferedAmount() > 0 && time.Now().Before(deadline) {
			if w.dc.ReadyState() != webrtc.DataChannelStateOpen {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		w.closeErr = w.dc.Close()
	})
	return w.closeErr
}

// DataChannelReader exposes the messages arriving on a DataChannel as one
// byte stream. It reports io.EOF once the channel closes.
type DataChannelReader struct {
	dc *webrtc.DataChannel
	pr *io.PipeReader
	pw *io.PipeWriter
}

// NewDataChannelReader starts buffering messages from dc. Messages are
// delivered in order; the sender blocks while the reader is behind.
func NewDataChannelReader(dc *webrtc.DataChannel) *DataChannelReader {
	pr, pw := io.Pipe()
	r := &DataChannelReader{dc: dc, pr: pr, pw: pw}
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if msg.IsString {
			return
		}
		_, _ = pw.Write(msg.Data)
	})
	dc.OnClose(func() {
		pw.Close()
	})
	return r
}

func (r *DataChannelReader) Read(p []byte) (int, error) {
	return r.pr.Read(p)
}

// Close stops reading and closes the DataChannel.
func (r *DataChannelReader) Close() error {
	r.pr.Close()
	return r.dc.Close()
}
