// Package relay answers one framebuffer request: it runs a capture producer,
// translates its preamble into a wire header and streams the raw pixels to
// the client.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/junsooki/fbrelay/internal/capture"
	"github.com/junsooki/fbrelay/internal/pixelformat"
	"github.com/junsooki/fbrelay/internal/wire"
)

// DefaultChunkSize is the copy buffer size. It is not visible on the wire.
const DefaultChunkSize = 4096

// DefaultCommand is the producer started when none is configured.
var DefaultCommand = []string{"screencap"}

// Engine runs relay invocations. An Engine holds no per-request state and may
// serve concurrent requests.
type Engine struct {
	spawner   capture.Spawner
	argv      []string
	table     pixelformat.Table
	chunkSize int
	trace     func(State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTable selects the pixel format table used to resolve producer codes.
func WithTable(t pixelformat.Table) Option {
	return func(e *Engine) { e.table = t }
}

// WithChunkSize sets the payload copy chunk size. Non-positive values are ignored.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithTrace registers fn to observe every state an invocation enters.
func WithTrace(fn func(State)) Option {
	return func(e *Engine) { e.trace = fn }
}

// New creates an Engine that starts argv through spawner for every request.
func New(spawner capture.Spawner, argv []string, opts ...Option) *Engine {
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	e := &Engine{
		spawner:   spawner,
		argv:      argv,
		table:     pixelformat.Standard,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run captures one frame and writes header and payload to out. It returns
// once the response is complete or has failed. out is always closed before
// Run returns; on failure the client sees an early close and nothing else.
func (e *Engine) Run(ctx context.Context, out io.WriteCloser) error {
	s := &session{
		engine: e,
		id:     uuid.NewString()[:8],
		out:    out,
		start:  time.Now(),
	}
	defer s.cleanup()

	err := s.run(ctx)
	if err != nil {
		s.failedIn = s.state
		s.enter(StateFailed)
		return err
	}
	s.enter(StateDone)
	return nil
}

// session is the state of one invocation.
type session struct {
	engine   *Engine
	id       string
	out      io.WriteCloser
	producer io.ReadCloser
	state    State
	failedIn State
	start    time.Time

	geometry capture.Geometry
	header   wire.Header
	copied   int64
}

func (s *session) enter(st State) {
	s.state = st
	if s.engine.trace != nil {
		s.engine.trace(st)
	}
}

func (s *session) run(ctx context.Context) error {
	e := s.engine

	producer, err := e.spawner.Spawn(ctx, e.argv)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	s.producer = producer
	s.enter(StateSpawned)

	var pre [capture.PreambleSize]byte
	if err := readExact(producer, pre[0:4]); err != nil {
		return fmt.Errorf("read width: %w", err)
	}
	if err := readExact(producer, pre[4:8]); err != nil {
		return fmt.Errorf("read height: %w", err)
	}
	if err := readExact(producer, pre[8:12]); err != nil {
		return fmt.Errorf("read format: %w", err)
	}
	s.geometry = capture.ParseGeometry(pre)
	s.enter(StateHeaderRead)

	desc, ok := e.table.Resolve(s.geometry.Format)
	if !ok {
		return fmt.Errorf("%w: code %d (%s table)", ErrUnsupportedFormat, s.geometry.Format, e.table.Name())
	}
	hdr, err := wire.NewHeader(s.geometry.Width, s.geometry.Height, desc)
	if err != nil {
		if errors.Is(err, wire.ErrTooLarge) {
			return fmt.Errorf("%w: %v", ErrFrameTooLarge, err)
		}
		return err
	}
	s.header = hdr
	s.enter(StateFormatResolved)

	buf := hdr.Encode()
	if err := writeExact(s.out, buf[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	s.enter(StateHeaderWritten)

	s.enter(StateStreaming)
	return s.stream()
}

// stream copies exactly header.Size bytes: whole chunks first, then the
// remainder, which may be empty.
func (s *session) stream() error {
	chunk := s.engine.chunkSize
	buf := make([]byte, chunk)
	remaining := int64(s.header.Size)

	for remaining >= int64(chunk) {
		if err := s.copyChunk(buf); err != nil {
			return err
		}
		remaining -= int64(chunk)
	}
	return s.copyChunk(buf[:remaining])
}

func (s *session) copyChunk(buf []byte) error {
	if err := readExact(s.producer, buf); err != nil {
		return fmt.Errorf("read payload at %d: %w", s.copied, err)
	}
	if err := writeExact(s.out, buf); err != nil {
		return fmt.Errorf("write payload at %d: %w", s.copied, err)
	}
	s.copied += int64(len(buf))
	return nil
}

// cleanup releases every channel exactly once, output first so the client
// is not held up while the producer is reaped. Close failures are logged and
// never replace the invocation's result.
func (s *session) cleanup() {
	if s.out != nil {
		if err := s.out.Close(); err != nil {
			log.Printf("relay %s: close output: %v", s.id, err)
		}
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			log.Printf("relay %s: close producer: %v", s.id, err)
		}
	}

	if s.state == StateDone {
		log.Printf("relay %s: sent %s, %d payload bytes in %s",
			s.id, s.geometry, s.copied, time.Since(s.start).Round(time.Millisecond))
	} else {
		log.Printf("relay %s: aborted in %s after %d payload bytes", s.id, s.failedIn, s.copied)
	}
}
