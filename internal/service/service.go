// Package service accepts framebuffer clients and answers each connection
// with one relay invocation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/junsooki/fbrelay/internal/relay"
	"github.com/junsooki/fbrelay/internal/transport"
)

// FramebufferPath is the WebSocket endpoint that returns one capture.
const FramebufferPath = "/framebuffer"

// Server dispatches client connections to a relay engine.
type Server struct {
	engine   *relay.Engine
	slots    chan struct{}
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// New creates a Server running at most maxClients relays at once.
func New(engine *relay.Engine, maxClients int) *Server {
	if maxClients <= 0 {
		maxClients = 1
	}
	return &Server{
		engine: engine,
		slots:  make(chan struct{}, maxClients),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle answers one client on ch. ch is closed when Handle returns.
func (s *Server) Handle(ctx context.Context, kind, remote string, ch transport.Channel) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.handle(ctx, kind, remote, ch)
}

// handle runs one response. Callers have already counted it in s.wg.
func (s *Server) handle(ctx context.Context, kind, remote string, ch transport.Channel) error {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		ch.Close()
		return ctx.Err()
	}
	defer func() { <-s.slots }()

	log.Printf("%s client %s: capture requested", kind, remote)
	err := s.engine.Run(ctx, ch)
	if err != nil {
		log.Printf("%s client %s: %v", kind, remote, err)
	}
	return err
}

// ServeTCP accepts connections on ln until ctx is cancelled. Every
// connection receives one response and is then closed.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, "tcp", conn.RemoteAddr().String(), transport.CloseOnce(conn))
		}()
	}
}

// Handler returns the HTTP handler serving FramebufferPath and a status page.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(FramebufferPath, func(w http.ResponseWriter, r *http.Request) {
		// Counted before the upgrade: http.Server.Shutdown stops tracking
		// the connection once it is hijacked.
		s.wg.Add(1)
		defer s.wg.Done()

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade: %v", err)
			return
		}
		// Drain control frames so close and ping from the client are seen.
		go func() {
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()
		s.handle(ctx, "websocket", conn.RemoteAddr().String(), transport.NewWebSocketWriter(conn))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "fbrelay: %d/%d captures in flight\nGET %s (websocket) returns one raw frame\n",
			len(s.slots), cap(s.slots), FramebufferPath)
	})
	return mux
}

// Wait blocks until every in-flight response has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}
