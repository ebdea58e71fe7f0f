package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/junsooki/fbrelay/internal/capture"
	"github.com/junsooki/fbrelay/internal/config"
	"github.com/junsooki/fbrelay/internal/peer"
	"github.com/junsooki/fbrelay/internal/relay"
	"github.com/junsooki/fbrelay/internal/service"
	"github.com/junsooki/fbrelay/internal/signaling"
	"github.com/junsooki/fbrelay/internal/transport"
)

func main() {
	cfg, err := config.ParseRelayFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("fbrelay starting")
	log.Printf("  Relay ID:     %s", cfg.HostID)
	log.Printf("  Producer:     %s", cfg.Producer)
	log.Printf("  Format table: %s", cfg.Table().Name())
	log.Printf("  Chunk size:   %d", cfg.ChunkSize)
	log.Printf("  Max clients:  %d", cfg.MaxClients)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := relay.New(
		capture.ExecSpawner{Stderr: log.Writer()},
		cfg.ProducerArgv(),
		relay.WithTable(cfg.Table()),
		relay.WithChunkSize(cfg.ChunkSize),
	)
	srv := service.New(engine, cfg.MaxClients)

	if cfg.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			log.Fatalf("listen %s: %v", cfg.Listen, err)
		}
		log.Printf("  TCP:          %s", ln.Addr())
		go func() {
			if err := srv.ServeTCP(ctx, ln); err != nil {
				log.Printf("tcp: %v", err)
				stop()
			}
		}()
	}

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Handler(ctx)}
		log.Printf("  WebSocket:    ws://%s%s", cfg.HTTPAddr, service.FramebufferPath)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http: %v", err)
				stop()
			}
		}()
	}

	var peers *peerSet
	if cfg.SignalingURL != "" {
		log.Printf("  Signaling:    %s", cfg.SignalingURL)
		peers = &peerSet{hosts: make(map[string]*peer.Host)}
		var sig *signaling.Client
		sig = signaling.NewClient(cfg.SignalingURL, cfg.HostID, signaling.RoleRelay, signaling.Handler{
			OnRegistered: func() {
				log.Println("Registered with signaling server")
			},
			OnOffer: func(from string, payload json.RawMessage) {
				log.Printf("Received offer from %s", from)
				host, err := peer.NewHost(sig, from, cfg.ICEURLs(), func(ch transport.Channel) {
					srv.Handle(ctx, "webrtc", from, ch)
				})
				if err != nil {
					log.Printf("create relay peer: %v", err)
					return
				}
				peers.add(from, host)
				if err := host.HandleOffer(payload); err != nil {
					log.Printf("handle offer: %v", err)
					peers.remove(from, host)
				}
			},
			OnError: func(msg string) {
				log.Printf("signaling error: %s", msg)
			},
		})
		if err := sig.Connect(ctx); err != nil {
			log.Fatalf("signaling connect: %v", err)
		}
		defer sig.Close()
		go func() {
			select {
			case <-sig.Done():
				log.Println("signaling connection lost")
				stop()
			case <-ctx.Done():
			}
		}()
	}

	log.Printf("Relay ready. Share this ID with viewers: %s", cfg.HostID)
	<-ctx.Done()

	log.Println("Shutting down...")
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		httpSrv.Shutdown(shutdownCtx)
		cancel()
	}
	if peers != nil {
		peers.closeAll()
	}
	srv.Wait()
}

// peerSet tracks one WebRTC connection per viewer.
type peerSet struct {
	mu    sync.Mutex
	hosts map[string]*peer.Host
}

// add registers host for viewerID, replacing any previous connection.
func (p *peerSet) add(viewerID string, host *peer.Host) {
	p.mu.Lock()
	old := p.hosts[viewerID]
	p.hosts[viewerID] = host
	p.mu.Unlock()
	if old != nil {
		old.Close()
	}
	go func() {
		<-host.Done()
		p.remove(viewerID, host)
	}()
}

func (p *peerSet) remove(viewerID string, host *peer.Host) {
	p.mu.Lock()
	if p.hosts[viewerID] == host {
		delete(p.hosts, viewerID)
	}
	p.mu.Unlock()
	host.Close()
}

func (p *peerSet) closeAll() {
	p.mu.Lock()
	hosts := p.hosts
	p.hosts = make(map[string]*peer.Host)
	p.mu.Unlock()
	for id, h := range hosts {
		log.Printf("closing viewer %s", id)
		h.Close()
	}
}
