package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/status"
)

// Service serves the snapshot stream on /ws and metrics on /metrics
type Service struct {
	config *Config
	hub    *Hub

	registry *prometheus.Registry
	server   *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewService creates the service; metrics may be nil
func NewService(cfg *Config, metrics *status.Registry) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if metrics != nil {
		reg.MustRegister(status.NewCollector(metrics, "tickfork"))
	}

	s := &Service{
		config:   cfg,
		hub:      NewHub(cfg),
		registry: reg,
	}
	s.server = &http.Server{Handler: s.Handler()}
	return s
}

// Hub returns the snapshot fan-out
func (s *Service) Hub() *Hub {
	return s.hub
}

// Handler builds the HTTP routes
func (s *Service) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Debug("websocket upgrade failed", "addr", r.RemoteAddr, "error", err)
			return
		}
		s.hub.Subscribe(conn)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Start binds the configured address and serves in the background
func (s *Service) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("network listen %s: %w", s.config.Address, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	core.Go(func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("network service stopped", "error", err)
		}
	})
	slog.Info("network service listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, empty before Start
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes subscribers and shuts the server down
func (s *Service) Stop(ctx context.Context) error {
	s.hub.Close()
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// System broadcasts a snapshot every SnapshotEvery frames
func (s *Service) System() engine.System {
	every := int64(s.config.SnapshotEvery)
	if every < 1 {
		every = 1
	}
	return engine.FuncPriority(10, func(w *engine.World) {
		if s.hub.PeerCount() == 0 {
			return
		}
		if ft, ok := engine.GetResource[*engine.FrameTime](w.Resources); ok && ft.Frame%every != 0 {
			return
		}
		if err := s.hub.Broadcast(BuildSnapshot(w)); err != nil {
			slog.Warn("snapshot broadcast failed", "error", err)
		}
	})
}
