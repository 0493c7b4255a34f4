// Package server serves layouts over a small line protocol, on a websocket
// endpoint and optionally on plain TCP.
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/entity"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/store"
)

type Server struct {
	cfg          *config.Config
	entities     *entity.Factory
	store        *store.Store
	profile      string
	connLimiter  *ConnLimiter
	rateLimiter  *GenRateLimiter
	httpServer   *http.Server
	listener     net.Listener
	clients      map[Client]struct{}
	mu           sync.Mutex
	shutdown     chan struct{}
	shutdownOnce sync.Once
	StartTime    time.Time
}

// NewServer creates a server. entities and st may be nil: without entities
// layouts carry only evidence and stairs, without a store nothing is cached.
// Cached layouts are keyed by the generator's fingerprint, so a changed
// config never serves a stale map.
func NewServer(cfg *config.Config, entities *entity.Factory, st *store.Store) *Server {
	var profile string
	if st != nil {
		var err error
		if profile, err = cfg.Generator.Fingerprint(entities); err != nil {
			logger.Warning("Layout cache disabled", "error", err)
			st = nil
		}
	}
	return &Server{
		cfg:         cfg,
		entities:    entities,
		store:       st,
		profile:     profile,
		connLimiter: NewConnLimiter(cfg.Server.Connections),
		rateLimiter: NewGenRateLimiter(cfg.Server.RateLimit),
		clients:     make(map[Client]struct{}),
		shutdown:    make(chan struct{}),
		StartTime:   time.Now(),
	}
}

// Handler returns the HTTP routes: the websocket endpoint and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// StartWebSocket serves Handler on the configured listen address until
// Shutdown is called.
func (s *Server) StartWebSocket() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("WebSocket server listening", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}

// StartTCP listens on the configured TCP address and serves the line
// protocol there.
func (s *Server) StartTCP() error {
	listener, err := net.Listen("tcp", s.cfg.Server.TCPListen)
	if err != nil {
		return fmt.Errorf("failed to start tcp listener: %w", err)
	}
	logger.Info("TCP server listening", "address", listener.Addr().String())
	return s.ServeTCP(listener)
}

// ServeTCP accepts connections from listener until Shutdown closes it.
func (s *Server) ServeTCP(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Error("Error accepting connection", "error", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	ip := extractIP(remoteAddr)

	if !s.connLimiter.TryAcquire(ip) {
		logger.Warning("Connection rejected - limit exceeded",
			"remote_addr", remoteAddr,
			"ip", ip)
		conn.Write([]byte("error: too many connections\n"))
		conn.Close()
		return
	}
	defer s.connLimiter.Release(ip)

	s.handleClient(NewTCPClient(conn), ip)
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	wsCfg := s.cfg.Server.WebSocket
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := wsCfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(clientIP)
		return
	}
	if wsCfg.MaxMessageSize > 0 {
		wsConn.SetReadLimit(wsCfg.MaxMessageSize)
	}

	go func() {
		defer s.connLimiter.Release(clientIP)
		s.handleClient(NewWebSocketClient(wsConn), clientIP)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	select {
	case <-s.shutdown:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
	default:
		fmt.Fprintln(w, "ok")
	}
}

func (s *Server) track(c Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.shutdown:
		return false
	default:
	}
	s.clients[c] = struct{}{}
	return true
}

func (s *Server) untrack(c Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// layout returns the stored layout for a key or generates and stores one.
// cached reports which happened.
func (s *Server) layout(seed int64, width, height int) (l *dungeon.Layout, cached bool, err error) {
	if s.store != nil {
		stored, err := s.store.GetLayout(s.profile, seed, width, height)
		if err == nil {
			return stored, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warning("Layout store read failed", "seed", seed, "error", err)
		}
	}

	gen, err := s.cfg.Generator.NewGenerator(seed, width, height, s.entities)
	if err != nil {
		return nil, false, err
	}
	l, err = gen.Generate()
	if err != nil {
		return nil, false, err
	}

	if s.store != nil {
		if _, err := s.store.SaveLayout(s.profile, l); err != nil {
			logger.Warning("Layout store write failed", "seed", seed, "error", err)
		}
	}
	return l, false, nil
}

// Shutdown stops both listeners and closes every open session.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		close(s.shutdown)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.httpServer != nil {
			s.httpServer.Close()
		}
		for c := range s.clients {
			c.Close()
		}
		s.mu.Unlock()

		s.rateLimiter.Stop()

		logger.Info("Server shutdown complete", "uptime", time.Since(s.StartTime).Round(time.Second))
	})
}
