package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/hooks"
	"github.com/soyeahso/meshbuilder/internal/logging"
	"github.com/soyeahso/meshbuilder/internal/session"
	"github.com/soyeahso/meshbuilder/internal/version"
)

var ErrClientClosed = errors.New("client connection closed")

// Server is the meshbuilder HTTP + WebSocket server.
type Server struct {
	cfg      config.Config
	backend  session.Backend
	log      *logging.Logger
	clients  *ClientRegistry
	handlers map[string]RequestHandler
	build    version.Build
	eventSeq atomic.Int64

	// Hook manager (optional, nil if not configured)
	hooks *hooks.Manager

	mu         sync.Mutex
	startedAt  time.Time
	listenAddr string
	httpServer *http.Server
	upgrader   websocket.Upgrader

	// readWait overrides pongWait for new connections when positive.
	readWait time.Duration
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events. Mesh sessions
// opened on the server emit through it too.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// New creates a server that answers requests with backend.
func New(cfg config.Config, backend session.Backend, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:      cfg,
		backend:  backend,
		log:      log.Sub("gateway"),
		clients:  NewClientRegistry(log.Sub("clients")),
		handlers: make(map[string]RequestHandler),
		build:    version.Current(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Server.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerRPCHandlers()
	return s
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin headers.
// Requests without an Origin header come from non-browser clients and are allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return isOriginAllowed(origin, allowed)
	}
}

// Handle registers an RPC method handler.
func (s *Server) Handle(method string, handler RequestHandler) {
	s.handlers[method] = handler
}

// Methods returns the sorted list of registered RPC method names.
func (s *Server) Methods() []string {
	methods := make([]string, 0, len(s.handlers))
	for m := range s.handlers {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	return net.JoinHostPort(cfg.ListenHost(), strconv.Itoa(cfg.Port))
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Server.AllowedOrigins)
}

// Start begins listening for HTTP and WebSocket connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(l net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listenAddr = ln.Addr().String()
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Str("env", s.cfg.Server.Env).
		Int("methods", len(s.handlers)).
		Msg("Build Your Solace Agent Mesh server running")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	// Shutdown when context is cancelled
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventServerStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.Broadcast(EventShutdown, map[string]any{"reason": "server stopping"}, s.eventSeq.Add(1))
		s.clients.CloseAll()
		srv.Shutdown(shutdownCtx)
		if s.hooks != nil {
			s.hooks.Wait()
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenAddr
}

// Uptime returns how long the server has been listening.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// sessionOptions builds the controller options for a connection.
func (s *Server) sessionOptions(client *Client) session.Options {
	return session.Options{
		AutoSeed:         s.cfg.Mesh.AutoSeedEnabled(),
		SeedDelay:        time.Duration(s.cfg.Mesh.SeedDelayMs) * time.Millisecond,
		MessagesPerAgent: s.cfg.Mesh.MessagesPerAgent,
		Hooks:            s.hooks,
		OnChange: func(session.State) {
			s.pushState(client)
		},
	}
}

// pushState sends the connection's current view as a mesh.state event.
func (s *Server) pushState(client *Client) {
	err := client.SendState(func() int64 { return s.eventSeq.Add(1) })
	if err != nil && !errors.Is(err, ErrClientClosed) {
		s.log.Warn().Err(err).Str("connId", client.ConnID).Msg("state push failed")
	}
}

// handleWebSocket upgrades HTTP to WebSocket and runs a mesh session for
// the lifetime of the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("new websocket connection")

	ctx, cancel := context.WithCancel(r.Context())
	client := NewClient(conn, s.readWait, s.log.Sub("ws"))
	client.Session = session.NewController(s.backend, s.sessionOptions(client), s.log)

	s.clients.Add(client)
	defer func() {
		cancel()
		client.Session.Close()
		s.clients.Remove(client.ConnID)
		client.Close()
	}()

	if err := s.hello(client); err != nil {
		s.log.Warn().Err(err).Str("connId", client.ConnID).Msg("hello failed")
		return
	}
	s.pushState(client)

	go client.Keepalive(ctx)
	s.readLoop(ctx, client)
}

// hello announces the server and its methods to a new connection.
func (s *Server) hello(client *Client) error {
	info := ServerInfo{Version: s.build.Version, Commit: s.build.Commit, ConnID: client.ConnID}
	return client.SendEvent(EventHello, newHello(info, s.Methods()), s.eventSeq.Add(1))
}

// readLoop processes incoming frames from a client.
func (s *Server) readLoop(ctx context.Context, client *Client) {
	for {
		frame, err := client.ReadFrame()
		if err != nil {
			var rejected *ErrorShape
			if errors.As(err, &rejected) {
				client.RespondError(frame.ID, *rejected)
				continue
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("connId", client.ConnID).Msg("client closed connection")
			} else {
				s.log.Debug().Err(err).Str("connId", client.ConnID).Msg("read error")
			}
			return
		}

		if frame.Type != FrameTypeRequest {
			s.log.Debug().Str("type", frame.Type).Msg("ignoring non-request frame")
			continue
		}

		s.dispatch(ctx, client, frame)
		if err := client.ExtendRead(); err != nil {
			s.log.Debug().Err(err).Str("connId", client.ConnID).Msg("read deadline")
			return
		}
	}
}

// dispatch routes a request frame to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, client *Client, frame Frame) {
	handler, ok := s.handlers[frame.Method]
	if !ok {
		client.RespondError(frame.ID, ErrorShape{
			Code:    CodeMethodNotFound,
			Message: "unknown method: " + frame.Method,
		})
		return
	}

	handler(&RequestContext{
		Ctx:    ctx,
		Client: client,
		Frame:  frame,
		Server: s,
	})
}
