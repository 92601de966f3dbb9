package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/meshbuilder/internal/logging"
	"github.com/soyeahso/meshbuilder/internal/session"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

// Client is one WebSocket connection and the mesh session it drives.
type Client struct {
	ConnID      string
	Socket      *websocket.Conn
	Session     *session.Controller
	ConnectedAt time.Time

	mu     sync.Mutex
	closed bool

	// stateMu orders snapshot-then-send so a client never receives an
	// older mesh.state after a newer one.
	stateMu sync.Mutex

	// readWait is how long the peer may stay silent, pongs included.
	readWait time.Duration

	log *logging.Logger
}

// NewClient wraps a freshly upgraded connection. readWait <= 0 means
// pongWait. Pongs extend the read deadline; Keepalive sends the pings.
func NewClient(conn *websocket.Conn, readWait time.Duration, log *logging.Logger) *Client {
	if readWait <= 0 {
		readWait = pongWait
	}
	c := &Client{
		ConnID:      uuid.NewString(),
		Socket:      conn,
		ConnectedAt: time.Now(),
		readWait:    readWait,
		log:         log,
	}
	if conn != nil {
		conn.SetReadLimit(maxFrameBytes)
		c.ExtendRead()
		conn.SetPongHandler(func(string) error {
			return c.ExtendRead()
		})
	}
	return c
}

// ExtendRead pushes the read deadline readWait into the future. The read
// loop calls it after every dispatched request, since pongs that arrive
// while a handler blocks are not read until it returns.
func (c *Client) ExtendRead() error {
	return c.Socket.SetReadDeadline(time.Now().Add(c.readWait))
}

// Send writes a frame. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Socket.WriteJSON(frame)
}

// SendEvent sends a named event with payload.
func (c *Client) SendEvent(event string, payload any, seq int64) error {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// SendState pushes the session's current view as a mesh.state event.
// Concurrent callers are serialized so each send carries the newest view.
func (c *Client) SendState(nextSeq func() int64) error {
	if c.Session == nil {
		return nil
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.SendEvent(EventState, c.Session.Snapshot(), nextSeq())
}

// Respond sends a success response for the given request ID.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// RespondError sends an error response for the given request ID.
func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// ReadFrame blocks for the next frame. An *ErrorShape error means the
// message was rejected but the connection is still usable.
func (c *Client) ReadFrame() (Frame, error) {
	_, msg, err := c.Socket.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	f, shape := DecodeFrame(msg)
	if shape != nil {
		return f, shape
	}
	return f, nil
}

// Keepalive pings the peer until ctx ends or a ping fails.
func (c *Client) Keepalive(ctx context.Context) {
	ticker := time.NewTicker(c.readWait * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			err := c.Socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				c.log.Debug().Err(err).Str("connId", c.ConnID).Msg("ping failed")
				return
			}
		}
	}
}

// Close closes the connection once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.Socket.Close()
}

// ClientRegistry tracks open mesh connections.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logging.Logger
}

func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ConnID] = c
	r.log.Info().Str("connId", c.ConnID).Int("open", len(r.clients)).Msg("mesh session opened")
}

// Remove drops a connection and logs how long its session lasted.
func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	delete(r.clients, connID)

	ev := r.log.Info().Str("connId", connID).Int("open", len(r.clients))
	if !c.ConnectedAt.IsZero() {
		ev = ev.Dur("lasted", time.Since(c.ConnectedAt))
	}
	if c.Session != nil {
		s := c.Session.State()
		ev = ev.Str("company", s.Company).Int("agents", len(s.ResolvedAgents()))
	}
	ev.Msg("mesh session closed")
}

func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast sends an event to every open connection.
func (r *ClientRegistry) Broadcast(event string, payload any, seq int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if err := c.SendEvent(event, payload, seq); err != nil {
			r.log.Warn().Err(err).Str("connId", c.ConnID).Msg("broadcast send failed")
		}
	}
}

// CloseAll closes every connection. Sessions end when their read loops
// see the closed sockets.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Close()
		delete(r.clients, id)
	}
}
