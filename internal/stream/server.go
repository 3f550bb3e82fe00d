package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/sim"
)

const (
	DefaultTick  = time.Second / 60
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
	maxMessage   = 1 << 16
)

// Server steps a shared world and broadcasts its state to every connected
// websocket client once per tick.
type Server struct {
	world    *sim.SyncWorld
	scene    sim.Scene
	tick     time.Duration
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	ticks   int
}

type Option func(*Server)

func WithTick(d time.Duration) Option { return func(s *Server) { s.tick = d } }

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// New populates w with scene. The world is owned by the server afterwards.
func New(w *sim.World, scene sim.Scene, opts ...Option) (*Server, error) {
	if err := scene.Populate(w); err != nil {
		return nil, err
	}
	s := &Server{
		world:   sim.NewSyncWorld(w),
		scene:   scene,
		tick:    DefaultTick,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Run steps and broadcasts until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return ctx.Err()
		case <-ticker.C:
			s.world.Step()
			s.Broadcast()
		}
	}
}

// ListenAndServe serves the handler on addr and runs the step loop until ctx
// is done or either fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "endpoint", "/ws")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		cancel()
	}()

	runErr := s.Run(ctx)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)

	select {
	case err := <-errc:
		return err
	default:
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// Broadcast sends the current state to every client. Clients that cannot
// keep up are dropped.
func (s *Server) Broadcast() {
	s.mu.Lock()
	s.ticks++
	tick := s.ticks
	s.mu.Unlock()

	b, err := Encode(MsgState, buildState(tick, s.world.Snapshot()))
	if err != nil {
		s.logger.Error("encode state", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- b:
		default:
			s.logger.Warn("client too slow, dropping", "remote", c.remote)
			s.removeLocked(c)
		}
	}
}

func (s *Server) NumClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) World() *sim.SyncWorld { return s.world }

func buildState(tick int, snap dynamo.Snapshot) State {
	st := State{
		Tick:    tick,
		Gravity: [2]float64{snap.Gravity[0], snap.Gravity[1]},
		Bodies:  make([]BodySnapshot, 0, len(snap.Bodies)),
	}
	for _, b := range snap.Bodies {
		bs := BodySnapshot{X: b.Pos[0], Y: b.Pos[1], VX: b.Vel[0], VY: b.Vel[1]}
		if b.Shape != nil {
			bs.Shape = b.Shape.Kind()
		}
		if ball, ok := b.Shape.(dynamo.Ball); ok {
			bs.Size = ball.Size
		}
		st.Bodies = append(st.Bodies, bs)
	}
	return st
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), remote: r.RemoteAddr}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	if b, err := Encode(MsgState, buildState(s.ticks, s.world.Snapshot())); err == nil {
		c.send <- b
	}
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", c.remote)

	go c.writePump()
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		s.removeLocked(c)
		s.mu.Unlock()
		s.logger.Info("client disconnected", "remote", c.remote)
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := s.handleCommand(msg); err != nil {
			s.logger.Warn("bad command", "remote", c.remote, "err", err)
			if b, err := Encode(MsgError, Error{Message: err.Error()}); err == nil {
				s.trySend(c, b)
			}
		}
	}
}

func (s *Server) trySend(c *client, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (s *Server) handleCommand(msg []byte) error {
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}

	switch env.T {
	case MsgSetGravity:
		g, err := DecodePayload[SetGravity](env)
		if err != nil {
			return err
		}
		s.world.SetGravity(g.X, g.Y)
		s.logger.Debug("gravity set", "x", g.X, "y", g.Y)
	case MsgReset:
		if err := s.world.Update(s.scene.Populate); err != nil {
			return err
		}
		s.logger.Debug("world reset", "scene", s.scene.Name)
	default:
		return errors.New("unknown message type: " + env.T)
	}
	return nil
}

// removeLocked must be called with s.mu held.
func (s *Server) removeLocked(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.removeLocked(c)
	}
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// writePump owns all writes to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
