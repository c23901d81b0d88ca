package wsbrowser

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/vango-dev/hashnav/pkg/protocol"
)

// Config configures a Server.
type Config struct {
	// HandshakeTimeout bounds the wait for the tab's hello frame.
	HandshakeTimeout time.Duration

	// ReadTimeout, when positive, closes tabs that stay silent for longer.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// MaxMessageSize is the read limit per frame.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header of upgrade requests.
	// nil uses the gorilla/websocket same-origin check.
	CheckOrigin func(r *http.Request) bool

	// Logger is the server logger.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   protocol.FrameHeaderSize + protocol.MaxPayloadSize,
	}
}

// ConnectFunc is called for every tab once its hello arrives. It runs on
// the connection goroutine before any event is read. The returned
// function, if not nil, runs when the tab disconnects.
type ConnectFunc func(w *Window) (disconnect func())

// Server upgrades HTTP requests to tab connections.
type Server struct {
	config   Config
	upgrader websocket.Upgrader
	connect  ConnectFunc
	logger   *slog.Logger
	active   *atomic.Int64
}

// NewServer creates a server that hands every connected tab to connect.
func NewServer(connect ConnectFunc, config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "wsbrowser")
	}
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		connect: connect,
		logger:  logger,
		active:  atomic.NewInt64(0),
	}
}

// Active returns the number of connected tabs.
func (s *Server) Active() int64 {
	return s.active.Load()
}

// ServeHTTP upgrades the request and serves the tab until it disconnects.
func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	if s.config.MaxMessageSize > 0 {
		conn.SetReadLimit(s.config.MaxMessageSize)
	}

	hello, err := s.readHello(conn)
	if err != nil {
		s.logger.Warn("handshake failed", "remote", r.RemoteAddr, "error", err)
		if data, encErr := protocol.NewFrame(protocol.FrameError, protocol.EncodeError(err.Error())).Encode(); encErr == nil {
			conn.WriteMessage(websocket.BinaryMessage, data)
		}
		conn.Close()
		return
	}

	win := newWindow(conn, hello, s.config.WriteTimeout, s.logger.With("remote", r.RemoteAddr))
	s.active.Inc()
	defer s.active.Dec()
	defer win.close()

	s.logger.Info("tab connected", "remote", r.RemoteAddr, "href", hello.Href, "push_state", hello.PushState)
	if s.connect != nil {
		if disconnect := s.connect(win); disconnect != nil {
			win.OnClose(disconnect)
		}
	}
	s.readLoop(conn, win)
	s.logger.Info("tab disconnected", "remote", r.RemoteAddr, "events", win.Events())
}

func (s *Server) readHello(conn *websocket.Conn) (*protocol.Hello, error) {
	if s.config.HandshakeTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, err
	}
	if frame.Type != protocol.FrameHello {
		return nil, protocol.ErrInvalidFrameType
	}
	conn.SetReadDeadline(time.Time{})
	return protocol.DecodeHello(frame.Payload)
}

// readLoop reads frames until the connection closes.
func (s *Server) readLoop(conn *websocket.Conn, win *Window) {
	for {
		if s.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				s.logger.Error("event decode error", "error", err)
				continue
			}
			win.dispatch(ev)

		case protocol.FrameError:
			msg, _ := protocol.DecodeError(frame.Payload)
			s.logger.Warn("tab reported an error", "message", msg)

		default:
			s.logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}
