package ipc

import (
	"log/slog"
	"net"
	"sync"
)

// Conn is a message-framed transport carrying envelopes. The unix socket
// and WebSocket transports both implement it.
type Conn interface {
	Read() (Envelope, error)
	Write(Envelope) error
	Close() error
}

// streamConn frames envelopes over a byte stream with a length prefix.
type streamConn struct {
	conn net.Conn
	mu   sync.Mutex
}

// NewStreamConn wraps a stream socket (unix or tcp) as a Conn.
func NewStreamConn(conn net.Conn) Conn {
	return &streamConn{conn: conn}
}

func (s *streamConn) Read() (Envelope, error) { return ReadEnvelope(s.conn) }

func (s *streamConn) Write(env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteEnvelope(s.conn, env)
}

func (s *streamConn) Close() error { return s.conn.Close() }

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection is a single simulation host talking to the sidecar.
// Client is filled in once the hello handshake identifies the peer.
type Connection struct {
	conn     Conn
	handlers map[string]Handler
	Client   string
}

func NewConnection(conn Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.conn.Write(env)
}

// Close tears down the underlying transport, ending ReadLoop.
func (c *Connection) Close() error { return c.conn.Close() }

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup. Handler failures and unknown
// message types are answered with an error envelope; the loop keeps going.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := c.conn.Read()
		if err != nil {
			slog.Info("connection read ended", "client", c.Client, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			c.replyError(env.Type, "unsupported message type")
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			c.replyError(env.Type, err.Error())
			continue
		}

		if resp != nil {
			if err := c.conn.Write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "client", c.Client)
		}
	}
}

func (c *Connection) replyError(request, msg string) {
	if err := c.Send(TypeError, ErrorMessage{Request: request, Error: msg}); err != nil {
		slog.Error("failed to send error", "request", request, "error", err)
	}
}
