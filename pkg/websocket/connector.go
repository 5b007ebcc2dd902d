// Package websocket manages the persistent connection behind a streaming
// session: dialing, the read pump, keep-alive heartbeats, reconnection with
// backoff and dispatch of incoming frames by their "type" field.
//
// The connector knows nothing about stock quotes; the subscribe handshake is
// injected through Config.Handshake and runs after every successful dial,
// which is also what restores subscriptions after a reconnect.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/gorilla/websocket"

	"github.com/veiloq/sahmk-go/pkg/logging"
)

// errConnectorClosed reports use of a connector after Close.
var errConnectorClosed = errors.New("connector closed")

// MessageHandler is a callback invoked with the raw payload of an incoming
// frame. Handlers run sequentially on the read pump goroutine; a slow handler
// delays subsequent messages on the same connection.
type MessageHandler func(message []byte)

// Connector manages a single WebSocket connection.
type Connector interface {
	// Connect dials the endpoint, runs the handshake and starts the
	// background pumps.
	Connect(ctx context.Context) error

	// Close cleanly shuts down the connection and all background activity.
	Close() error

	// Handle registers a handler for frames of the given type.
	Handle(msgType string, handler MessageHandler)

	// Unhandle removes the handler for the given type.
	Unhandle(msgType string)

	// Send marshals message to JSON and writes it as a text frame.
	// A []byte message is written as-is.
	Send(message interface{}) error

	// IsConnected reports whether the connection is currently up.
	IsConnected() bool
}

// Config holds connection configuration.
type Config struct {
	URL string

	// HeartbeatInterval is the period between keep-alive frames.
	HeartbeatInterval time.Duration

	// HeartbeatMessage is the keep-alive payload sent as a text frame.
	// When nil a WebSocket control ping is sent instead.
	HeartbeatMessage []byte

	// Handshake, when set, runs on the raw connection after each successful
	// dial and before the read pump starts. A handshake error fails the dial.
	Handshake func(conn *websocket.Conn) error

	// ReconnectInterval is the base delay between redial attempts.
	ReconnectInterval time.Duration

	// MaxRetries bounds dial attempts. Zero disables automatic reconnection
	// after a dropped connection.
	MaxRetries int

	Logger logging.Logger
}

// Metrics holds connection and message statistics.
type Metrics struct {
	ConnectedTime  time.Time
	MessageCount   int64
	ReconnectCount int64
	ErrorCount     int64
}

type connector struct {
	config Config
	conn   *websocket.Conn

	handlers   map[string]MessageHandler
	handlersMu sync.RWMutex
	writeMu    sync.Mutex

	connected bool
	stateMu   sync.Mutex

	// closed and done track the current connection generation; shutdown is
	// terminal and set only by Close, so an in-flight reconnect can tell a
	// dropped connection from a deliberately closed connector.
	done     chan struct{}
	closed   bool
	shutdown bool
	doneMu   sync.Mutex

	reconnecting bool
	reconnectMu  sync.Mutex

	metrics   Metrics
	metricsMu sync.RWMutex

	logger logging.Logger
}

// NewConnector creates a connector with the given configuration.
func NewConnector(config Config) Connector {
	if config.Logger == nil {
		config.Logger = logging.NewNop()
	}
	return &connector{
		config:   config,
		handlers: make(map[string]MessageHandler),
		closed:   true, // no connection yet
		logger:   config.Logger,
	}
}

// GetMetrics returns a snapshot of the connection metrics.
func (c *connector) GetMetrics() Metrics {
	c.metricsMu.RLock()
	defer c.metricsMu.RUnlock()
	return c.metrics
}

// Connect implements Connector. The dial is retried up to MaxRetries times
// with exponential backoff before giving up.
func (c *connector) Connect(ctx context.Context) error {
	c.reconnectMu.Lock()
	defer c.reconnectMu.Unlock()

	if c.IsConnected() {
		return nil
	}
	if c.isShutdown() {
		return errConnectorClosed
	}
	if ctx.Err() != nil {
		return fmt.Errorf("context already cancelled: %w", ctx.Err())
	}

	c.logger.Debug("dialing websocket",
		logging.String("url", c.config.URL),
		logging.Duration("heartbeat", c.config.HeartbeatInterval),
	)

	attempts := uint(c.config.MaxRetries)
	if attempts < 1 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			if c.isShutdown() {
				return retry.Unrecoverable(errConnectorClosed)
			}
			return c.dial(ctx)
		},
		retry.Attempts(attempts),
		retry.Delay(c.config.ReconnectInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("connection attempt failed",
				logging.Int("attempt", int(n+1)),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("max retries exceeded: %w", err)
	}

	c.logger.Info("websocket connected", logging.String("url", c.config.URL))
	return nil
}

// dial performs one connection attempt: dial, handshake, pump start.
func (c *connector) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		c.countError()
		return err
	}
	if c.config.Handshake != nil {
		if err := c.config.Handshake(conn); err != nil {
			conn.Close()
			c.countError()
			return fmt.Errorf("handshake failed: %w", err)
		}
	}
	if !c.start(ctx, conn) {
		return retry.Unrecoverable(errConnectorClosed)
	}
	return nil
}

// start installs the connection and launches the background pumps. It reports
// false when Close was called in the meantime; the connection is closed and
// nothing is started.
func (c *connector) start(ctx context.Context, conn *websocket.Conn) bool {
	c.doneMu.Lock()
	defer c.doneMu.Unlock()

	if c.shutdown {
		conn.Close()
		return false
	}
	c.done = make(chan struct{})
	c.closed = false
	done := c.done

	c.stateMu.Lock()
	c.conn = conn
	c.connected = true
	c.stateMu.Unlock()

	c.metricsMu.Lock()
	c.metrics.ConnectedTime = time.Now()
	c.metricsMu.Unlock()

	go c.readPump(ctx, conn, done)
	go c.heartbeat(conn, done)
	go func() {
		select {
		case <-ctx.Done():
			c.logger.Info("context cancelled, closing connection")
			c.Close()
		case <-done:
		}
	}()
	return true
}

// readPump reads frames until the connection fails, then triggers
// reconnection unless the close was deliberate.
func (c *connector) readPump(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer func() {
		c.stateMu.Lock()
		c.connected = false
		c.stateMu.Unlock()
		conn.Close()

		c.doneMu.Lock()
		deliberate := c.closed
		if !c.closed && done == c.done {
			close(done)
			c.closed = true
		}
		c.doneMu.Unlock()

		if !deliberate && ctx.Err() == nil && c.config.MaxRetries > 0 {
			go c.reconnect(ctx)
		}
	}()

	readWait := c.config.HeartbeatInterval * 3
	conn.SetPongHandler(func(string) error {
		if readWait > 0 {
			conn.SetReadDeadline(time.Now().Add(readWait))
		}
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if readWait > 0 {
			conn.SetReadDeadline(time.Now().Add(readWait))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", logging.Error(err))
				c.countError()
			}
			return
		}

		c.metricsMu.Lock()
		c.metrics.MessageCount++
		c.metricsMu.Unlock()

		c.dispatch(message)
	}
}

// dispatch routes a frame to the handler registered for its type.
// Dispatch is sequential: one frame is fully handled before the next is read.
func (c *connector) dispatch(message []byte) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &frame); err != nil {
		c.logger.Warn("failed to unmarshal message", logging.Error(err))
		return
	}

	c.handlersMu.RLock()
	handler, ok := c.handlers[frame.Type]
	c.handlersMu.RUnlock()
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panic recovered",
				logging.String("type", frame.Type),
				logging.String("panic", fmt.Sprintf("%v", r)),
			)
		}
	}()
	handler(message)
}

// heartbeat sends periodic keep-alive frames until the connection ends.
func (c *connector) heartbeat(conn *websocket.Conn, done chan struct{}) {
	if c.config.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			var err error
			if c.config.HeartbeatMessage != nil {
				err = conn.WriteMessage(websocket.TextMessage, c.config.HeartbeatMessage)
			} else {
				err = conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// reconnect redials after an unexpected drop. Connect owns the backoff and
// retry budget; the handshake runs again on the fresh connection, which
// restores subscriptions. A Close before or during the redial aborts it.
func (c *connector) reconnect(ctx context.Context) {
	if c.isShutdown() {
		return
	}

	c.reconnectMu.Lock()
	if c.reconnecting {
		c.reconnectMu.Unlock()
		return
	}
	c.reconnecting = true
	c.reconnectMu.Unlock()

	defer func() {
		c.reconnectMu.Lock()
		c.reconnecting = false
		c.reconnectMu.Unlock()
	}()

	c.metricsMu.Lock()
	c.metrics.ReconnectCount++
	c.metricsMu.Unlock()

	if err := c.Connect(ctx); err != nil {
		c.logger.Error("reconnection failed", logging.Error(err))
		c.countError()
		return
	}
	c.logger.Info("reconnected")
}

// Handle implements Connector.
func (c *connector) Handle(msgType string, handler MessageHandler) {
	c.handlersMu.Lock()
	c.handlers[msgType] = handler
	c.handlersMu.Unlock()
}

// Unhandle implements Connector.
func (c *connector) Unhandle(msgType string) {
	c.handlersMu.Lock()
	delete(c.handlers, msgType)
	c.handlersMu.Unlock()
}

// Send implements Connector.
func (c *connector) Send(message interface{}) error {
	c.stateMu.Lock()
	conn := c.conn
	connected := c.connected
	c.stateMu.Unlock()
	if !connected || conn == nil {
		return fmt.Errorf("websocket not connected")
	}

	data, ok := message.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// IsConnected implements Connector.
func (c *connector) IsConnected() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.connected
}

// Close implements Connector. It is terminal: any in-flight or later
// reconnection attempt aborts once Close has been called.
func (c *connector) Close() error {
	c.doneMu.Lock()
	c.shutdown = true
	wasClosed := c.closed
	if !c.closed {
		close(c.done)
		c.closed = true
	}
	c.doneMu.Unlock()
	if wasClosed {
		return nil
	}

	c.stateMu.Lock()
	c.connected = false
	conn := c.conn
	c.stateMu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closed connection"))
		c.writeMu.Unlock()

		err := conn.Close()
		if err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
			return err
		}
	}
	return nil
}

func (c *connector) isShutdown() bool {
	c.doneMu.Lock()
	defer c.doneMu.Unlock()
	return c.shutdown
}

func (c *connector) countError() {
	c.metricsMu.Lock()
	c.metrics.ErrorCount++
	c.metricsMu.Unlock()
}
