package sahmk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/veiloq/sahmk-go/pkg/logging"
	"github.com/veiloq/sahmk-go/pkg/websocket"
)

// handshakeTimeout bounds the welcome and subscribe-ack reads.
const handshakeTimeout = 10 * time.Second

// StreamHandlers carries the callbacks of a streaming session. Nil handlers
// drop the corresponding frames. Handlers run sequentially on the session's
// read goroutine.
type StreamHandlers struct {
	OnQuote func(QuoteUpdate)
	OnError func(StreamError)
}

// StreamSession is one live WebSocket subscription session. It stays open
// until Close is called, the context given to Stream is cancelled, or the
// connection drops with reconnection disabled.
type StreamSession struct {
	conn   websocket.Connector
	logger logging.Logger

	mu      sync.Mutex
	symbols []string
}

// subscribeAction is the wire form of a subscribe request.
type subscribeAction struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// pingFrame is the app-level keep-alive the endpoint expects.
var pingFrame = []byte(`{"action":"ping"}`)

// Stream opens a streaming session subscribed to the given symbols.
// Symbols are subscribed in batches of MaxSubscribeBatch per frame; each
// batch is acknowledged before the next is sent. A keep-alive ping goes out
// every ping interval, and the session redials and resubscribes after an
// unexpected drop (see WithReconnect).
//
// Cancelling ctx tears the session down along with all of its background
// activity.
func (c *Client) Stream(ctx context.Context, symbols []string, handlers StreamHandlers) (*StreamSession, error) {
	streamURL, err := c.streamURL()
	if err != nil {
		return nil, err
	}

	session := &StreamSession{
		logger:  c.logger,
		symbols: append([]string(nil), symbols...),
	}

	conn := websocket.NewConnector(websocket.Config{
		URL:               streamURL,
		HeartbeatInterval: c.pingInterval,
		HeartbeatMessage:  pingFrame,
		Handshake:         session.handshake,
		ReconnectInterval: c.reconnectInterval,
		MaxRetries:        c.maxRetries,
		Logger:            c.logger,
	})
	session.conn = conn

	conn.Handle("quote", func(frame []byte) {
		if handlers.OnQuote == nil {
			return
		}
		var update QuoteUpdate
		if err := json.Unmarshal(frame, &update); err != nil {
			c.logger.Warn("failed to unmarshal quote frame", logging.Error(err))
			return
		}
		handlers.OnQuote(update)
	})
	conn.Handle("ping", func(frame []byte) {
		c.logger.Debug("stream ping")
	})
	conn.Handle("error", func(frame []byte) {
		if handlers.OnError == nil {
			return
		}
		var streamErr StreamError
		if err := json.Unmarshal(frame, &streamErr); err != nil {
			c.logger.Warn("failed to unmarshal error frame", logging.Error(err))
			return
		}
		handlers.OnError(streamErr)
	})

	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// streamURL appends the API key to the streaming endpoint.
func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return "", fmt.Errorf("invalid stream URL: %w", err)
	}
	query := u.Query()
	query.Set("api_key", c.apiKey)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// handshake runs on every fresh connection, including redials: it consumes
// the welcome frame and subscribes the session's symbols batch by batch,
// waiting for each acknowledgement.
func (s *StreamSession) handshake(conn *gws.Conn) error {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var welcome struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := conn.ReadJSON(&welcome); err != nil {
		return fmt.Errorf("reading welcome frame: %w", err)
	}
	if welcome.Type == "error" {
		return fmt.Errorf("stream rejected: %s: %w", welcome.Message, ErrSubscribeFailed)
	}

	s.mu.Lock()
	symbols := append([]string(nil), s.symbols...)
	s.mu.Unlock()

	for _, batch := range batchSymbols(symbols, MaxSubscribeBatch) {
		if err := conn.WriteJSON(subscribeAction{Action: "subscribe", Symbols: batch}); err != nil {
			return fmt.Errorf("sending subscribe: %w", err)
		}

		conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
		var ack struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := conn.ReadJSON(&ack); err != nil {
			return fmt.Errorf("reading subscribe ack: %w", err)
		}
		if ack.Type == "error" {
			return fmt.Errorf("subscribe rejected: %s: %w", ack.Message, ErrSubscribeFailed)
		}
	}
	return nil
}

// Subscribe adds symbols to the live session. The new symbols are also
// included when the session resubscribes after a reconnect.
func (s *StreamSession) Subscribe(symbols ...string) error {
	if !s.conn.IsConnected() {
		return ErrNotConnected
	}

	s.mu.Lock()
	s.symbols = append(s.symbols, symbols...)
	s.mu.Unlock()

	for _, batch := range batchSymbols(symbols, MaxSubscribeBatch) {
		if err := s.conn.Send(subscribeAction{Action: "subscribe", Symbols: batch}); err != nil {
			return fmt.Errorf("sending subscribe: %w", err)
		}
	}
	return nil
}

// Symbols returns the symbols the session is subscribed to.
func (s *StreamSession) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...)
}

// IsConnected reports whether the underlying connection is up.
func (s *StreamSession) IsConnected() bool {
	return s.conn.IsConnected()
}

// Close shuts down the session and all background activity. It is safe to
// call more than once.
func (s *StreamSession) Close() error {
	return s.conn.Close()
}

// batchSymbols splits symbols into chunks of at most size.
func batchSymbols(symbols []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(symbols); start += size {
		end := start + size
		if end > len(symbols) {
			end = len(symbols)
		}
		batches = append(batches, symbols[start:end])
	}
	return batches
}
