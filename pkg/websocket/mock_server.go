package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// MockServer is an in-process WebSocket server that speaks the SAHMK stream
// protocol: it greets every connection with a welcome frame, acknowledges
// subscribe actions and lets tests broadcast quote frames to clients.
type MockServer struct {
	server *httptest.Server
	url    string

	mu            sync.RWMutex
	writeMu       sync.Mutex // serializes writes across goroutines
	connections   map[*websocket.Conn]bool
	received      [][]byte
	subscriptions []string

	onConnect         func(*websocket.Conn)
	onMessage         func(*websocket.Conn, []byte)
	welcome           []byte
	rejectHTTP        bool
	dropConns         bool
	failNextSubscribe string
	lastAPIKey        string
}

// NewMockServer starts a mock server with a default welcome frame.
func NewMockServer() *MockServer {
	mock := &MockServer{
		connections: make(map[*websocket.Conn]bool),
		welcome:     []byte(`{"type":"connected"}`),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handleConnection))
	mock.url = "ws" + strings.TrimPrefix(mock.server.URL, "http")
	return mock
}

// URL returns the server's WebSocket URL.
func (m *MockServer) URL() string { return m.url }

// Close shuts down the server.
func (m *MockServer) Close() { m.server.Close() }

// SetWelcome replaces the frame sent to each new connection. An error-typed
// welcome makes clients fail their handshake.
func (m *MockServer) SetWelcome(frame []byte) {
	m.mu.Lock()
	m.welcome = frame
	m.mu.Unlock()
}

// SetRejectConnection makes the server refuse the HTTP upgrade.
func (m *MockServer) SetRejectConnection(reject bool) {
	m.mu.Lock()
	m.rejectHTTP = reject
	m.mu.Unlock()
}

// SetDropConnection makes the server drop connections on the next read.
func (m *MockServer) SetDropConnection(drop bool) {
	m.mu.Lock()
	m.dropConns = drop
	m.mu.Unlock()
}

// DropConnections forcibly closes every active connection.
func (m *MockServer) DropConnections() {
	m.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.connections))
	for conn := range m.connections {
		conns = append(conns, conn)
		delete(m.connections, conn)
	}
	m.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// FailNextSubscribe makes the server answer the next subscribe action with an
// error frame carrying the given message.
func (m *MockServer) FailNextSubscribe(message string) {
	m.mu.Lock()
	m.failNextSubscribe = message
	m.mu.Unlock()
}

// OnConnect sets a callback invoked for each new connection.
func (m *MockServer) OnConnect(callback func(*websocket.Conn)) {
	m.mu.Lock()
	m.onConnect = callback
	m.mu.Unlock()
}

// OnMessage sets a callback invoked for each received text frame.
func (m *MockServer) OnMessage(callback func(*websocket.Conn, []byte)) {
	m.mu.Lock()
	m.onMessage = callback
	m.mu.Unlock()
}

// Broadcast sends a frame to every connected client.
func (m *MockServer) Broadcast(frame []byte) {
	m.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(m.connections))
	for conn := range m.connections {
		conns = append(conns, conn)
	}
	m.mu.RUnlock()

	for _, conn := range conns {
		if err := m.write(conn, frame); err != nil {
			m.removeConnection(conn)
		}
	}
}

// write serializes frame writes; gorilla connections do not allow
// concurrent writers.
func (m *MockServer) write(conn *websocket.Conn, frame []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// BroadcastQuote sends a quote frame for symbol with the given payload.
func (m *MockServer) BroadcastQuote(symbol string, data map[string]interface{}) {
	frame, _ := json.Marshal(map[string]interface{}{
		"type":   "quote",
		"symbol": symbol,
		"data":   data,
	})
	m.Broadcast(frame)
}

// LastAPIKey returns the api_key query parameter of the latest connection.
func (m *MockServer) LastAPIKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastAPIKey
}

// ConnectionCount returns the number of active connections.
func (m *MockServer) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// ReceivedMessages returns a copy of all frames received from clients.
func (m *MockServer) ReceivedMessages() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(m.received))
	copy(out, m.received)
	return out
}

// SubscribedSymbols returns every symbol seen in subscribe actions, in order.
func (m *MockServer) SubscribedSymbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.subscriptions))
	copy(out, m.subscriptions)
	return out
}

// SubscribeFrames returns the symbol batches of each subscribe action.
func (m *MockServer) SubscribeFrames() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var frames [][]string
	for _, raw := range m.received {
		var action struct {
			Action  string   `json:"action"`
			Symbols []string `json:"symbols"`
		}
		if err := json.Unmarshal(raw, &action); err == nil && action.Action == "subscribe" {
			frames = append(frames, action.Symbols)
		}
	}
	return frames
}

func (m *MockServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	reject := m.rejectHTTP
	welcome := m.welcome
	onConnect := m.onConnect
	m.mu.RUnlock()

	if reject {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	m.mu.Lock()
	m.lastAPIKey = r.URL.Query().Get("api_key")
	m.mu.Unlock()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if err := m.write(conn, welcome); err != nil {
		conn.Close()
		return
	}

	m.addConnection(conn)
	if onConnect != nil {
		onConnect(conn)
	}
	defer func() {
		m.removeConnection(conn)
		conn.Close()
	}()

	for {
		m.mu.RLock()
		drop := m.dropConns
		m.mu.RUnlock()
		if drop {
			return
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		m.mu.Lock()
		m.received = append(m.received, message)
		onMessage := m.onMessage
		m.mu.Unlock()

		if onMessage != nil {
			onMessage(conn, message)
		}
		m.handleAction(conn, message)
	}
}

// handleAction answers subscribe and ping actions the way the live endpoint does.
func (m *MockServer) handleAction(conn *websocket.Conn, message []byte) {
	var action struct {
		Action  string   `json:"action"`
		Symbols []string `json:"symbols"`
	}
	if err := json.Unmarshal(message, &action); err != nil {
		return
	}

	switch action.Action {
	case "subscribe":
		m.mu.Lock()
		failMsg := m.failNextSubscribe
		m.failNextSubscribe = ""
		if failMsg == "" {
			m.subscriptions = append(m.subscriptions, action.Symbols...)
		}
		m.mu.Unlock()

		if failMsg != "" {
			ack, _ := json.Marshal(map[string]string{"type": "error", "message": failMsg})
			m.write(conn, ack)
			return
		}
		ack, _ := json.Marshal(map[string]interface{}{
			"type":    "subscribed",
			"symbols": action.Symbols,
		})
		m.write(conn, ack)
	case "ping":
		m.write(conn, []byte(`{"type":"pong"}`))
	}
}

func (m *MockServer) addConnection(conn *websocket.Conn) {
	m.mu.Lock()
	m.connections[conn] = true
	m.mu.Unlock()
}

func (m *MockServer) removeConnection(conn *websocket.Conn) {
	m.mu.Lock()
	delete(m.connections, conn)
	m.mu.Unlock()
}

func setupMockServer(t *testing.T) (*MockServer, string) {
	t.Helper()
	mock := NewMockServer()
	t.Cleanup(mock.Close)
	return mock, mock.URL()
}
