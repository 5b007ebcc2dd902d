package websocket

import (
	"context"
	"encoding/json"
	"sync"
)

// MockConnector implements the Connector interface for testing without a
// network connection.
type MockConnector struct {
	mu sync.RWMutex

	connected bool
	handlers  map[string]MessageHandler
	sent      []interface{}

	connectCalls int
	closeCalls   int
	sendCalls    int
	handleCalls  map[string]int

	connectError error
	sendError    error
	closeError   error
}

// NewMockConnector creates a mock connector.
func NewMockConnector() *MockConnector {
	return &MockConnector{
		handlers:    make(map[string]MessageHandler),
		handleCalls: make(map[string]int),
	}
}

// Connect implements Connector.
func (m *MockConnector) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connectCalls++
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close implements Connector.
func (m *MockConnector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeCalls++
	if m.closeError != nil {
		return m.closeError
	}
	m.connected = false
	return nil
}

// Handle implements Connector.
func (m *MockConnector) Handle(msgType string, handler MessageHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handleCalls[msgType]++
	m.handlers[msgType] = handler
}

// Unhandle implements Connector.
func (m *MockConnector) Unhandle(msgType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, msgType)
}

// Send implements Connector.
func (m *MockConnector) Send(message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sendCalls++
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, message)
	return nil
}

// IsConnected implements Connector.
func (m *MockConnector) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SimulateMessage dispatches a raw frame to the handler registered for its
// type, the way the real read pump would.
func (m *MockConnector) SimulateMessage(frame []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		return
	}

	m.mu.RLock()
	handler, ok := m.handlers[msg.Type]
	m.mu.RUnlock()
	if ok {
		handler(frame)
	}
}

// SentMessages returns everything passed to Send.
func (m *MockConnector) SentMessages() []interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]interface{}, len(m.sent))
	copy(out, m.sent)
	return out
}

// Test hooks for simulating errors and inspecting call counts.

func (m *MockConnector) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

func (m *MockConnector) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendError = err
}

func (m *MockConnector) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeError = err
}

func (m *MockConnector) GetConnectCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectCalls
}

func (m *MockConnector) GetCloseCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closeCalls
}

func (m *MockConnector) GetSendCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sendCalls
}

func (m *MockConnector) GetHandleCalls(msgType string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handleCalls[msgType]
}
