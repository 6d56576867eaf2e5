// Package transport carries live-view messages between the browser and the server.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/jojobot/website/pkg/protocol"
)

// Common transport errors.
var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendTimeout      = errors.New("send timeout")
	ErrTransportFull    = errors.New("transport buffer full")
)

// Message is the unit a transport carries.
type Message = protocol.Message

// Transport is the interface for live-view transports.
type Transport interface {
	Send(msg Message) error
	Receive() <-chan Message
	Close() error
	IsConnected() bool
	Done() <-chan struct{}
}

// TransportConfig holds transport timeouts and buffer sizes.
type TransportConfig struct {
	// ReadTimeout bounds the wait for the next client frame. Clients
	// heartbeat well inside it.
	ReadTimeout time.Duration

	WriteTimeout time.Duration

	// PingInterval is how often a WebSocket ping is sent.
	PingInterval time.Duration

	MaxMessageSize    int64
	SendBufferSize    int
	ReceiveBufferSize int
}

// DefaultTransportConfig returns sensible defaults.
func DefaultTransportConfig() *TransportConfig {
	return &TransportConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBufferSize:    64,
		ReceiveBufferSize: 64,
	}
}

// BaseTransport provides the channels and connection state shared by transports.
type BaseTransport struct {
	config    *TransportConfig
	connected bool
	sendCh    chan Message
	recvCh    chan Message
	closeCh   chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewBaseTransport creates a new base transport.
func NewBaseTransport(config *TransportConfig) *BaseTransport {
	if config == nil {
		config = DefaultTransportConfig()
	}
	return &BaseTransport{
		config:  config,
		sendCh:  make(chan Message, config.SendBufferSize),
		recvCh:  make(chan Message, config.ReceiveBufferSize),
		closeCh: make(chan struct{}),
	}
}

// Config returns the transport configuration.
func (t *BaseTransport) Config() *TransportConfig {
	return t.config
}

// IsConnected returns the connection status.
func (t *BaseTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// SetConnected updates the connection status.
func (t *BaseTransport) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

// Receive returns the channel of decoded client messages.
func (t *BaseTransport) Receive() <-chan Message {
	return t.recvCh
}

// Done is closed once the transport shuts down.
func (t *BaseTransport) Done() <-chan struct{} {
	return t.closeCh
}

// Close marks the transport closed. It is idempotent.
func (t *BaseTransport) Close() error {
	t.closeOnce.Do(func() {
		t.SetConnected(false)
		close(t.closeCh)
	})
	return nil
}

// Send queues msg for the write loop.
func (t *BaseTransport) Send(msg Message) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	timer := time.NewTimer(t.config.WriteTimeout)
	defer timer.Stop()

	select {
	case t.sendCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	case <-timer.C:
		return ErrSendTimeout
	}
}

// PushMessage delivers an inbound message without blocking.
func (t *BaseTransport) PushMessage(msg Message) error {
	select {
	case <-t.closeCh:
		return ErrConnectionClosed
	default:
	}
	select {
	case t.recvCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	default:
		return ErrTransportFull
	}
}

