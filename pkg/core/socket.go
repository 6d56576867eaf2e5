package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jojobot/website/pkg/protocol"
)

// Common socket errors.
var (
	ErrSocketClosed = errors.New("socket is closed")
	ErrSendFailed   = errors.New("failed to send message")
)

// Transport is the interface for underlying connection transports.
type Transport interface {
	Send(msg protocol.Message) error
	Close() error
	IsConnected() bool
}

// Socket is the server side of one live connection.
type Socket struct {
	id        string
	topic     string
	connected bool

	transport Transport
	mu        sync.RWMutex
}

// NewSocket creates a new socket with the given ID and transport.
func NewSocket(id string, transport Transport) *Socket {
	return &Socket{
		id:        id,
		topic:     "lv:" + id,
		connected: true,
		transport: transport,
	}
}

// ID returns the socket's unique identifier.
func (s *Socket) ID() string {
	return s.id
}

// Topic returns the channel topic, "lv:<id>".
func (s *Socket) Topic() string {
	return s.topic
}

// IsConnected returns true if the socket is connected.
func (s *Socket) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && s.transport != nil && s.transport.IsConnected()
}

// Send sends a message to the client. It is safe to call concurrently with Close.
func (s *Socket) Send(msg protocol.Message) error {
	s.mu.RLock()
	connected := s.connected
	transport := s.transport
	s.mu.RUnlock()

	if !connected || transport == nil || !transport.IsConnected() {
		return ErrSocketClosed
	}

	if err := transport.Send(msg); err != nil {
		s.mu.RLock()
		stillConnected := s.connected
		s.mu.RUnlock()
		if !stillConnected {
			return ErrSocketClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// DiffPayload is the patch format sent to clients.
// Text slots replace textContent, HTML slots replace innerHTML and Full
// replaces the whole live container.
type DiffPayload struct {
	Version   uint64            `json:"v"`
	Slots     map[string]string `json:"s,omitempty"`
	HTMLSlots map[string]string `json:"h,omitempty"`
	Full      string            `json:"f,omitempty"`
}

// IsEmpty returns true if the payload has no changes.
func (d *DiffPayload) IsEmpty() bool {
	return len(d.Slots) == 0 && len(d.HTMLSlots) == 0 && d.Full == ""
}

// Size returns the total size of the patched content in bytes.
func (d *DiffPayload) Size() int {
	size := len(d.Full)
	for _, content := range d.Slots {
		size += len(content)
	}
	for _, content := range d.HTMLSlots {
		size += len(content)
	}
	return size
}

// Map converts the payload into a message payload.
func (d *DiffPayload) Map() map[string]any {
	m := map[string]any{"v": d.Version}
	if len(d.Slots) > 0 {
		m["s"] = d.Slots
	}
	if len(d.HTMLSlots) > 0 {
		m["h"] = d.HTMLSlots
	}
	if d.Full != "" {
		m["f"] = d.Full
	}
	return m
}

// SendDiff pushes a non-empty diff to the client.
func (s *Socket) SendDiff(payload *DiffPayload) error {
	if payload == nil || payload.IsEmpty() {
		return nil
	}
	return s.Send(protocol.Diff(s.topic, payload.Map()))
}

// Close closes the socket connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.connected = false
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		return transport.Close()
	}
	return nil
}
