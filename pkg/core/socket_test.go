package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jojobot/website/pkg/protocol"
)

// mockTransport records messages instead of writing them to a connection.
type mockTransport struct {
	connected bool
	messages  []protocol.Message
	mu        sync.Mutex
}

func newMockTransport() *mockTransport {
	return &mockTransport{connected: true}
}

func (m *mockTransport) Send(msg protocol.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrSocketClosed
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *mockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockTransport) Messages() []protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestNewSocket(t *testing.T) {
	socket := NewSocket("abc", newMockTransport())
	assert.Equal(t, "abc", socket.ID())
	assert.Equal(t, "lv:abc", socket.Topic())
	assert.True(t, socket.IsConnected())
}

func TestSocketSend(t *testing.T) {
	tr := newMockTransport()
	socket := NewSocket("abc", tr)

	msg := protocol.Message{Topic: socket.Topic(), Event: "hello", Payload: map[string]any{"k": "v"}}
	require.NoError(t, socket.Send(msg))

	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "lv:abc", msgs[0].Topic)
	assert.Equal(t, "hello", msgs[0].Event)
	assert.Equal(t, "v", msgs[0].Payload["k"])
}

func TestSocketSendAfterClose(t *testing.T) {
	tr := newMockTransport()
	socket := NewSocket("abc", tr)
	require.NoError(t, socket.Close())

	assert.False(t, socket.IsConnected())
	assert.ErrorIs(t, socket.Send(protocol.Message{Topic: socket.Topic(), Event: "x"}), ErrSocketClosed)
	assert.Empty(t, tr.Messages())
}

func TestSocketSendConcurrent(t *testing.T) {
	tr := newMockTransport()
	socket := NewSocket("abc", tr)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = socket.Send(protocol.Message{Topic: socket.Topic(), Event: "tick"})
		}()
	}
	wg.Wait()
	assert.Len(t, tr.Messages(), 50)
}

func TestSendDiff(t *testing.T) {
	tr := newMockTransport()
	socket := NewSocket("abc", tr)

	require.NoError(t, socket.SendDiff(nil))
	require.NoError(t, socket.SendDiff(&DiffPayload{Version: 1}))
	assert.Empty(t, tr.Messages())

	diff := &DiffPayload{
		Version:   2,
		Slots:     map[string]string{"pager": "Page 2 of 4"},
		HTMLSlots: map[string]string{"commands": "<li>x</li>"},
	}
	require.NoError(t, socket.SendDiff(diff))

	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, protocol.EventDiff, msgs[0].Event)
	assert.Equal(t, "lv:abc", msgs[0].Topic)
	assert.Equal(t, uint64(2), msgs[0].Payload["v"])
	assert.Equal(t, diff.Slots, msgs[0].Payload["s"])
	assert.Equal(t, diff.HTMLSlots, msgs[0].Payload["h"])
	assert.NotContains(t, msgs[0].Payload, "f")
}

func TestDiffPayload(t *testing.T) {
	assert.True(t, (&DiffPayload{}).IsEmpty())
	assert.False(t, (&DiffPayload{Full: "<div></div>"}).IsEmpty())

	d := &DiffPayload{
		Slots:     map[string]string{"a": "123"},
		HTMLSlots: map[string]string{"b": "<p>"},
		Full:      "xy",
	}
	assert.Equal(t, 8, d.Size())
	assert.Equal(t, "xy", d.Map()["f"])
}

func TestParams(t *testing.T) {
	p := Params{"page": "3", "bad": "x"}
	assert.Equal(t, 3, p.Int("page", 1))
	assert.Equal(t, 1, p.Int("bad", 1))
	assert.Equal(t, 7, p.Int("missing", 7))
	assert.Equal(t, "fallback", p.GetDefault("section", "fallback"))
}
