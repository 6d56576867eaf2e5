package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jojobot/website/pkg/core"
	"github.com/jojobot/website/pkg/transport"
)

// stubTransport satisfies transport.Transport without a network connection.
type stubTransport struct {
	recv      chan transport.Message
	done      chan struct{}
	closeOnce sync.Once
}

func newStubTransport() *stubTransport {
	return &stubTransport{recv: make(chan transport.Message), done: make(chan struct{})}
}

func (s *stubTransport) Send(msg transport.Message) error { return nil }
func (s *stubTransport) Receive() <-chan transport.Message { return s.recv }
func (s *stubTransport) IsConnected() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
func (s *stubTransport) Done() <-chan struct{} { return s.done }
func (s *stubTransport) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func TestSessionManagerCreateRemove(t *testing.T) {
	m := NewLiveViewSessionManagerWithConfig(nil)
	s := m.Create("sock-1", newCounter(), core.Params{"section": "fun"}, core.Session{})

	assert.Equal(t, "lv:sock-1", s.Topic)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Count())

	all := m.All()
	require.Len(t, all, 1)
	assert.Same(t, s, all[0])
	assert.Equal(t, 10000, m.MaxSessions())

	m.Remove(s.ID)
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.All())
}

func TestSessionManagerEvictsOldest(t *testing.T) {
	m := NewLiveViewSessionManagerWithConfig(&LiveViewSessionManagerConfig{MaxSessions: 2, SessionTTL: time.Hour})

	old := m.Create("a", newCounter(), nil, nil)
	old.Transport = newStubTransport()
	old.lastActivity = time.Now().Add(-time.Minute)

	newer := m.Create("b", newCounter(), nil, nil)
	newer.Transport = newStubTransport()

	m.Create("c", newCounter(), nil, nil)

	assert.Equal(t, 2, m.Count())
	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	assert.False(t, old.Transport.IsConnected())
	assert.Equal(t, core.TerminateTimeout, old.CloseReason())
	assert.True(t, newer.Transport.IsConnected())
}

func TestSessionManagerCleanup(t *testing.T) {
	m := NewLiveViewSessionManagerWithConfig(&LiveViewSessionManagerConfig{SessionTTL: time.Minute})

	idle := m.Create("idle", newCounter(), nil, nil)
	idle.Transport = newStubTransport()
	idle.lastActivity = time.Now().Add(-time.Hour)

	active := m.Create("active", newCounter(), nil, nil)
	active.Transport = newStubTransport()

	assert.Equal(t, 1, m.Cleanup())
	assert.Equal(t, 1, m.Count())
	assert.False(t, idle.Transport.IsConnected())
	assert.True(t, active.Transport.IsConnected())
	assert.Equal(t, 0, m.MaxSessions())
}

func TestSessionManagerZeroTTLKeepsSessions(t *testing.T) {
	m := NewLiveViewSessionManagerWithConfig(&LiveViewSessionManagerConfig{})

	s := m.Create("fresh", newCounter(), nil, nil)
	s.Transport = newStubTransport()
	s.lastActivity = time.Now().Add(-time.Millisecond)

	assert.Equal(t, 0, m.Cleanup())
	assert.Equal(t, 1, m.Count())
	assert.True(t, s.Transport.IsConnected())
}

func TestSessionState(t *testing.T) {
	s := NewLiveViewSession("x", newCounter(), nil, nil)
	assert.False(t, s.IsMounted())
	s.SetMounted(true)
	assert.True(t, s.IsMounted())

	s.SetJoinRef("7")
	assert.Equal(t, "7", s.JoinRef())

	before := s.LastActivity()
	time.Sleep(2 * time.Millisecond)
	s.UpdateActivity()
	assert.True(t, s.LastActivity().After(before))

	// Close without a transport only records the reason.
	s.Close(core.TerminateShutdown)
	assert.Equal(t, core.TerminateShutdown, s.CloseReason())
}

func TestMessageLoopTerminatesOnTransportClose(t *testing.T) {
	r := New()
	comp := newCounter()
	tr := newStubTransport()

	s := r.SessionManager().Create("loop", comp, nil, nil)
	s.Transport = tr
	s.Socket = core.NewSocket("loop", tr)

	done := make(chan struct{})
	go func() {
		r.messageLoop(context.Background(), s)
		close(done)
	}()

	s.Close(core.TerminateTimeout)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("message loop did not exit")
	}
	assert.Equal(t, core.TerminateTimeout, <-comp.terminated)
	assert.Equal(t, 0, r.SessionManager().Count())
}
