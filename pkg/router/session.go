package router

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jojobot/website/pkg/core"
	"github.com/jojobot/website/pkg/transport"
)

// LiveViewSession binds one component instance to one live connection.
type LiveViewSession struct {
	ID        string
	SocketID  string
	Topic     string
	Component core.Component
	Socket    *core.Socket
	Transport transport.Transport
	Params    core.Params
	RemoteIP  string
	Session   core.Session
	CreatedAt time.Time

	joinRef      string
	lastActivity time.Time
	mounted      bool
	closeReason  core.TerminateReason

	// Owned by the message loop goroutine.
	version    uint64
	slotHashes map[string]uint64
	pageHash   uint64

	mu sync.RWMutex
}

// NewLiveViewSession creates a session for socketID.
func NewLiveViewSession(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	now := time.Now()
	return &LiveViewSession{
		ID:           uuid.NewString(),
		SocketID:     socketID,
		Topic:        "lv:" + socketID,
		Component:    comp,
		Params:       params,
		Session:      session,
		CreatedAt:    now,
		lastActivity: now,
		closeReason:  core.TerminateNormal,
	}
}

// UpdateActivity records client activity.
func (s *LiveViewSession) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// LastActivity returns the time of the last client message.
func (s *LiveViewSession) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// SetMounted marks the component as mounted.
func (s *LiveViewSession) SetMounted(mounted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = mounted
}

// IsMounted reports whether the component has been mounted.
func (s *LiveViewSession) IsMounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// SetJoinRef stores the join reference.
func (s *LiveViewSession) SetJoinRef(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinRef = ref
}

// JoinRef returns the join reference.
func (s *LiveViewSession) JoinRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joinRef
}

// Close records why the session is ending and closes its transport.
// The message loop observes the closed transport and terminates the component.
func (s *LiveViewSession) Close(reason core.TerminateReason) {
	s.mu.Lock()
	s.closeReason = reason
	s.mu.Unlock()
	if s.Transport != nil {
		s.Transport.Close()
	}
}

// CloseReason returns the reason recorded by Close.
func (s *LiveViewSession) CloseReason() core.TerminateReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closeReason
}

// LiveViewSessionManager tracks active live sessions.
type LiveViewSessionManager struct {
	sessions    map[string]*LiveViewSession
	maxSessions int
	sessionTTL  time.Duration
	mu          sync.RWMutex
}

// LiveViewSessionManagerConfig configures the session manager.
type LiveViewSessionManagerConfig struct {
	// MaxSessions caps concurrent sessions; 0 means unlimited.
	MaxSessions int
	// SessionTTL is the idle time after which Cleanup closes a session; 0 disables expiry.
	SessionTTL time.Duration
}

// DefaultSessionManagerConfig returns the default limits.
func DefaultSessionManagerConfig() *LiveViewSessionManagerConfig {
	return &LiveViewSessionManagerConfig{
		MaxSessions: 10000,
		SessionTTL:  30 * time.Minute,
	}
}

// NewLiveViewSessionManagerWithConfig creates a manager with custom limits.
func NewLiveViewSessionManagerWithConfig(config *LiveViewSessionManagerConfig) *LiveViewSessionManager {
	if config == nil {
		config = DefaultSessionManagerConfig()
	}
	return &LiveViewSessionManager{
		sessions:    make(map[string]*LiveViewSession),
		maxSessions: config.MaxSessions,
		sessionTTL:  config.SessionTTL,
	}
}

// Create registers a new session. When the manager is full the least
// recently active session is evicted and closed.
func (m *LiveViewSessionManager) Create(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	m.mu.Lock()
	var evicted *LiveViewSession
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		evicted = m.evictOldestLocked()
	}
	lvSession := NewLiveViewSession(socketID, comp, params, session)
	m.sessions[lvSession.ID] = lvSession
	m.mu.Unlock()

	if evicted != nil {
		evicted.Close(core.TerminateTimeout)
	}
	return lvSession
}

// Remove forgets a session.
func (m *LiveViewSessionManager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Count returns the number of active sessions.
func (m *LiveViewSessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MaxSessions returns the configured cap, 0 meaning unlimited.
func (m *LiveViewSessionManager) MaxSessions() int {
	return m.maxSessions
}

// All returns a snapshot of all sessions.
func (m *LiveViewSessionManager) All() []*LiveViewSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*LiveViewSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// Cleanup closes sessions idle for longer than the TTL and returns how many it closed.
func (m *LiveViewSessionManager) Cleanup() int {
	if m.sessionTTL <= 0 {
		return 0
	}
	m.mu.Lock()
	now := time.Now()
	var stale []*LiveViewSession
	for id, s := range m.sessions {
		if now.Sub(s.LastActivity()) > m.sessionTTL {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close(core.TerminateTimeout)
	}
	return len(stale)
}

// evictOldestLocked removes the least recently active session. Callers hold m.mu.
func (m *LiveViewSessionManager) evictOldestLocked() *LiveViewSession {
	var oldest *LiveViewSession
	for _, s := range m.sessions {
		if oldest == nil || s.LastActivity().Before(oldest.LastActivity()) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.ID)
	}
	return oldest
}

// StartCleanupRoutine runs Cleanup every interval until stopCh is closed.
func (m *LiveViewSessionManager) StartCleanupRoutine(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Cleanup()
			case <-stopCh:
				return
			}
		}
	}()
}
