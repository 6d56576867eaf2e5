// Package limits caps live connections per client and rate-limits events
// and API calls.
package limits

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
)

// Common errors.
var (
	ErrTooManyConnections = errors.New("too many connections")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
)

// ConnectionLimiter limits concurrent connections per IP address.
// A zero or negative limit disables it.
type ConnectionLimiter struct {
	maxPerIP int

	mu          sync.Mutex
	connections map[string]int
}

// NewConnectionLimiter creates a new connection limiter.
func NewConnectionLimiter(maxPerIP int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxPerIP:    maxPerIP,
		connections: make(map[string]int),
	}
}

// Acquire takes a connection slot for ip. It returns false when ip is at
// its limit.
func (cl *ConnectionLimiter) Acquire(ip string) bool {
	if cl.maxPerIP <= 0 {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.connections[ip] >= cl.maxPerIP {
		return false
	}
	cl.connections[ip]++
	return true
}

// Release gives back a slot taken by Acquire.
func (cl *ConnectionLimiter) Release(ip string) {
	if cl.maxPerIP <= 0 {
		return
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if n := cl.connections[ip]; n <= 1 {
		delete(cl.connections, ip)
	} else {
		cl.connections[ip] = n - 1
	}
}

// Count returns the current connection count for an IP.
func (cl *ConnectionLimiter) Count(ip string) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.connections[ip]
}

// ClientIP returns the address the request came from. Proxy headers
// (X-Forwarded-For, X-Real-IP) are only honoured when trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
