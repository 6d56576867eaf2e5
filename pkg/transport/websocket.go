package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/jojobot/website/pkg/logging"
	"github.com/jojobot/website/pkg/protocol"
)

// WebSocket security errors
var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// WebSocketConfig configures WebSocket security and framing.
type WebSocketConfig struct {
	// AllowedOrigins lists extra origins allowed to connect. When empty and
	// InsecureDevMode is false, only same-origin connections are accepted.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation. Development only.
	InsecureDevMode bool

	// Codecs supplies the subprotocols offered to clients. Nil means
	// protocol.NewCodecRegistry().
	Codecs *protocol.CodecRegistry

	Logger logging.Logger
}

// DefaultWebSocketConfig returns secure default configuration.
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		Codecs: protocol.NewCodecRegistry(),
		Logger: logging.NopLogger{},
	}
}

// WebSocketTransport implements Transport over a server-side WebSocket.
type WebSocketTransport struct {
	*BaseTransport
	conn     *websocket.Conn
	codec    protocol.Codec
	wsConfig *WebSocketConfig
	logger   logging.Logger
	mu       sync.Mutex
}

// NewWebSocketTransport creates a transport with default security settings.
func NewWebSocketTransport(config *TransportConfig) *WebSocketTransport {
	return NewWebSocketTransportWithConfig(config, nil)
}

// NewWebSocketTransportWithConfig creates a WebSocket transport with security config.
func NewWebSocketTransportWithConfig(config *TransportConfig, wsConfig *WebSocketConfig) *WebSocketTransport {
	if wsConfig == nil {
		wsConfig = DefaultWebSocketConfig()
	}
	if wsConfig.Codecs == nil {
		wsConfig.Codecs = protocol.NewCodecRegistry()
	}
	logger := wsConfig.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &WebSocketTransport{
		BaseTransport: NewBaseTransport(config),
		codec:         wsConfig.Codecs.Default(),
		wsConfig:      wsConfig,
		logger:        logger,
	}
}

// isOriginAllowed checks if the origin is allowed for WebSocket connections.
func (t *WebSocketTransport) isOriginAllowed(origin string, requestHost string) bool {
	if t.wsConfig.InsecureDevMode {
		return true
	}
	// Browsers always send Origin; its absence means a non-browser client.
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}
	if originURL.Host == requestHost {
		return true
	}

	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host == originURL.Host {
			return true
		}
	}
	return false
}

// Codec returns the codec negotiated for this connection.
func (t *WebSocketTransport) Codec() protocol.Codec {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.codec
}

// Upgrade validates the origin, accepts the WebSocket, negotiates the codec
// from the subprotocol and starts the read, write and ping loops.
func (t *WebSocketTransport) Upgrade(w http.ResponseWriter, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if !t.isOriginAllowed(origin, r.Host) {
		http.Error(w, "Forbidden: Origin not allowed", http.StatusForbidden)
		return ErrOriginNotAllowed
	}

	// The origin was vetted above; hand the same decision to the library.
	opts := &websocket.AcceptOptions{
		Subprotocols:       t.wsConfig.Codecs.Subprotocols(),
		InsecureSkipVerify: true,
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		return fmt.Errorf("accept websocket: %w", err)
	}
	conn.SetReadLimit(t.config.MaxMessageSize)

	codec := t.wsConfig.Codecs.Negotiate(conn.Subprotocol())

	t.mu.Lock()
	t.conn = conn
	t.codec = codec
	t.mu.Unlock()
	t.SetConnected(true)

	t.logger.Debug("websocket accepted",
		logging.String("codec", codec.Name()),
		logging.String("remote", r.RemoteAddr),
	)

	go t.readLoop()
	go t.writeLoop()
	go t.pingLoop()

	return nil
}

// Close closes the WebSocket connection.
func (t *WebSocketTransport) Close() error {
	t.BaseTransport.Close()

	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (t *WebSocketTransport) currentConn() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

// readLoop decodes client frames into the receive channel. Malformed frames
// are dropped; a read error or timeout closes the transport.
func (t *WebSocketTransport) readLoop() {
	defer t.Close()

	codec := t.Codec()
	for {
		conn := t.currentConn()
		if conn == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), t.config.ReadTimeout)
		_, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && websocket.CloseStatus(err) != websocket.StatusGoingAway {
				t.logger.Debug("websocket read ended", logging.Err(err))
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			t.logger.Debug("dropping malformed frame", logging.Err(err), logging.Int("bytes", len(data)))
			continue
		}

		if err := t.PushMessage(msg); err != nil {
			if errors.Is(err, ErrConnectionClosed) {
				return
			}
			t.logger.Warn("dropping inbound message", logging.String("event", msg.Event), logging.Err(err))
		}
	}
}

// writeLoop encodes queued messages onto the socket.
func (t *WebSocketTransport) writeLoop() {
	codec := t.Codec()
	msgType := websocket.MessageText
	if codec.Binary() {
		msgType = websocket.MessageBinary
	}

	for {
		select {
		case msg := <-t.sendCh:
			conn := t.currentConn()
			if conn == nil {
				return
			}

			data, err := codec.Encode(msg)
			if err != nil {
				t.logger.Error("encode message", logging.Err(err), logging.String("event", msg.Event))
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err = conn.Write(ctx, msgType, data)
			cancel()
			if err != nil {
				t.logger.Debug("websocket write failed", logging.Err(err))
				t.Close()
				return
			}

		case <-t.closeCh:
			return
		}
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func (t *WebSocketTransport) pingLoop() {
	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn := t.currentConn()
			if conn == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				t.logger.Debug("websocket ping failed", logging.Err(err))
			}
		case <-t.closeCh:
			return
		}
	}
}
