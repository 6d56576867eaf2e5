package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jojobot/website/pkg/protocol"
)

func TestOriginValidation(t *testing.T) {
	tests := []struct {
		name          string
		wsConfig      *WebSocketConfig
		origin        string
		host          string
		expectAllowed bool
	}{
		{"same-origin allowed", &WebSocketConfig{}, "https://jojo.example", "jojo.example", true},
		{"no origin allowed", &WebSocketConfig{}, "", "jojo.example", true},
		{"explicit origin allowed", &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}}, "https://allowed.com", "jojo.example", true},
		{"origin not in list blocked", &WebSocketConfig{AllowedOrigins: []string{"https://allowed.com"}}, "https://attacker.com", "jojo.example", false},
		{"wildcard allows all", &WebSocketConfig{AllowedOrigins: []string{"*"}}, "https://any-site.com", "jojo.example", true},
		{"insecure dev mode allows all", &WebSocketConfig{InsecureDevMode: true}, "https://attacker.com", "jojo.example", true},
		{"cross-origin blocked by default", &WebSocketConfig{}, "https://other-site.com", "jojo.example", false},
		{"garbage origin blocked", &WebSocketConfig{}, "::not a url", "jojo.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewWebSocketTransportWithConfig(DefaultTransportConfig(), tt.wsConfig)
			assert.Equal(t, tt.expectAllowed, tr.isOriginAllowed(tt.origin, tt.host))
		})
	}
}

func TestUpgradeRejectsInvalidOrigin(t *testing.T) {
	tr := NewWebSocketTransportWithConfig(DefaultTransportConfig(), &WebSocketConfig{
		AllowedOrigins: []string{"https://allowed.com"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://attacker.com")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Host = "jojo.example"
	rec := httptest.NewRecorder()

	err := tr.Upgrade(rec, req)
	assert.ErrorIs(t, err, ErrOriginNotAllowed)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, tr.IsConnected())
}

func TestDefaultWebSocketConfig(t *testing.T) {
	cfg := DefaultWebSocketConfig()
	assert.False(t, cfg.InsecureDevMode)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Equal(t, "json", cfg.Codecs.Default().Name())
}

func TestSendBeforeConnect(t *testing.T) {
	tr := NewWebSocketTransport(nil)
	assert.ErrorIs(t, tr.Send(protocol.Message{Topic: "lv:x", Event: "diff"}), ErrNotConnected)
}

// echoServer upgrades every request and echoes each received event back
// with an "echo:" prefix.
func echoServer(t *testing.T) (*httptest.Server, chan *WebSocketTransport) {
	t.Helper()
	accepted := make(chan *WebSocketTransport, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := NewWebSocketTransport(DefaultTransportConfig())
		if err := tr.Upgrade(w, r); err != nil {
			return
		}
		accepted <- tr
		go func() {
			for msg := range tr.Receive() {
				msg.Event = "echo:" + msg.Event
				_ = tr.Send(msg)
			}
		}()
	}))
	t.Cleanup(srv.Close)
	return srv, accepted
}

func TestNegotiatesCodecFromSubprotocol(t *testing.T) {
	tests := []struct {
		subprotocols []string
		wantCodec    string
		wantType     websocket.MessageType
	}{
		{nil, "json", websocket.MessageText},
		{[]string{"live.json"}, "json", websocket.MessageText},
		{[]string{"live.msgpack"}, "msgpack", websocket.MessageBinary},
	}

	for _, tt := range tests {
		t.Run(tt.wantCodec+"/"+strings.Join(tt.subprotocols, ","), func(t *testing.T) {
			srv, accepted := echoServer(t)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), &websocket.DialOptions{
				Subprotocols: tt.subprotocols,
			})
			require.NoError(t, err)
			defer conn.CloseNow()

			tr := <-accepted
			assert.Equal(t, tt.wantCodec, tr.Codec().Name())
			codec := tr.Codec()

			out, err := codec.Encode(protocol.Message{Topic: "lv:t", Event: "select", Payload: map[string]any{"section": "music"}})
			require.NoError(t, err)
			require.NoError(t, conn.Write(ctx, tt.wantType, out))

			typ, data, err := conn.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, typ)

			msg, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, "echo:select", msg.Event)
			assert.Equal(t, "music", msg.String("section"))
		})
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	srv, accepted := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	<-accepted

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"topic":"lv:t","event":"next"}`)))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"echo:next"`)
}

func TestCloseIsIdempotent(t *testing.T) {
	srv, accepted := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Reading lets the client answer the close handshake.
	go func() { _, _, _ = conn.Read(ctx) }()

	tr := <-accepted
	assert.True(t, tr.IsConnected())
	_ = tr.Close()
	assert.NoError(t, tr.Close())
	assert.False(t, tr.IsConnected())
	select {
	case <-tr.Done():
	case <-ctx.Done():
		t.Fatal("transport not done after Close")
	}
}
