package site

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jojobot/website/internal/config"
	"github.com/jojobot/website/pkg/health"
	"github.com/jojobot/website/pkg/protocol"
)

// liveClient speaks the live channel over a negotiated codec.
type liveClient struct {
	t     *testing.T
	conn  *websocket.Conn
	ctx   context.Context
	codec protocol.Codec
	ref   int
}

func dialLive(t *testing.T, srv *httptest.Server, path string, codec protocol.Codec) *liveClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, &websocket.DialOptions{
		Subprotocols: []string{protocol.Subprotocol(codec)},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	require.Equal(t, protocol.Subprotocol(codec), conn.Subprotocol())
	return &liveClient{t: t, conn: conn, ctx: ctx, codec: codec}
}

func (c *liveClient) push(topic, event string, payload map[string]any) string {
	c.t.Helper()
	c.ref++
	ref := fmt.Sprint(c.ref)
	msg := protocol.Message{Ref: ref, Topic: topic, Event: event, Payload: payload}

	if !c.codec.Binary() {
		require.NoError(c.t, wsjson.Write(c.ctx, c.conn, msg))
		return ref
	}
	data, err := c.codec.Encode(msg)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.Write(c.ctx, websocket.MessageBinary, data))
	return ref
}

func (c *liveClient) read() protocol.Message {
	c.t.Helper()
	if !c.codec.Binary() {
		var msg protocol.Message
		require.NoError(c.t, wsjson.Read(c.ctx, c.conn, &msg))
		return msg
	}
	typ, data, err := c.conn.Read(c.ctx)
	require.NoError(c.t, err)
	require.Equal(c.t, websocket.MessageBinary, typ)
	msg, err := c.codec.Decode(data)
	require.NoError(c.t, err)
	return msg
}

func (c *liveClient) join() (topic, rendered string) {
	c.t.Helper()
	ref := c.push("lv:pending", protocol.EventJoin, nil)
	reply := c.read()
	require.Equal(c.t, protocol.EventReply, reply.Event)
	require.Equal(c.t, ref, reply.Ref)
	require.Equal(c.t, protocol.StatusOK, reply.Payload["status"])
	resp := reply.Payload["response"].(map[string]any)
	return resp["topic"].(string), resp["rendered"].(string)
}

// event pushes a user event and returns the diff (nil when nothing
// changed) and whether the reply reported a change.
func (c *liveClient) event(topic, event string, payload map[string]any) (map[string]any, bool) {
	c.t.Helper()
	ref := c.push(topic, event, payload)

	msg := c.read()
	var diff map[string]any
	if msg.Event == protocol.EventDiff {
		diff = msg.Payload
		msg = c.read()
	}
	require.Equal(c.t, protocol.EventReply, msg.Event)
	require.Equal(c.t, ref, msg.Ref)
	require.Equal(c.t, protocol.StatusOK, msg.Payload["status"])
	changed, _ := msg.Payload["response"].(map[string]any)["changed"].(bool)
	return diff, changed
}

func slots(diff map[string]any, key string) map[string]any {
	m, _ := diff[key].(map[string]any)
	return m
}

func TestLiveHomeNavigation(t *testing.T) {
	_, srv := newTestServer(t)
	client := dialLive(t, srv, "/?section=fun", protocol.JSONCodec{})

	topic, rendered := client.join()
	assert.True(t, strings.HasPrefix(topic, "lv:"))
	assert.Contains(t, rendered, "Page 1 of 4")
	assert.Contains(t, rendered, `<h4 class="command-name">trivia</h4>`)
	assert.NotContains(t, rendered, "<html", "join renders the component without the layout")

	t.Run("next page patches pager and commands only", func(t *testing.T) {
		diff, changed := client.event(topic, "next", nil)
		require.True(t, changed)
		assert.Empty(t, slots(diff, "s"))
		h := slots(diff, "h")
		require.Len(t, h, 2)
		assert.Contains(t, h["pager"], "Page 2 of 4")
		assert.NotContains(t, h["commands"], "trivia")
	})

	t.Run("select resets to the first page", func(t *testing.T) {
		diff, changed := client.event(topic, "select", map[string]any{"section": "music"})
		require.True(t, changed)
		assert.Equal(t, "Music Commands", slots(diff, "s")["section-title"])
		h := slots(diff, "h")
		assert.Contains(t, h["pager"], "Page 1 of 2")
		assert.Contains(t, h["sidebar"], `aria-current="page"`)
		assert.Contains(t, h["commands"], "volume")
	})

	t.Run("unknown section is ignored", func(t *testing.T) {
		diff, changed := client.event(topic, "select", map[string]any{"section": "bogus"})
		assert.False(t, changed)
		assert.Nil(t, diff)
	})

	t.Run("out of range page is ignored", func(t *testing.T) {
		_, changed := client.event(topic, "page", map[string]any{"page": 9})
		assert.False(t, changed)
		_, changed = client.event(topic, "prev", nil)
		assert.False(t, changed)
	})

	t.Run("history navigation", func(t *testing.T) {
		diff, changed := client.event(topic, "navigate", map[string]any{"section": "fun", "page": "4"})
		require.True(t, changed)
		h := slots(diff, "h")
		assert.Contains(t, h["pager"], "Page 4 of 4")
		assert.NotContains(t, h["pager"], `lv-click="next"`)
		assert.Contains(t, h["commands"], "wordle")
	})
}

func TestLiveMsgPackCodec(t *testing.T) {
	_, srv := newTestServer(t)
	client := dialLive(t, srv, "/?section=fun&page=3", protocol.MsgPackCodec{})

	topic, rendered := client.join()
	assert.Contains(t, rendered, "Page 3 of 4")

	diff, changed := client.event(topic, "page", map[string]any{"page": 1})
	require.True(t, changed)
	assert.Contains(t, slots(diff, "h")["commands"], "trivia")
}

func TestLiveInfoViewIsInert(t *testing.T) {
	_, srv := newTestServer(t)
	client := dialLive(t, srv, "/about", protocol.JSONCodec{})

	topic, rendered := client.join()
	assert.Contains(t, rendered, "About Us")

	diff, changed := client.event(topic, "next", nil)
	assert.False(t, changed)
	assert.Nil(t, diff)
}

func TestServeStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = 5 * time.Second

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return")
	}

	assert.Equal(t, health.StatusUnhealthy, s.Health().Check(context.Background()).Status)
}
