// Package router serves live-view components over HTTP and WebSocket.
package router

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jojobot/website/pkg/core"
	"github.com/jojobot/website/pkg/limits"
	"github.com/jojobot/website/pkg/logging"
	"github.com/jojobot/website/pkg/metrics"
	"github.com/jojobot/website/pkg/pool"
	"github.com/jojobot/website/pkg/protocol"
	"github.com/jojobot/website/pkg/transport"
)

// Common router errors.
var (
	ErrNilRenderer    = errors.New("component returned nil renderer")
	ErrUnknownTopic   = errors.New("unknown topic")
	ErrRouterShutdown = errors.New("router is shutting down")
)

// Session keys set by the router on every request.
const (
	SessionRequestID = "request_id"
	SessionCSPNonce  = "csp_nonce"
)

// Router handles HTTP routing for live views.
type Router struct {
	mux          *http.ServeMux
	liveRoutes   map[string]*LiveRoute
	middleware   []Middleware
	errorHandler ErrorHandler
	notFound     http.Handler

	sessionManager  *LiveViewSessionManager
	transportConfig *transport.TransportConfig
	wsConfig        *transport.WebSocketConfig
	logger          logging.Logger
	metrics         *metrics.Metrics
	connLimiter     *limits.ConnectionLimiter
	eventLimiter    *limits.TokenBucket
	trustProxy      bool

	loops   sync.WaitGroup
	closing bool
	mu      sync.RWMutex
}

// LiveRoute defines a route that renders a live-view component.
type LiveRoute struct {
	Pattern   string
	Component func() core.Component

	// Layout wraps the component markup into a full document for the
	// initial HTTP response. WebSocket traffic carries the component only.
	Layout Layout
}

// Layout renders a document around already-rendered component content.
type Layout func(ctx context.Context, w io.Writer, content []byte) error

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// ErrorHandler handles errors during request processing.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Config configures a Router.
type Config struct {
	Transport *transport.TransportConfig
	WebSocket *transport.WebSocketConfig
	Sessions  *LiveViewSessionManagerConfig
	Logger    logging.Logger
	Metrics   *metrics.Metrics

	// MaxConnsPerIP caps concurrent live connections per client address.
	// Zero means unlimited.
	MaxConnsPerIP int

	// EventRate and EventBurst bound user events per session. A zero
	// rate disables the limit.
	EventRate  float64
	EventBurst int

	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool
}

// New creates a router with default configuration.
func New() *Router {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a router. Zero fields take their defaults.
func NewWithConfig(cfg Config) *Router {
	if cfg.Transport == nil {
		cfg.Transport = transport.DefaultTransportConfig()
	}
	if cfg.WebSocket == nil {
		cfg.WebSocket = transport.DefaultWebSocketConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger{}
	}
	if cfg.WebSocket.Logger == nil {
		cfg.WebSocket.Logger = cfg.Logger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewMetrics("live")
	}

	sessions := NewLiveViewSessionManagerWithConfig(cfg.Sessions)
	cfg.Metrics.LiveSessions.SetFunc(func() float64 { return float64(sessions.Count()) })

	return &Router{
		mux:             http.NewServeMux(),
		liveRoutes:      make(map[string]*LiveRoute),
		sessionManager:  sessions,
		transportConfig: cfg.Transport,
		wsConfig:        cfg.WebSocket,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		connLimiter:     limits.NewConnectionLimiter(cfg.MaxConnsPerIP),
		eventLimiter:    limits.NewTokenBucket(cfg.EventRate, cfg.EventBurst),
		trustProxy:      cfg.TrustProxy,
		errorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		},
		notFound: http.NotFoundHandler(),
	}
}

// Use adds middleware applied to every request, including 404s.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// SetErrorHandler sets the error handler.
func (r *Router) SetErrorHandler(handler ErrorHandler) {
	r.errorHandler = handler
}

// SetNotFoundHandler sets the handler for requests no route matches.
func (r *Router) SetNotFoundHandler(handler http.Handler) {
	r.notFound = handler
}

// SessionManager returns the session manager.
func (r *Router) SessionManager() *LiveViewSessionManager {
	return r.sessionManager
}

// Metrics returns the live-view metrics.
func (r *Router) Metrics() *metrics.Metrics {
	return r.metrics
}

// Live registers a live-view route. pattern follows http.ServeMux syntax.
func (r *Router) Live(pattern string, component func() core.Component, opts ...RouteOption) {
	route := &LiveRoute{
		Pattern:   pattern,
		Component: component,
	}
	for _, opt := range opts {
		opt(route)
	}

	r.mu.Lock()
	r.liveRoutes[pattern] = route
	r.mu.Unlock()

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		r.renderLive(w, req, route)
	})
}

// Handle registers a standard HTTP handler.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a standard HTTP handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = http.HandlerFunc(r.dispatch)

	r.mu.RLock()
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	r.mu.RUnlock()

	h.ServeHTTP(w, req)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		r.notFound.ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// renderLive serves the initial HTML render, or hands WebSocket upgrades
// to handleWebSocket.
func (r *Router) renderLive(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	if isWebSocketRequest(req) {
		r.handleWebSocket(w, req, route.Component())
		return
	}

	component := route.Component()
	params := extractParams(req)
	session := r.extractSession(req)
	ctx := req.Context()

	if err := component.Mount(ctx, params, session); err != nil {
		r.errorHandler(w, req, fmt.Errorf("mount %s: %w", component.Name(), err))
		return
	}
	defer component.Terminate(ctx, core.TerminateNormal)

	content := pool.GetBuffer()
	defer pool.PutBuffer(content)
	if err := renderComponent(ctx, component, content); err != nil {
		r.errorHandler(w, req, err)
		return
	}

	page := pool.GetBuffer()
	defer pool.PutBuffer(page)
	if route.Layout != nil {
		if err := route.Layout(ctx, page, content.Bytes()); err != nil {
			r.errorHandler(w, req, fmt.Errorf("layout: %w", err))
			return
		}
	} else {
		page.Write(content.Bytes())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = page.WriteTo(w)
}

func renderComponent(ctx context.Context, component core.Component, w io.Writer) error {
	renderer := component.Render(ctx)
	if renderer == nil {
		return ErrNilRenderer
	}
	if err := renderer.Render(ctx, w); err != nil {
		return fmt.Errorf("render %s: %w", component.Name(), err)
	}
	return nil
}

// handleWebSocket upgrades the request and starts the session's message loop.
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request, component core.Component) {
	r.mu.RLock()
	closing := r.closing
	r.mu.RUnlock()
	if closing {
		http.Error(w, ErrRouterShutdown.Error(), http.StatusServiceUnavailable)
		return
	}

	ip := limits.ClientIP(req, r.trustProxy)
	if !r.connLimiter.Acquire(ip) {
		r.metrics.LiveRejected.Inc("connections")
		logging.L(req.Context()).Warn("live connection refused",
			logging.String("ip", ip),
			logging.Int("open", r.connLimiter.Count(ip)),
			logging.Err(limits.ErrTooManyConnections),
		)
		http.Error(w, limits.ErrTooManyConnections.Error(), http.StatusTooManyRequests)
		return
	}

	wsTransport := transport.NewWebSocketTransportWithConfig(r.transportConfig, r.wsConfig)
	if err := wsTransport.Upgrade(w, req); err != nil {
		r.connLimiter.Release(ip)
		// Upgrade has already written the response.
		logging.L(req.Context()).Warn("websocket upgrade failed", logging.Err(err))
		return
	}
	r.metrics.LiveConnections.Inc()

	socketID := uuid.NewString()
	socket := core.NewSocket(socketID, wsTransport)

	session := r.extractSession(req)
	params := extractParams(req)

	if bc, ok := component.(interface{ SetSocket(*core.Socket) }); ok {
		bc.SetSocket(socket)
	}

	lvSession := r.sessionManager.Create(socketID, component, params, session)
	lvSession.Transport = wsTransport
	lvSession.Socket = socket
	lvSession.RemoteIP = ip

	logger := r.logger.With(
		logging.String("socket_id", socketID),
		logging.String("component", component.Name()),
		logging.String("codec", wsTransport.Codec().Name()),
	)
	logger.Debug("live session started")

	// The connection outlives the HTTP request, so its context must not
	// derive from req.Context().
	ctx := logging.ContextWithLogger(context.Background(), logger)

	r.loops.Add(1)
	go func() {
		defer r.loops.Done()
		r.messageLoop(ctx, lvSession)
	}()
}

// messageLoop owns the session's component: every call into it happens here.
func (r *Router) messageLoop(ctx context.Context, session *LiveViewSession) {
	reason := core.TerminateNormal
	defer func() {
		r.handleDisconnect(ctx, session, reason)
	}()

	recvCh := session.Transport.Receive()
	for {
		select {
		case msg := <-recvCh:
			session.UpdateActivity()

			switch msg.Event {
			case protocol.EventHeartbeat:
				r.sendReply(session, msg.Ref, msg.Topic, nil)

			case protocol.EventJoin:
				r.handleJoin(ctx, session, msg)

			case protocol.EventLeave:
				return

			default:
				if msg.IsControl() {
					logging.L(ctx).Debug("control message ignored", logging.String("event", msg.Event))
					continue
				}
				if msg.Topic != session.Topic {
					r.sendError(session, msg.Ref, msg.Topic, ErrUnknownTopic)
					continue
				}
				if !session.IsMounted() {
					r.sendError(session, msg.Ref, msg.Topic, errors.New("not joined"))
					continue
				}
				if !r.eventLimiter.Allow(session.ID) {
					r.metrics.LiveRejected.Inc("events")
					r.sendError(session, msg.Ref, msg.Topic, limits.ErrRateLimitExceeded)
					continue
				}
				if err := r.dispatchEvent(ctx, session, msg); err != nil {
					r.metrics.LiveEvents.Inc("error")
					logging.L(ctx).Debug("event rejected",
						logging.String("event", msg.Event),
						logging.Err(err),
					)
					r.sendError(session, msg.Ref, msg.Topic, err)
					continue
				}
				r.renderAndSendDiff(ctx, session, msg.Ref)
			}

		case <-session.Transport.Done():
			reason = session.CloseReason()
			return
		}
	}
}

// handleJoin mounts the component (once) and replies with its full render.
// The reply establishes the slot baseline later diffs are computed against.
func (r *Router) handleJoin(ctx context.Context, session *LiveViewSession, msg transport.Message) {
	if msg.JoinRef != "" {
		session.SetJoinRef(msg.JoinRef)
	} else {
		session.SetJoinRef(msg.Ref)
	}

	if !session.IsMounted() {
		if err := session.Component.Mount(ctx, session.Params, session.Session); err != nil {
			r.sendError(session, msg.Ref, msg.Topic, err)
			return
		}
		session.SetMounted(true)
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	if err := renderComponent(ctx, session.Component, buf); err != nil {
		r.sendError(session, msg.Ref, msg.Topic, err)
		return
	}

	html := buf.String()
	textSlots, htmlSlots := extractSlotsOptimized(html)
	session.slotHashes = hashSlots(textSlots, htmlSlots)
	session.pageHash = hashSlotContent(html)
	session.version++

	r.sendReply(session, msg.Ref, session.Topic, map[string]any{
		"topic":    session.Topic,
		"rendered": html,
		"v":        session.version,
	})
}

// dispatchEvent dispatches a user event to the component.
func (r *Router) dispatchEvent(ctx context.Context, session *LiveViewSession, msg transport.Message) error {
	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}
	return session.Component.HandleEvent(ctx, msg.Event, payload)
}

// renderAndSendDiff re-renders the component, pushes whatever slots changed
// and acknowledges the event ref.
func (r *Router) renderAndSendDiff(ctx context.Context, session *LiveViewSession, ref string) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	timer := r.metrics.RenderDuration.Timer()
	if err := renderComponent(ctx, session.Component, buf); err != nil {
		r.metrics.LiveEvents.Inc("error")
		logging.L(ctx).Error("render failed", logging.Err(err))
		r.sendError(session, ref, session.Topic, err)
		return
	}
	timer.ObserveDuration()

	payload := r.buildDiffPayload(session, buf.String())
	if payload.IsEmpty() {
		r.metrics.LiveEvents.Inc("unchanged")
	} else {
		r.metrics.LiveEvents.Inc("changed")
		r.metrics.DiffSize.Observe(float64(payload.Size()))
	}
	if err := session.Socket.SendDiff(payload); err != nil {
		logging.L(ctx).Debug("send diff failed", logging.Err(err))
		return
	}
	r.sendReply(session, ref, session.Topic, map[string]any{
		"v":       payload.Version,
		"changed": !payload.IsEmpty(),
	})
}

// buildDiffPayload compares slot hashes with the previous render.
func (r *Router) buildDiffPayload(session *LiveViewSession, html string) *core.DiffPayload {
	session.version++
	payload := &core.DiffPayload{
		Version:   session.version,
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	textSlots, htmlSlots := extractSlotsOptimized(html)
	prev := session.slotHashes
	next := hashSlots(textSlots, htmlSlots)

	for id, content := range textSlots {
		if prev == nil || prev[id] != next[id] {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		if prev == nil || prev[id] != next[id] {
			payload.HTMLSlots[id] = content
		}
	}
	session.slotHashes = next

	// Without slots there is nothing to patch granularly.
	pageHash := hashSlotContent(html)
	if len(textSlots) == 0 && len(htmlSlots) == 0 && pageHash != session.pageHash {
		payload.Full = html
	}
	session.pageHash = pageHash
	return payload
}

func hashSlots(textSlots, htmlSlots map[string]string) map[string]uint64 {
	hashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))
	for id, content := range textSlots {
		hashes[id] = hashSlotContent(content)
	}
	for id, content := range htmlSlots {
		hashes[id] = hashSlotContent("h:" + content)
	}
	return hashes
}

// hashSlotContent computes FNV-64a hash of content for fast comparison.
func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

// extractSlotsOptimized extracts data-slot content in a single pass.
// Slots whose content contains markup are returned as HTML slots.
func extractSlotsOptimized(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = ` data-slot="`
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}
		slotStart := pos + idx + len(marker)

		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			break
		}
		slotID := html[slotStart : slotStart+slotEnd]

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}
		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && !isTagNameEnd(html[tagNameEnd]) {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			break
		}
		contentStart := slotStart + slotEnd + closeAngle + 1

		openTag := "<" + tagName
		closeTag := "</" + tagName + ">"
		depth := 1
		searchPos := contentStart
		contentEnd := -1

		for depth > 0 && searchPos < htmlLen {
			nextClose := strings.Index(html[searchPos:], closeTag)
			if nextClose == -1 {
				break
			}
			nextClose += searchPos

			nextOpen := strings.Index(html[searchPos:], openTag)
			if nextOpen != -1 {
				nextOpen += searchPos
			} else {
				nextOpen = htmlLen
			}

			if nextOpen < nextClose {
				after := nextOpen + len(openTag)
				if after < htmlLen && isTagNameEnd(html[after]) {
					depth++
				}
				searchPos = after
			} else {
				depth--
				if depth == 0 {
					contentEnd = nextClose
				}
				searchPos = nextClose + len(closeTag)
			}
		}

		if contentEnd == -1 {
			// Unbalanced markup; skip past this marker.
			pos = slotStart + slotEnd
			continue
		}

		content := strings.TrimSpace(html[contentStart:contentEnd])
		if strings.ContainsAny(content, "<>") {
			htmlSlots[slotID] = content
		} else {
			textSlots[slotID] = content
		}

		// Nested slots are patched as part of their parent.
		pos = searchPos
	}

	return textSlots, htmlSlots
}

func isTagNameEnd(c byte) bool {
	return c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n' || c == '\r'
}

// handleDisconnect terminates the component and forgets the session.
func (r *Router) handleDisconnect(ctx context.Context, session *LiveViewSession, reason core.TerminateReason) {
	if err := session.Component.Terminate(ctx, reason); err != nil {
		logging.L(ctx).Warn("terminate failed", logging.Err(err))
	}

	r.sessionManager.Remove(session.ID)
	r.eventLimiter.Forget(session.ID)
	r.connLimiter.Release(session.RemoteIP)
	session.Transport.Close()

	logging.L(ctx).Debug("live session ended",
		logging.String("reason", reason.String()),
		logging.Duration("lifetime", time.Since(session.CreatedAt)),
	)
}

// Shutdown refuses new live connections, closes the open ones and waits
// for their message loops to finish or ctx to expire.
func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	for _, s := range r.sessionManager.All() {
		s.Close(core.TerminateShutdown)
	}

	done := make(chan struct{})
	go func() {
		r.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Router) sendReply(session *LiveViewSession, ref, topic string, response map[string]any) {
	if err := session.Transport.Send(protocol.OkReply(ref, topic, response)); err != nil {
		r.logger.Debug("send reply failed", logging.Err(err), logging.String("socket_id", session.SocketID))
	}
}

func (r *Router) sendError(session *LiveViewSession, ref, topic string, err error) {
	if sendErr := session.Transport.Send(protocol.ErrorReply(ref, topic, err.Error())); sendErr != nil {
		r.logger.Debug("send error reply failed", logging.Err(sendErr), logging.String("socket_id", session.SocketID))
	}
}

// extractSession collects request-scoped values for components.
func (r *Router) extractSession(req *http.Request) core.Session {
	session := make(core.Session)
	if id := logging.RequestIDFromContext(req.Context()); id != "" {
		session[SessionRequestID] = id
	}
	if nonce := GetCSPNonce(req.Context()); nonce != "" {
		session[SessionCSPNonce] = nonce
	}
	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	return session
}

// extractParams extracts query parameters, first value wins.
func extractParams(req *http.Request) core.Params {
	params := make(core.Params)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// isWebSocketRequest checks if this is a WebSocket upgrade request.
func isWebSocketRequest(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Upgrade")), "websocket")
}

// RouteOption configures a LiveRoute.
type RouteOption func(*LiveRoute)

// WithLayout sets the document layout for the initial HTTP render.
func WithLayout(layout Layout) RouteOption {
	return func(r *LiveRoute) {
		r.Layout = layout
	}
}
