// Package site assembles the Jojo Bot documentation website: live views,
// static routes, health probes and graceful shutdown.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jojobot/website/client"
	"github.com/jojobot/website/internal/catalog"
	"github.com/jojobot/website/internal/config"
	"github.com/jojobot/website/internal/viewstate"
	"github.com/jojobot/website/internal/website"
	"github.com/jojobot/website/internal/website/components"
	"github.com/jojobot/website/pkg/health"
	"github.com/jojobot/website/pkg/limits"
	"github.com/jojobot/website/pkg/logging"
	"github.com/jojobot/website/pkg/metrics"
	"github.com/jojobot/website/pkg/protocol"
	"github.com/jojobot/website/pkg/router"
	"github.com/jojobot/website/pkg/shutdown"
	"github.com/jojobot/website/pkg/transport"
)

const (
	invitePath             = "/invite"
	sessionCleanupInterval = time.Minute
)

// Server is the assembled website.
type Server struct {
	cfg     *config.Config
	logger  logging.Logger
	catalog *catalog.Catalog
	chrome  Chrome
	router  *router.Router
	health  *health.Checker
	metrics *metrics.Metrics
	api     *limits.TokenBucket
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog replaces the built-in command catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = cat }
}

// WithVersion sets the version reported by the readiness probe.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// NewServer wires every route of the site.
func NewServer(cfg *config.Config, logger logging.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		catalog: catalog.Default,
		chrome:  NewChrome(cfg.Site),
		health:  health.NewChecker(),
		metrics: metrics.NewMetrics("jojo"),
		api:     limits.NewTokenBucket(cfg.Server.APIRate, cfg.Server.APIBurst),
	}
	for _, opt := range opts {
		opt(s)
	}

	codecs := protocol.NewCodecRegistry()
	if err := codecs.SetDefault(cfg.Live.Codec); err != nil {
		return nil, fmt.Errorf("live codec: %w", err)
	}

	s.router = router.NewWithConfig(router.Config{
		WebSocket: &transport.WebSocketConfig{
			AllowedOrigins:  cfg.Live.AllowedOrigins,
			InsecureDevMode: cfg.Live.InsecureDevMode,
			Codecs:          codecs,
			Logger:          logger,
		},
		Sessions: &router.LiveViewSessionManagerConfig{
			MaxSessions: cfg.Live.MaxSessions,
			SessionTTL:  cfg.Live.SessionTTL,
		},
		Logger:        logger,
		Metrics:       s.metrics,
		MaxConnsPerIP: cfg.Live.MaxConnsPerIP,
		EventRate:     cfg.Live.EventRate,
		EventBurst:    cfg.Live.EventBurst,
		TrustProxy:    cfg.Server.TrustProxy,
	})

	s.router.Use(router.Recovery(logger))
	s.router.Use(s.metrics.Middleware())
	s.router.Use(logging.RequestLogger(logger))
	s.router.Use(router.SecureHeaders())
	s.router.SetErrorHandler(s.handleError)
	s.router.SetNotFoundHandler(http.HandlerFunc(s.handleNotFound))

	s.health.SetVersion(s.version)
	s.health.AddCriticalCheck("catalog", s.checkCatalog, time.Second)
	s.health.AddCriticalCheck("live_sessions", health.SessionPoolCheck(s.router.SessionManager().Count, cfg.Live.MaxSessions), time.Second)

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Live("GET /{$}", NewHomeView(s.catalog, s.chrome),
		router.WithLayout(s.layout(s.chrome.Name+" - Discord Bot Commands", s.chrome.Tagline, "/")))

	for key, page := range components.DefaultInfoPages(s.chrome.Name) {
		s.router.Live("GET /"+key, NewInfoView(page, s.chrome),
			router.WithLayout(s.layout(page.Title+" - "+s.chrome.Name, s.chrome.Tagline, "/"+key)))
	}

	s.router.HandleFunc("GET "+invitePath, s.handleInvite)
	s.router.Handle("GET /api/commands", s.api.Middleware(s.clientIP)(http.HandlerFunc(s.handleCommands)))
	s.router.HandleFunc("GET /robots.txt", s.handleRobots)
	s.router.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	s.router.Handle("GET /healthz", s.health.LivenessHandler())
	s.router.Handle("GET /readyz", s.health.ReadinessHandler())
	s.router.Handle("GET /metrics", s.metrics.Handler())
	s.router.Handle("GET /_live/", http.StripPrefix("/_live/", client.Handler()))
}

func (s *Server) clientIP(r *http.Request) string {
	return limits.ClientIP(r, s.cfg.Server.TrustProxy)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the live router.
func (s *Server) Router() *router.Router {
	return s.router
}

// Metrics exposes the site metrics.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Health exposes the health checker.
func (s *Server) Health() *health.Checker {
	return s.health
}

// HTTPServer returns an http.Server configured from the server section.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled or SIGINT/SIGTERM arrives.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln and shuts down gracefully: readiness flips first, then
// the HTTP server stops accepting requests, then live sessions are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.HTTPServer()

	stopCleanup := make(chan struct{})
	s.router.SessionManager().StartCleanupRoutine(sessionCleanupInterval, stopCleanup)

	sh := shutdown.NewHandler(&shutdown.Config{
		Timeout: s.cfg.Server.ShutdownTimeout,
		Logger:  s.logger,
	})
	sh.RegisterFunc("readiness", shutdown.PriorityFirst, func(ctx context.Context) error {
		s.health.MarkShuttingDown()
		return nil
	})
	sh.Register(shutdown.HTTPServerHook("http", srv.Shutdown))
	sh.RegisterFunc("live-sessions", shutdown.PriorityLive, s.router.Shutdown)
	sh.RegisterFunc("session-cleanup", shutdown.PriorityLast, func(ctx context.Context) error {
		close(stopCleanup)
		return nil
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	s.logger.Info("server started",
		logging.String("addr", ln.Addr().String()),
		logging.String("codec", s.cfg.Live.Codec),
	)

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- sh.Wait(ctx)
	}()

	select {
	case err := <-serveErr:
		// The server died on its own; tear down what remains.
		_ = sh.Shutdown()
		<-waitErr
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-waitErr:
		<-serveErr
		s.logger.Info("server stopped")
		return err
	}
}

// layout wraps live content in the full document for the initial render.
func (s *Server) layout(title, description, path string) router.Layout {
	return func(ctx context.Context, w io.Writer, content []byte) error {
		cfg := s.pageConfig(ctx, title, description, path)
		_, err := io.WriteString(w, website.RenderDocument(cfg, string(content)))
		return err
	}
}

func (s *Server) pageConfig(ctx context.Context, title, description, path string) website.PageConfig {
	cfg := website.DefaultPageConfig()
	cfg.Title = title
	cfg.Description = description
	cfg.SiteName = s.chrome.Name
	cfg.URL = s.cfg.BaseURL() + path
	cfg.InviteURL = s.cfg.Site.InviteURL
	cfg.Nonce = router.GetCSPNonce(ctx)
	return cfg
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.Site.InviteURL, http.StatusFound)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\nDisallow: /metrics\n\nSitemap: %s/sitemap.xml\n", s.cfg.BaseURL())
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	base := s.cfg.BaseURL()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	writeURL := func(loc, freq, priority string) {
		sb.WriteString("  <url>\n")
		sb.WriteString("    <loc>" + xmlEscape(loc) + "</loc>\n")
		sb.WriteString("    <changefreq>" + freq + "</changefreq>\n")
		sb.WriteString("    <priority>" + priority + "</priority>\n")
		sb.WriteString("  </url>\n")
	}

	writeURL(base+"/", "weekly", "1.0")
	for _, key := range s.catalog.Keys() {
		writeURL(base+"/?section="+key, "weekly", "0.8")
	}
	for _, path := range []string{"/about", "/privacy", "/terms"} {
		writeURL(base+path, "yearly", "0.3")
	}
	sb.WriteString("</urlset>\n")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = io.WriteString(w, sb.String())
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;").Replace(s)
}

// sectionResponse is one section in the commands API.
type sectionResponse struct {
	Key        string            `json:"key"`
	Title      string            `json:"title"`
	Icon       string            `json:"icon"`
	TotalPages int               `json:"total_pages"`
	Commands   []catalog.Command `json:"commands"`
}

func newSectionResponse(sec catalog.Section) sectionResponse {
	return sectionResponse{
		Key:        sec.Key,
		Title:      sec.Title,
		Icon:       sec.Icon.String(),
		TotalPages: viewstate.TotalPages(sec),
		Commands:   sec.Commands,
	}
}

// handleCommands serves the catalog as JSON. ?q= runs a fuzzy search,
// ?section= narrows to one section, otherwise every section is listed.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		matches := s.catalog.Search(q)
		if matches == nil {
			matches = []catalog.Match{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"query": q, "matches": matches})
		return
	}

	if key := query.Get("section"); key != "" {
		sec, err := s.catalog.Get(key)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, newSectionResponse(sec))
		return
	}

	sections := s.catalog.Sections()
	out := make([]sectionResponse, 0, len(sections))
	for _, sec := range sections {
		out = append(out, newSectionResponse(sec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) checkCatalog(ctx context.Context) error {
	if s.catalog == nil || s.catalog.Len() == 0 {
		return errors.New("catalog is empty")
	}
	if !s.catalog.Has(catalog.DefaultSectionKey) {
		return fmt.Errorf("%w: default %q", catalog.ErrUnknownSection, catalog.DefaultSectionKey)
	}
	return nil
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	logging.L(r.Context()).Error("request failed", logging.Err(err))
	s.renderErrorPage(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again in a moment.")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderErrorPage(w, r, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.")
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	var body strings.Builder
	body.WriteString(s.chrome.navbar())
	body.WriteString("<main>\n")
	body.WriteString(components.RenderError(status, title, message))
	body.WriteString("</main>\n")
	body.WriteString(s.chrome.footer())

	cfg := s.pageConfig(r.Context(), title+" - "+s.chrome.Name, "", r.URL.Path)
	cfg.ScriptSrc = ""

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, website.RenderDocument(cfg, body.String()))
}
