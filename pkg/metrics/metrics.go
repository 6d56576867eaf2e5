// Package metrics exposes request and live-view metrics in the Prometheus
// text format.
package metrics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the site's metrics.
type Metrics struct {
	namespace string

	// HTTP
	RequestsTotal   *CounterVec
	RequestDuration *Histogram

	// Live views
	LiveConnections *Counter
	LiveSessions    *Gauge
	LiveRejected    *CounterVec
	LiveEvents      *CounterVec
	RenderDuration  *Histogram
	DiffSize        *Histogram
}

// NewMetrics creates a metrics set whose names start with namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		namespace: namespace,

		RequestsTotal:   NewCounterVec("http_requests_total", "HTTP requests by status class", "code"),
		RequestDuration: NewHistogram("http_request_duration_seconds", "HTTP request duration"),

		LiveConnections: NewCounter("live_connections_total", "Live WebSocket connections accepted"),
		LiveSessions:    NewGauge("live_sessions", "Open live sessions"),
		LiveRejected:    NewCounterVec("live_rejected_total", "Live connections or events refused", "reason"),
		LiveEvents:      NewCounterVec("live_events_total", "Live events by result", "result"),
		RenderDuration:  NewHistogram("live_render_duration_seconds", "Live re-render duration"),
		DiffSize:        NewHistogram("live_diff_size_bytes", "Bytes of patched content per diff"),
	}
}

// Handler serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = m.WriteTo(w)
	})
}

// WriteTo writes every metric in the Prometheus text format.
func (m *Metrics) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)

	m.writeVec(bw, m.RequestsTotal)
	m.writeHistogram(bw, m.RequestDuration)
	m.writeCounter(bw, m.LiveConnections)
	m.writeGauge(bw, m.LiveSessions)
	m.writeVec(bw, m.LiveRejected)
	m.writeVec(bw, m.LiveEvents)
	m.writeHistogram(bw, m.RenderDuration)
	m.writeHistogram(bw, m.DiffSize)

	return bw.Flush()
}

func (m *Metrics) fullName(name string) string {
	if m.namespace == "" {
		return name
	}
	return m.namespace + "_" + name
}

func (m *Metrics) header(w io.Writer, name, help, typ string) string {
	full := m.fullName(name)
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", full, help, full, typ)
	return full
}

func (m *Metrics) writeCounter(w io.Writer, c *Counter) {
	name := m.header(w, c.name, c.help, "counter")
	fmt.Fprintf(w, "%s %s\n", name, formatFloat(c.Value()))
}

func (m *Metrics) writeGauge(w io.Writer, g *Gauge) {
	name := m.header(w, g.name, g.help, "gauge")
	fmt.Fprintf(w, "%s %s\n", name, formatFloat(g.Value()))
}

func (m *Metrics) writeVec(w io.Writer, cv *CounterVec) {
	name := m.header(w, cv.name, cv.help, "counter")
	values := cv.Values()
	labels := make([]string, 0, len(values))
	for label := range values {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(w, "%s{%s=%q} %s\n", name, cv.label, label, formatFloat(values[label]))
	}
}

func (m *Metrics) writeHistogram(w io.Writer, h *Histogram) {
	name := m.header(w, h.name, h.help, "summary")
	stats := h.Stats()
	fmt.Fprintf(w, "%s_sum %s\n", name, formatFloat(stats.Sum))
	fmt.Fprintf(w, "%s_count %d\n", name, stats.Count)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Middleware counts requests by status class and records their duration.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.RequestsTotal.Inc(statusClass(rw.status))
			m.RequestDuration.ObserveDuration(time.Since(start))
		})
	}
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack lets WebSocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

// NewCounter creates a new counter.
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Add adds delta to the counter. Negative deltas are ignored.
func (c *Counter) Add(delta int64) {
	if delta > 0 {
		c.value.Add(delta)
	}
}

// Value returns the current counter value.
func (c *Counter) Value() float64 {
	return float64(c.value.Load())
}

// Gauge is a value that can go up and down.
type Gauge struct {
	name  string
	help  string
	value atomic.Int64
	fn    func() float64
}

// NewGauge creates a new gauge.
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

// Set sets the gauge to a value.
func (g *Gauge) Set(value int64) {
	g.value.Store(value)
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// SetFunc makes the gauge report fn() instead of its stored value.
func (g *Gauge) SetFunc(fn func() float64) {
	g.fn = fn
}

// Value returns the current gauge value.
func (g *Gauge) Value() float64 {
	if g.fn != nil {
		return g.fn()
	}
	return float64(g.value.Load())
}

// CounterVec is a counter partitioned by one label.
type CounterVec struct {
	name   string
	help   string
	label  string
	values map[string]*Counter
	mu     sync.RWMutex
}

// NewCounterVec creates a new counter vector.
func NewCounterVec(name, help, label string) *CounterVec {
	return &CounterVec{
		name:   name,
		help:   help,
		label:  label,
		values: make(map[string]*Counter),
	}
}

// WithLabel returns the counter for the given label value.
func (cv *CounterVec) WithLabel(value string) *Counter {
	cv.mu.RLock()
	c, ok := cv.values[value]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.values[value]; ok {
		return c
	}
	c = NewCounter(cv.name, cv.help)
	cv.values[value] = c
	return c
}

// Inc increments the counter for the given label.
func (cv *CounterVec) Inc(label string) {
	cv.WithLabel(label).Inc()
}

// Values returns all counter values.
func (cv *CounterVec) Values() map[string]float64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	result := make(map[string]float64, len(cv.values))
	for label, counter := range cv.values {
		result[label] = counter.Value()
	}
	return result
}

// Histogram tracks count, sum and extremes of observed values.
type Histogram struct {
	name  string
	help  string
	sum   float64
	count int64
	min   float64
	max   float64
	mu    sync.Mutex
}

// NewHistogram creates a new histogram.
func NewHistogram(name, help string) *Histogram {
	return &Histogram{name: name, help: help}
}

// Observe records a value.
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 || value < h.min {
		h.min = value
	}
	if h.count == 0 || value > h.max {
		h.max = value
	}
	h.sum += value
	h.count++
}

// ObserveDuration records a duration in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

// Timer returns a timer that records into h when stopped.
func (h *Histogram) Timer() *Timer {
	return &Timer{histogram: h, start: time.Now()}
}

// Stats returns histogram statistics.
func (h *Histogram) Stats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := HistogramStats{
		Count: h.count,
		Sum:   h.sum,
		Min:   h.min,
		Max:   h.max,
	}
	if h.count > 0 {
		stats.Avg = h.sum / float64(h.count)
	}
	return stats
}

// HistogramStats contains histogram statistics.
type HistogramStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Avg   float64
}

// Timer tracks operation duration.
type Timer struct {
	histogram *Histogram
	start     time.Time
}

// ObserveDuration records the elapsed time and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	t.histogram.ObserveDuration(d)
	return d
}
