package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterAndGauge(t *testing.T) {
	c := NewCounter("c", "help")
	c.Inc()
	c.Add(4)
	c.Add(-10)
	assert.Equal(t, float64(5), c.Value())

	g := NewGauge("g", "help")
	g.Set(3)
	g.Inc()
	g.Dec()
	g.Dec()
	assert.Equal(t, float64(2), g.Value())

	g.SetFunc(func() float64 { return 42 })
	assert.Equal(t, float64(42), g.Value())
}

func TestCounterVec(t *testing.T) {
	cv := NewCounterVec("events", "help", "event")
	cv.Inc("next")
	cv.Inc("next")
	cv.Inc("select")

	assert.Equal(t, map[string]float64{"next": 2, "select": 1}, cv.Values())
	assert.Same(t, cv.WithLabel("next"), cv.WithLabel("next"))
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("h", "help")
	assert.Equal(t, HistogramStats{}, h.Stats())

	h.Observe(2)
	h.Observe(-1)
	h.Observe(5)

	stats := h.Stats()
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, float64(6), stats.Sum)
	assert.Equal(t, float64(-1), stats.Min)
	assert.Equal(t, float64(5), stats.Max)
	assert.Equal(t, float64(2), stats.Avg)

	timer := h.Timer()
	time.Sleep(time.Millisecond)
	assert.Positive(t, timer.ObserveDuration())
	assert.Equal(t, int64(4), h.Stats().Count)
}

func TestHandlerFormat(t *testing.T) {
	m := NewMetrics("jojo")
	m.LiveEvents.Inc("unchanged")
	m.LiveEvents.Inc("changed")
	m.LiveConnections.Inc()
	m.LiveSessions.SetFunc(func() float64 { return 3 })
	m.DiffSize.Observe(128)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, body, "# TYPE jojo_live_events_total counter\n")
	assert.Contains(t, body, `jojo_live_events_total{result="changed"} 1`+"\n")
	assert.Less(t,
		strings.Index(body, `{result="changed"}`),
		strings.Index(body, `{result="unchanged"}`),
		"labels are sorted")
	assert.Contains(t, body, "jojo_live_connections_total 1\n")
	assert.Contains(t, body, "jojo_live_sessions 3\n")
	assert.Contains(t, body, "jojo_live_diff_size_bytes_sum 128\n")
	assert.Contains(t, body, "jojo_live_diff_size_bytes_count 1\n")
}

func TestMiddlewareCountsStatusClasses(t *testing.T) {
	m := NewMetrics("")
	h := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/twice":
			w.WriteHeader(http.StatusAccepted)
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))

	for _, path := range []string{"/", "/", "/missing", "/twice"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, map[string]float64{"2xx": 3, "4xx": 1}, m.RequestsTotal.Values())
	assert.Equal(t, int64(4), m.RequestDuration.Stats().Count)

	var sb strings.Builder
	require.NoError(t, m.WriteTo(&sb))
	assert.Contains(t, sb.String(), `http_requests_total{code="4xx"} 1`)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "1xx", statusClass(101))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "other", statusClass(0))
}
