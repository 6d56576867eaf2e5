package client

import (
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveScriptEmbedded(t *testing.T) {
	data, err := fs.ReadFile(Assets(), "live.js")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"live.json"`)
	assert.Contains(t, string(data), "phx_join")
	assert.Contains(t, string(data), "data-slot")

	_, err = fs.ReadFile(Assets(), "missing.js")
	assert.Error(t, err)
}

func TestHandlerServesScript(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
