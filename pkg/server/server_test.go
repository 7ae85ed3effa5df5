package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(DefaultConfig(), log).Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateOK(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/validate", map[string]string{
		"cdl": "hexagonal[6/mmm]:{10-10}@1 + {0001}@1.5",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid  bool `json:"valid"`
		Parsed struct {
			System     string `json:"system"`
			PointGroup string `json:"pointGroup"`
			FormsCount int    `json:"formsCount"`
			Forms      []struct {
				Miller string  `json:"miller"`
				Scale  float64 `json:"scale"`
			} `json:"forms"`
		} `json:"parsed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "hexagonal", resp.Parsed.System)
	assert.Equal(t, "6/mmm", resp.Parsed.PointGroup)
	assert.Equal(t, 2, resp.Parsed.FormsCount)
	require.Len(t, resp.Parsed.Forms, 2)
	assert.Equal(t, "{10-10}", resp.Parsed.Forms[0].Miller)
	assert.Equal(t, 1.0, resp.Parsed.Forms[0].Scale)
	assert.Equal(t, "{0001}", resp.Parsed.Forms[1].Miller)
	assert.Equal(t, 1.5, resp.Parsed.Forms[1].Scale)
}

func TestValidateInvalid(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/validate", map[string]string{"cdl": "cubic[m3m]:{10}"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Error, "Miller")
}

func TestRenderPost(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/render", map[string]any{
		"cdl": "cubic[m3m]:{100}@1", "width": 400, "height": 200,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `width="400" height="200"`)
}

func TestRenderGet(t *testing.T) {
	h := newTestServer(t)
	query := url.Values{}
	query.Set("cdl", "cubic[m3m]:{100}@1")
	query.Set("elev", "10")
	query.Set("azim", "20")
	req := httptest.NewRequest(http.MethodGet, "/api/render?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestRenderBadInput(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/render", map[string]string{"cdl": "foo[m3m]:{100}"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestExportSTL(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/export/stl", map[string]any{
		"cdl": "cubic[m3m]:{100}@1", "scale": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model/stl", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "crystal.stl")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "solid crystal"))
	// scale 5: cube corners at ±5
	assert.Contains(t, rec.Body.String(), "5.000000e+00")
}

func TestExportSTLScaleClamped(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/export/stl", map[string]any{
		"cdl": "cubic[m3m]:{100}@1", "scale": 1000,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	// Clamped to 100: no coordinate beyond ±100.
	assert.NotContains(t, rec.Body.String(), "1.000000e+03")
	assert.Contains(t, rec.Body.String(), "1.000000e+02")
}

func TestExportGLTF(t *testing.T) {
	h := newTestServer(t)
	rec := postJSON(t, h, "/api/export/gltf", map[string]any{
		"cdl": "cubic[m3m]:{111}@1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	asset := doc["asset"].(map[string]any)
	assert.Equal(t, "2.0", asset["version"])
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/validate", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/export/stl", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30.0, cfg.Elev)
	assert.Equal(t, -45.0, cfg.Azim)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9999\"\nwidth: 640\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 640, cfg.Width)
	// Untouched keys keep their defaults.
	assert.Equal(t, 300, cfg.Height)
}
