package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/xflash/internal/config"
	"github.com/kestrelwm/xflash/internal/display"
	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/host/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Host, *config.Manager) {
	t.Helper()

	cfg, err := config.NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.SetHoldDelaySeconds(0.1))

	h := memory.New()
	ctrl := display.NewController(h, cfg)
	srv := httptest.NewServer(NewServer(ctrl, cfg).Router())
	t.Cleanup(srv.Close)

	return srv, h, cfg
}

func TestServer_Health(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Surfaces(t *testing.T) {
	srv, h, _ := newTestServer(t)
	h.AddFrame("editor", host.Visible)
	h.AddFrame("logs", host.Hidden)

	resp, err := http.Get(srv.URL + "/api/surfaces")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var frames []*host.FrameInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&frames))
	assert.Len(t, frames, 2)
}

func TestServer_FlashByName(t *testing.T) {
	srv, h, _ := newTestServer(t)
	h.AddFrame("editor", host.Visible)
	target := h.AddFrame("popup", host.Hidden)

	body, _ := json.Marshal(FlashRequest{FrameName: "popup", DurationSeconds: 0.1})
	resp, err := http.Post(srv.URL+"/api/flash", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, host.Hidden, h.Visibility(target), "visibility is restored after the flash")
}

func TestServer_FlashCreatesMissingFrame(t *testing.T) {
	srv, h, _ := newTestServer(t)
	h.AddFrame("editor", host.Visible)

	body, _ := json.Marshal(FlashRequest{FrameName: "Aux", DurationSeconds: 0.1})
	resp, err := http.Post(srv.URL+"/api/flash", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, h.FrameCount())
}

func TestServer_FlashInvalidContent(t *testing.T) {
	srv, h, _ := newTestServer(t)
	h.AddFrame("editor", host.Visible)

	body, _ := json.Marshal(FlashRequest{ContentName: "ghost", DurationSeconds: 0.1})
	resp, err := http.Post(srv.URL+"/api/flash", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_FlashDeadFrame(t *testing.T) {
	srv, h, _ := newTestServer(t)
	h.AddFrame("editor", host.Visible)

	body, _ := json.Marshal(FlashRequest{FrameID: 9999, DurationSeconds: 0.1})
	resp, err := http.Post(srv.URL+"/api/flash", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestServer_ConfigRoundtrip(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/config")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	resp.Body.Close()

	cfg.HoldDelaySeconds = 1.5
	body, _ := json.Marshal(cfg)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/config", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated config.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, 1.5, updated.HoldDelaySeconds)
}
