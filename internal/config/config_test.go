package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)
	return m, path
}

func TestNewManager_CreatesDefaults(t *testing.T) {
	m, path := newTestManager(t)

	cfg := m.Get()
	assert.Equal(t, 0.5, cfg.HoldDelaySeconds)
	assert.Empty(t, cfg.CreationParameters)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)

	_, err := os.Stat(path)
	assert.NoError(t, err, "default config file must be written")
}

func TestManager_Roundtrip(t *testing.T) {
	m, path := newTestManager(t)

	require.NoError(t, m.SetHoldDelaySeconds(2.5))
	require.NoError(t, m.SetCreationParameter("visibility", "false"))
	require.NoError(t, m.SetPort(9290))

	reloaded, err := NewManager(path)
	require.NoError(t, err)

	cfg := reloaded.Get()
	assert.Equal(t, 2.5, cfg.HoldDelaySeconds)
	assert.Equal(t, map[string]string{"visibility": "false"}, cfg.CreationParameters)
	assert.Equal(t, 9290, cfg.ServerPort)
}

func TestManager_HoldDelay(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Equal(t, 500*time.Millisecond, m.HoldDelay())

	require.NoError(t, m.SetHoldDelaySeconds(0.2))
	assert.Equal(t, 200*time.Millisecond, m.HoldDelay())

	assert.Error(t, m.SetHoldDelaySeconds(0))
	assert.Error(t, m.SetHoldDelaySeconds(-1))
}

func TestManager_GetReturnsSnapshot(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.SetCreationParameter("width", "800"))

	cfg := m.Get()
	cfg.CreationParameters["width"] = "9999"

	assert.Equal(t, "800", m.CreationParameters()["width"], "mutating a snapshot must not affect the manager")
}

func TestManager_RemoveCreationParameter(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.SetCreationParameter("x", "10"))
	require.NoError(t, m.RemoveCreationParameter("x"))
	assert.Empty(t, m.CreationParameters())
}

func TestManager_InvalidPort(t *testing.T) {
	m, _ := newTestManager(t)

	assert.Error(t, m.SetPort(0))
	assert.Error(t, m.SetPort(70000))
}
