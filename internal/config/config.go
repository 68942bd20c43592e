package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kestrelwm/xflash/internal/logger"
)

// Config is the process-wide xflash configuration. HoldDelaySeconds and
// CreationParameters may be changed at runtime by the embedding
// application; the controller reads a snapshot at the start of each call.
type Config struct {
	// HoldDelaySeconds is how long a flashed surface is held visible when
	// no condition terminates the hold earlier.
	HoldDelaySeconds float64 `json:"hold_delay_seconds" yaml:"hold_delay_seconds"`

	// CreationParameters are applied when a named frame has to be created
	// because no live frame matched. Keys are host-interpreted, e.g.
	// "visibility", "width", "height", "x", "y".
	CreationParameters map[string]string `json:"creation_parameters" yaml:"creation_parameters"`

	ServerPort int    `json:"server_port" yaml:"server_port"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
}

// Manager owns the configuration file and serializes access to the
// in-memory config.
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
}

// NewManager loads configuration from configPath, or from the default
// location when configPath is empty. A missing file is created with
// defaults.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "xflash", "config.yaml")
	}

	m := &Manager{configPath: configPath}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = defaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return m, nil
}

func defaults() *Config {
	return &Config{
		HoldDelaySeconds:   0.5,
		CreationParameters: map[string]string{},
		ServerPort:         8080,
		LogLevel:           "info",
	}
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.HoldDelaySeconds <= 0 {
		cfg.HoldDelaySeconds = 0.5
	}
	if cfg.CreationParameters == nil {
		cfg.CreationParameters = map[string]string{}
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = 8080
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// Save writes the current configuration to disk.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = defaults()
	}

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return err
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config saved")
	return nil
}

// Get returns a copy of the current configuration. The copy is a snapshot;
// later setter calls do not affect it.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := *m.config
	cfg.CreationParameters = make(map[string]string, len(m.config.CreationParameters))
	for k, v := range m.config.CreationParameters {
		cfg.CreationParameters[k] = v
	}
	return &cfg
}

// Update replaces the entire configuration and persists it.
func (m *Manager) Update(cfg *Config) error {
	if cfg.CreationParameters == nil {
		cfg.CreationParameters = map[string]string{}
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

// HoldDelay returns the configured hold delay as a duration.
func (m *Manager) HoldDelay() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Duration(m.config.HoldDelaySeconds * float64(time.Second))
}

// SetHoldDelaySeconds updates the hold delay and persists the change.
func (m *Manager) SetHoldDelaySeconds(seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("hold delay must be positive, got %v", seconds)
	}
	m.mu.Lock()
	m.config.HoldDelaySeconds = seconds
	m.mu.Unlock()
	return m.Save()
}

// CreationParameters returns a copy of the current creation parameters.
func (m *Manager) CreationParameters() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	params := make(map[string]string, len(m.config.CreationParameters))
	for k, v := range m.config.CreationParameters {
		params[k] = v
	}
	return params
}

// SetCreationParameter sets one creation parameter and persists the change.
func (m *Manager) SetCreationParameter(key, value string) error {
	if key == "" {
		return fmt.Errorf("creation parameter key must not be empty")
	}
	m.mu.Lock()
	m.config.CreationParameters[key] = value
	m.mu.Unlock()
	return m.Save()
}

// RemoveCreationParameter deletes one creation parameter and persists the
// change.
func (m *Manager) RemoveCreationParameter(key string) error {
	m.mu.Lock()
	delete(m.config.CreationParameters, key)
	m.mu.Unlock()
	return m.Save()
}

// SetPort updates the API server port and persists the change.
func (m *Manager) SetPort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	m.mu.Lock()
	m.config.ServerPort = port
	m.mu.Unlock()
	return m.Save()
}

// GetPort returns the API server port.
func (m *Manager) GetPort() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ServerPort
}

// SetLogLevel updates the log level and persists the change.
func (m *Manager) SetLogLevel(level string) error {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
	return m.Save()
}

// GetLogLevel returns the configured log level.
func (m *Manager) GetLogLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.LogLevel
}

// GetConfigPath returns the path of the configuration file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
