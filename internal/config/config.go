package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bryanchriswhite/gamewatch/internal/gamemode"
	"github.com/bryanchriswhite/gamewatch/internal/logger"
	"github.com/bryanchriswhite/gamewatch/internal/window"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Display is the X display to connect to; empty means $DISPLAY.
	Display string `json:"display" yaml:"display"`
	// Screen selects the root window to watch; negative means the default screen.
	Screen       int           `json:"screen" yaml:"screen"`
	MarkerAtom   string        `json:"marker_atom" yaml:"marker_atom"`
	PIDAtom      string        `json:"pid_atom" yaml:"pid_atom"`
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	LogLevel     string        `json:"log_level" yaml:"log_level"`
	LogPretty    bool          `json:"log_pretty" yaml:"log_pretty"`

	GameMode GameModeConfig `json:"gamemode" yaml:"gamemode"`
}

// GameModeConfig points at the GameMode daemon on the session bus
type GameModeConfig struct {
	Service   string        `json:"service" yaml:"service"`
	Path      string        `json:"path" yaml:"path"`
	Interface string        `json:"interface" yaml:"interface"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// MarshalJSON writes durations the way the YAML file spells them ("5s").
func (g GameModeConfig) MarshalJSON() ([]byte, error) {
	type plain GameModeConfig
	return json.Marshal(struct {
		plain
		Timeout string `json:"timeout"`
	}{plain(g), g.Timeout.String()})
}

// MarshalJSON writes durations the way the YAML file spells them ("50ms").
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return json.Marshal(struct {
		plain
		PollInterval string `json:"poll_interval"`
	}{plain(c), c.PollInterval.String()})
}

// Options converts the section into client options
func (g GameModeConfig) Options() gamemode.Options {
	return gamemode.Options{
		Service:   g.Service,
		Path:      g.Path,
		Interface: g.Interface,
		Timeout:   g.Timeout,
	}
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Screen:       -1,
		MarkerAtom:   window.DefaultMarkerAtom,
		PIDAtom:      window.DefaultPIDAtom,
		PollInterval: window.DefaultPollInterval,
		LogLevel:     "info",
		GameMode: GameModeConfig{
			Service:   gamemode.DefaultService,
			Path:      gamemode.DefaultPath,
			Interface: gamemode.DefaultInterface,
			Timeout:   gamemode.DefaultTimeout,
		},
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch {
	case c.MarkerAtom == "":
		return errors.New("marker_atom must not be empty")
	case c.PIDAtom == "":
		return errors.New("pid_atom must not be empty")
	case c.PollInterval <= 0:
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	case c.GameMode.Timeout <= 0:
		return fmt.Errorf("gamemode.timeout must be positive, got %s", c.GameMode.Timeout)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/gamewatch/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "gamewatch", "config.yaml"), nil
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager loads configFile, or the default path when empty. A missing
// file is not an error; the defaults are used instead.
func NewManager(configFile string) (*Manager, error) {
	path := configFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	m := &Manager{configPath: path}
	if err := m.load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Debug().
			Str("path", path).
			Msg("Config file not found, using defaults")
		m.config = Defaults()
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	// Unset keys keep their default values
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// Update applies fn to the configuration and validates the result
func (m *Manager) Update(fn func(*Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := *m.config
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	m.config = &next
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	data, err := yaml.Marshal(m.config)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the configuration file path
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
