package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults applied by the getters when a value is unset or out of range.
const (
	DefaultResolverURL  = "https://bili-music.hk.cn2.nickdoth.cc"
	DefaultTimeout      = 10 * time.Second
	DefaultOutput       = "speaker"
	DefaultRetryDelay   = time.Second
	DefaultReferer      = "https://www.bilibili.com/"
	DefaultLogLevel     = "info"
	defaultRateLimit    = 2.0
	maxRetriesUnlimited = 0
)

type Config struct {
	Resolver ResolverConfig `koanf:"resolver"`
	Playback PlaybackConfig `koanf:"playback"`
	State    StateConfig    `koanf:"state"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Notify   NotifyConfig   `koanf:"notify"`
	UI       UIConfig       `koanf:"ui"`
}

// ResolverConfig configures the audio URL resolver service.
type ResolverConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit *float64      `koanf:"rate_limit"` // requests per second, <= 0 disables (default: 2)
}

// PlaybackConfig configures the output and the retry policy.
type PlaybackConfig struct {
	Output     string        `koanf:"output"`      // output id bound at start (default: "speaker")
	RetryDelay time.Duration `koanf:"retry_delay"` // delay before re-resolving after a media error (default: 1s)
	MaxRetries int           `koanf:"max_retries"` // 0 retries forever
	Referer    string        `koanf:"referer"`     // sent with audio downloads
	Volume     float64       `koanf:"volume"`      // 0-1, 0 means full volume
}

// StateConfig configures the playlist store.
type StateConfig struct {
	Path         string        `koanf:"path"` // empty means $XDG_DATA_HOME/bilimusic/bilimusic.db
	SaveDebounce time.Duration `koanf:"save_debounce"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"` // TUI log file, empty means $XDG_STATE_HOME/bilimusic/bilimusic.log
}

// UIConfig configures the TUI.
type UIConfig struct {
	Icons string `koanf:"icons"` // "nerd", "unicode" or "none" (default)
}

// NotifyConfig configures desktop notifications.
type NotifyConfig struct {
	Enabled bool `koanf:"enabled"` // "now playing" notification on each track
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g. "127.0.0.1:9464", empty disables
}

// Load reads the config files in priority order. extra, when not empty, is
// loaded last and must exist.
func Load(extra string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}
	if extra != "" {
		if err := k.Load(file.Provider(expandPath(extra)), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize resolver URL (remove trailing slash)
	cfg.Resolver.BaseURL = strings.TrimSuffix(cfg.Resolver.BaseURL, "/")

	// Expand ~ in paths
	cfg.State.Path = expandPath(cfg.State.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/bilimusic/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "bilimusic", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetResolverConfig returns the resolver configuration with defaults applied.
func (c *Config) GetResolverConfig() ResolverConfig {
	cfg := c.Resolver
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResolverURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == nil {
		limit := defaultRateLimit
		cfg.RateLimit = &limit
	}
	return cfg
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = maxRetriesUnlimited
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		cfg.Volume = 0
	}
	return cfg
}

// GetLogLevel returns the configured log level, defaulting to info.
func (c *Config) GetLogLevel() string {
	if c.Log.Level == "" {
		return DefaultLogLevel
	}
	return c.Log.Level
}

// HasMetrics returns true if the metrics listener is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Listen != ""
}
