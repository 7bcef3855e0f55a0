package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Environment represents the runtime environment
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// EnvPrefix prefixes every environment variable override (MONITORSPACES_LOG_LEVEL, ...)
const EnvPrefix = "MONITORSPACES"

// Hotkey names, kept identical to the settings schema keys of the shell extension
const (
	HotkeyNextName     = "switch-to-next-workspace-on-active-monitor"
	HotkeyPreviousName = "switch-to-previous-workspace-on-active-monitor"
)

// DefaultIncompatibleExtensions are the dock extensions known to fight over
// window placement during a global workspace switch.
var DefaultIncompatibleExtensions = []string{
	"dash-to-dock@micxgx.gmail.com",
	"ubuntu-dock@ubuntu.com",
}

// Config holds the application configuration
type Config struct {
	Environment Environment `mapstructure:"ENVIRONMENT"`

	// Logging
	LogLevel LogLevel `mapstructure:"LOG_LEVEL"`
	LogMode  string   `mapstructure:"LOG_MODE"`
	LogDir   string   `mapstructure:"LOG_DIR"`
	Debug    bool     `mapstructure:"DEBUG"`

	// Switching
	AutomaticSwitching     bool     `mapstructure:"AUTOMATIC_SWITCHING"`
	HotkeyNext             string   `mapstructure:"HOTKEY_NEXT"`
	HotkeyPrevious         string   `mapstructure:"HOTKEY_PREVIOUS"`
	IncompatibleExtensions []string `mapstructure:"INCOMPATIBLE_EXTENSIONS"`

	// Environment probing
	ExtensionPollInterval time.Duration `mapstructure:"EXTENSION_POLL_INTERVAL"`

	// File the values were read from, empty when only defaults and env apply
	File string `mapstructure:"-"`
}

// Load reads configuration from the default search path and the environment
func Load() (*Config, error) {
	cfg, _, err := LoadWithViper("")
	return cfg, err
}

// LoadWithViper reads configuration from path (or the default search path when
// empty) and returns the viper instance so callers can watch the file.
func LoadWithViper(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("env")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file, continue with defaults and environment variables only
	}

	// Environment variables override the file
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Watch reloads the configuration whenever the backing file changes and
// hands every valid result to onChange. Invalid edits are reported via onError
// and otherwise ignored.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	cfg.parseCommaSeparatedFields(v)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// searchDirs lists config directories in lookup order
func searchDirs() []string {
	dirs := []string{}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "monitorspaces"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "monitorspaces"))
	}
	return append(dirs, ".")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MODE", "cli")
	v.SetDefault("LOG_DIR", defaultLogDir())
	v.SetDefault("DEBUG", false)
	v.SetDefault("AUTOMATIC_SWITCHING", true)
	v.SetDefault("HOTKEY_NEXT", "Mod4-Mod1-Up")
	v.SetDefault("HOTKEY_PREVIOUS", "Mod4-Mod1-Down")
	v.SetDefault("INCOMPATIBLE_EXTENSIONS", strings.Join(DefaultIncompatibleExtensions, ","))
	v.SetDefault("EXTENSION_POLL_INTERVAL", "10s")
}

func defaultLogDir() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "monitorspaces")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "monitorspaces")
	}
	return "log"
}

// parseCommaSeparatedFields parses comma-separated string fields into slices
func (c *Config) parseCommaSeparatedFields(v *viper.Viper) {
	if exts := v.GetString("INCOMPATIBLE_EXTENSIONS"); exts != "" {
		c.IncompatibleExtensions = splitAndTrim(exts)
	}
}

// splitAndTrim splits a comma-separated string and trims whitespace
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Production, Test:
	default:
		return fmt.Errorf("invalid environment: %s (must be development, production, or test)", c.Environment)
	}

	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.LogMode {
	case "file", "cli", "journal":
	default:
		return fmt.Errorf("invalid log mode: %s (must be file, cli, or journal)", c.LogMode)
	}

	if strings.TrimSpace(c.HotkeyNext) == "" || strings.TrimSpace(c.HotkeyPrevious) == "" {
		return fmt.Errorf("both hotkeys must be set")
	}
	if c.HotkeyNext == c.HotkeyPrevious {
		return fmt.Errorf("hotkeys must differ (both are %q)", c.HotkeyNext)
	}

	if c.ExtensionPollInterval < time.Second {
		return fmt.Errorf("invalid extension poll interval: %v (must be at least 1s)", c.ExtensionPollInterval)
	}

	return nil
}

// EffectiveLogLevel returns the configured level, forced to debug when DEBUG is set
func (c *Config) EffectiveLogLevel() LogLevel {
	if c.Debug {
		return LogLevelDebug
	}
	return c.LogLevel
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// Default returns the configuration used when nothing can be loaded
func Default() *Config {
	return &Config{
		Environment:            Production,
		LogLevel:               LogLevelInfo,
		LogMode:                "cli",
		LogDir:                 defaultLogDir(),
		AutomaticSwitching:     true,
		HotkeyNext:             "Mod4-Mod1-Up",
		HotkeyPrevious:         "Mod4-Mod1-Down",
		IncompatibleExtensions: append([]string(nil), DefaultIncompatibleExtensions...),
		ExtensionPollInterval:  10 * time.Second,
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment=%s, LogLevel=%s, LogMode=%s, AutomaticSwitching=%t, HotkeyNext=%s, HotkeyPrevious=%s, IncompatibleExtensions=%v, PollInterval=%v}",
		c.Environment, c.EffectiveLogLevel(), c.LogMode, c.AutomaticSwitching, c.HotkeyNext, c.HotkeyPrevious, c.IncompatibleExtensions, c.ExtensionPollInterval)
}
