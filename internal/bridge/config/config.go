// Package config loads the per-server descriptor (read by session startup
// per the spec's server-lifecycle contract): the executable command line,
// the extension->language map, workspace detection patterns, the preload
// file list, the diagnostics strategy, environment overrides, and the
// workspace-loader variant name.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerDescriptor is a single language server's pre-validated
// configuration. The core assumes it is well-formed; Load is the only
// place that parses and validates it.
type ServerDescriptor struct {
	Name                 string            `mapstructure:"name"`
	Command              string            `mapstructure:"command"`
	Args                 []string          `mapstructure:"args"`
	ExtensionToLanguage  map[string]string `mapstructure:"extension_to_language"`
	WorkspaceDetection   []string          `mapstructure:"workspace_detection_patterns"`
	Preload              []string          `mapstructure:"preload"`
	DiagnosticsStrategy  string            `mapstructure:"diagnostics_strategy"`
	DiagnosticsWaitMS    int               `mapstructure:"diagnostics_wait_timeout_ms"`
	EnvOverrides         map[string]string `mapstructure:"env"`
	LoaderVariant        string            `mapstructure:"loader_variant"`
	FileCacheSize        int               `mapstructure:"file_cache_size"`
	LogRingCapacity      int               `mapstructure:"log_ring_capacity"`
	CursorContextRadius  int               `mapstructure:"cursor_context_radius"`
}

// DiagnosticsWaitTimeout returns the configured push-diagnostics wait
// window as a time.Duration, defaulting to 3s when unset.
func (d ServerDescriptor) DiagnosticsWaitTimeout() time.Duration {
	if d.DiagnosticsWaitMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(d.DiagnosticsWaitMS) * time.Millisecond
}

// Config is the root configuration: the active server descriptor plus
// any bridge-wide settings.
type Config struct {
	Server ServerDescriptor `mapstructure:"server"`
}

// Load reads lspbridge.yaml (or .yml) from the given paths, applying
// environment overrides via viper's automatic env binding, and returns
// the parsed, defaulted Config.
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.diagnostics_strategy", "push")
	v.SetDefault("server.diagnostics_wait_timeout_ms", 3000)
	v.SetDefault("server.loader_variant", "default")
	v.SetDefault("server.file_cache_size", 256)
	v.SetDefault("server.log_ring_capacity", 1000)
	v.SetDefault("server.cursor_context_radius", 3)

	v.SetConfigName("lspbridge")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		v.AddConfigPath(".")
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("LSPBRIDGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Command == "" {
		return fmt.Errorf("server.command must be set")
	}
	switch cfg.Server.DiagnosticsStrategy {
	case "push", "pull":
	default:
		return fmt.Errorf("server.diagnostics_strategy must be push or pull, got: %s", cfg.Server.DiagnosticsStrategy)
	}
	return nil
}
