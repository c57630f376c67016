// Package config provides configuration types, defaults and validation
// for observer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/observer/internal/formatter"
	"github.com/zjrosen/observer/internal/log"
	"github.com/zjrosen/observer/internal/tracing"
)

// Config holds all configuration options for observer.
type Config struct {
	Name      string         `mapstructure:"name"`      // Holder label
	Observers []string       `mapstructure:"observers"` // Formatter kinds, in registration order
	Color     bool           `mapstructure:"color"`     // Style formatter labels with lipgloss
	Watch     WatchConfig    `mapstructure:"watch"`
	Log       LogConfig      `mapstructure:"log"`
	Tracing   tracing.Config `mapstructure:"tracing"`
}

// WatchConfig holds options for the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig holds debug logging options.
type LogConfig struct {
	File  string `mapstructure:"file"`  // Log file path; empty logs to stderr when --debug is set
	Level string `mapstructure:"level"` // debug (default), info, warn, error
}

// DefaultName is the holder label used when none is configured.
const DefaultName = "test1"

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Name:      DefaultName,
		Observers: DefaultObservers(),
		Watch:     WatchConfig{Debounce: 200 * time.Millisecond},
		Log:       LogConfig{Level: "debug"},
		Tracing:   tracing.DefaultConfig(),
	}
}

// DefaultObservers returns the formatter kinds registered when none are configured.
func DefaultObservers() []string {
	return []string{formatter.KindHex, formatter.KindBinary}
}

// Validate checks every section and returns the first problem found.
func Validate(cfg Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := ValidateObservers(cfg.Observers); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateObservers checks that every kind is known and appears once.
// Returns nil for an empty list (no observers is a valid setup).
func ValidateObservers(kinds []string) error {
	seen := make(map[string]int, len(kinds))
	for i, kind := range kinds {
		if !formatter.IsKind(kind) {
			return fmt.Errorf("observers[%d]: unknown kind %q (valid: %v)", i, kind, formatter.Kinds())
		}
		if prev, dup := seen[kind]; dup {
			return fmt.Errorf("observers[%d]: kind %q already listed at observers[%d]", i, kind, prev)
		}
		seen[kind] = i
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if tracing is disabled.
func ValidateTracing(t tracing.Config) error {
	if !t.Enabled {
		return nil
	}
	switch t.Exporter {
	case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP, "":
	default:
		return fmt.Errorf("tracing.exporter must be one of none, file, stdout, otlp, got %q", t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be in (0, 1], got %v", t.SampleRate)
	}
	return nil
}

// ResolveTracing fills in defaults that depend on the environment.
func ResolveTracing(t tracing.Config) tracing.Config {
	if t.Enabled && t.Exporter == tracing.ExporterFile && t.FilePath == "" {
		t.FilePath = DefaultTracesFilePath()
	}
	return t
}

// DefaultTracesFilePath returns ~/.config/observer/traces/traces.jsonl,
// or a relative path when the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".observer", "traces", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "observer", "traces", "traces.jsonl")
}

// DefaultConfigTemplate returns the file written by "observer init".
// Reading it back yields Defaults().
func DefaultConfigTemplate() string {
	return `# Observer Configuration

# Label of the observed value holder
name: test1

# Formatters notified on every change, in this order.
# Available kinds: bin, dec, hex, oct
observers:
  - hex
  - bin

# Style formatter labels (only when the terminal supports color)
color: false

# watch command settings
watch:
  debounce: 200ms   # Quiet period before a file change is applied

# Debug logging (enable with --debug or OBSERVER_DEBUG=1)
log:
  # file: /tmp/observer.log
  level: debug      # debug, info, warn, error

# Tracing of observer updates
tracing:
  enabled: false
  exporter: file    # none, file, stdout, otlp
  # file_path: ~/.config/observer/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: observer
`
}

// WriteDefaultConfig creates a config file with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
