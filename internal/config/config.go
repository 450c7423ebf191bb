// Package config provides configuration types and defaults for shortcuts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zjrosen/shortcuts/internal/log"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config holds all configuration options for shortcuts.
type Config struct {
	Debug    bool           `mapstructure:"debug"`
	LogPath  string         `mapstructure:"log_path"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Channel  ChannelConfig  `mapstructure:"channel"`
	Launcher LauncherConfig `mapstructure:"launcher"`
	Registry RegistryConfig `mapstructure:"registry"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Theme    ThemeConfig    `mapstructure:"theme"`
}

// ThemeConfig overrides TUI colors. Empty values keep the built-in palette.
type ThemeConfig struct {
	Muted   string `mapstructure:"muted"`
	Error   string `mapstructure:"error"`
	Success string `mapstructure:"success"`
}

// BackendConfig locates the backend service.
type BackendConfig struct {
	URL            string        `mapstructure:"url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ChannelConfig tunes the event channel reconnect loop.
type ChannelConfig struct {
	MinBackoff time.Duration `mapstructure:"min_backoff"`
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	Buffer     int           `mapstructure:"buffer"` // inbound frames buffered before handlers run
}

// LauncherConfig describes the host launcher stub entry and navigation routes.
type LauncherConfig struct {
	// StubName is the display name of the single reusable launcher entry.
	StubName string `mapstructure:"stub_name"`

	// OrphanPrefix identifies per-instance entries left behind by earlier
	// versions. Every catalog entry whose name starts with it is removed at startup.
	OrphanPrefix string `mapstructure:"orphan_prefix"`

	// RunnerPath is the program registered as the stub's executable.
	RunnerPath string `mapstructure:"runner_path"`
	StartDir   string `mapstructure:"start_dir"`

	DetailsRoute string `mapstructure:"details_route"` // ":appid" is substituted with the stub id
	HomeRoute    string `mapstructure:"home_route"`

	// CatalogFile persists the in-memory host catalog. Empty keeps it in memory only.
	CatalogFile string `mapstructure:"catalog_file"`
}

// RegistryConfig tunes the instance registry.
type RegistryConfig struct {
	StartTimeout  time.Duration `mapstructure:"start_timeout"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	TombstoneTTL  time.Duration `mapstructure:"tombstone_ttl"`
}

// DaemonConfig configures the reference backend daemon.
type DaemonConfig struct {
	Addr      string        `mapstructure:"addr"`
	DBPath    string        `mapstructure:"db_path"`
	SeedFile  string        `mapstructure:"seed_file"`
	Shell     string        `mapstructure:"shell"`
	StopGrace time.Duration `mapstructure:"stop_grace"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/shortcuts/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DetailsPath returns the details route for the given stub id.
func (l LauncherConfig) DetailsPath(appID string) string {
	return strings.ReplaceAll(l.DetailsRoute, ":appid", appID)
}

// ConfigDir returns ~/.config/shortcuts or an empty string if home is unavailable.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "shortcuts")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/shortcuts/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// DefaultDBPath returns the default daemon database path.
func DefaultDBPath() string {
	dir := ConfigDir()
	if dir == "" {
		return "shortcuts.db"
	}
	return filepath.Join(dir, "shortcuts.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			URL:            "http://localhost:5000",
			RequestTimeout: 10 * time.Second,
		},
		Channel: ChannelConfig{
			MinBackoff: 250 * time.Millisecond,
			MaxBackoff: 10 * time.Second,
			Buffer:     64,
		},
		Launcher: LauncherConfig{
			StubName:     "Bash Shortcuts",
			OrphanPrefix: "Bash Shortcuts - Instance",
			RunnerPath:   "",
			StartDir:     "",
			DetailsRoute: "/library/app/:appid",
			HomeRoute:    "/library/home",
		},
		Registry: RegistryConfig{
			StartTimeout:  15 * time.Second,
			QueueCapacity: 256,
			TombstoneTTL:  time.Minute,
		},
		Daemon: DaemonConfig{
			Addr:      "127.0.0.1:5000",
			DBPath:    DefaultDBPath(),
			Shell:     "/bin/sh",
			StopGrace: 5 * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateBackend(c.Backend); err != nil {
		return err
	}
	if err := ValidateChannel(c.Channel); err != nil {
		return err
	}
	if err := ValidateLauncher(c.Launcher); err != nil {
		return err
	}
	if err := ValidateRegistry(c.Registry); err != nil {
		return err
	}
	if c.Daemon.StopGrace < 0 {
		return fmt.Errorf("daemon.stop_grace must not be negative, got %v", c.Daemon.StopGrace)
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTheme checks that theme overrides are hex colors.
func ValidateTheme(t ThemeConfig) error {
	for name, v := range map[string]string{"muted": t.Muted, "error": t.Error, "success": t.Success} {
		if v != "" && !hexColor.MatchString(v) {
			return fmt.Errorf("theme.%s must be a hex color like #AABBCC, got %q", name, v)
		}
	}
	return nil
}

// ValidateBackend checks backend configuration for errors.
func ValidateBackend(b BackendConfig) error {
	if b.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if !strings.HasPrefix(b.URL, "http://") && !strings.HasPrefix(b.URL, "https://") {
		return fmt.Errorf("backend.url must be an http or https URL, got %q", b.URL)
	}
	if b.RequestTimeout <= 0 {
		return fmt.Errorf("backend.request_timeout must be positive, got %v", b.RequestTimeout)
	}
	return nil
}

// ValidateChannel checks channel configuration for errors.
func ValidateChannel(c ChannelConfig) error {
	if c.MinBackoff <= 0 {
		return fmt.Errorf("channel.min_backoff must be positive, got %v", c.MinBackoff)
	}
	if c.MaxBackoff <= 0 {
		return fmt.Errorf("channel.max_backoff must be positive, got %v", c.MaxBackoff)
	}
	if c.MinBackoff > c.MaxBackoff {
		return fmt.Errorf("channel.min_backoff (%v) must not exceed channel.max_backoff (%v)", c.MinBackoff, c.MaxBackoff)
	}
	if c.Buffer < 0 {
		return fmt.Errorf("channel.buffer must not be negative, got %d", c.Buffer)
	}
	return nil
}

// ValidateLauncher checks launcher configuration for errors.
// The orphan prefix must never match the stub itself, or the startup purge
// would delete the entry it is about to reuse.
func ValidateLauncher(l LauncherConfig) error {
	if strings.TrimSpace(l.StubName) == "" {
		return fmt.Errorf("launcher.stub_name is required")
	}
	if l.OrphanPrefix != "" && strings.HasPrefix(l.StubName, l.OrphanPrefix) {
		return fmt.Errorf("launcher.orphan_prefix %q must not match launcher.stub_name %q", l.OrphanPrefix, l.StubName)
	}
	if l.DetailsRoute != "" && !strings.Contains(l.DetailsRoute, ":appid") {
		return fmt.Errorf("launcher.details_route must contain :appid, got %q", l.DetailsRoute)
	}
	return nil
}

// ValidateRegistry checks registry configuration for errors.
func ValidateRegistry(r RegistryConfig) error {
	if r.StartTimeout <= 0 {
		return fmt.Errorf("registry.start_timeout must be positive, got %v", r.StartTimeout)
	}
	if r.TombstoneTTL <= 0 {
		return fmt.Errorf("registry.tombstone_ttl must be positive, got %v", r.TombstoneTTL)
	}
	if r.QueueCapacity < 0 {
		return fmt.Errorf("registry.queue_capacity must not be negative, got %d", r.QueueCapacity)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Shortcuts Configuration

# Write a debug log (also enabled by --debug or SHORTCUTS_DEBUG=1)
debug: false
# log_path: debug.log

# Backend service that stores shortcuts and supervises processes
backend:
  url: http://localhost:5000
  request_timeout: 10s

# Event channel reconnect tuning
channel:
  min_backoff: 250ms
  max_backoff: 10s
  buffer: 64

# Host launcher integration
launcher:
  stub_name: Bash Shortcuts                 # Name of the single reusable launcher entry
  orphan_prefix: Bash Shortcuts - Instance  # Entries with this prefix are removed at startup
  # runner_path: /usr/local/bin/shortcuts-runner
  # start_dir: /home/user
  details_route: /library/app/:appid
  home_route: /library/home
  # catalog_file: ~/.config/shortcuts/catalog.json

# Instance registry
registry:
  start_timeout: 15s   # How long a launch waits for the started event
  queue_capacity: 256  # Pending registry commands before submit blocks
  tombstone_ttl: 1m    # How long killed instances stay addressable for late exit events

# Reference backend daemon (shortcuts daemon)
daemon:
  addr: 127.0.0.1:5000
  # db_path: ~/.config/shortcuts/shortcuts.db
  # seed_file: ~/.config/shortcuts/seed.json
  shell: /bin/sh
  stop_grace: 5s

# Distributed tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/shortcuts/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Color overrides for the TUI
# theme:
#   muted: "#696969"
#   error: "#FF8787"
#   success: "#73F59F"
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
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
