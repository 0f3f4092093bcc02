// Package config loads the pingu tool configuration from TOML.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed templates/config.tmpl
var configTemplateText string

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "PINGU_CONFIG"

// Config represents the tool configuration stored in ~/.pingu/config.toml.
type Config struct {
	Fetch   FetchConfig   `toml:"fetch"`
	Catalog CatalogConfig `toml:"catalog"`
	Log     LogConfig     `toml:"log"`
	Render  RenderConfig  `toml:"render"`
	Watch   WatchConfig   `toml:"watch"`
}

// FetchConfig contains log download settings.
type FetchConfig struct {
	// TimeoutSeconds bounds each download attempt.
	// Defaults to 5 seconds when not specified.
	TimeoutSeconds *int `toml:"timeout_seconds"`

	// MaxRetries is the number of retries after a failed attempt.
	// Defaults to 2 when not specified.
	MaxRetries *int `toml:"max_retries"`

	// CacheMinutes is how long downloaded logs are reused.
	// Defaults to 10 minutes. Set to 0 to disable caching.
	CacheMinutes *int `toml:"cache_minutes"`
}

// GetTimeout returns the per-attempt download timeout.
func (f *FetchConfig) GetTimeout() time.Duration {
	if f.TimeoutSeconds != nil && *f.TimeoutSeconds > 0 {
		return time.Duration(*f.TimeoutSeconds) * time.Second
	}
	return 5 * time.Second
}

// GetMaxRetries returns the retry count. Negative values mean no retries.
func (f *FetchConfig) GetMaxRetries() int {
	if f.MaxRetries == nil {
		return 2
	}
	if *f.MaxRetries < 0 {
		return 0
	}
	return *f.MaxRetries
}

// GetCacheTTL returns how long fetched logs are cached. Zero disables the cache.
func (f *FetchConfig) GetCacheTTL() time.Duration {
	if f.CacheMinutes == nil {
		return 10 * time.Minute
	}
	if *f.CacheMinutes <= 0 {
		return 0
	}
	return time.Duration(*f.CacheMinutes) * time.Minute
}

// CatalogConfig points at an alternative reference catalog.
type CatalogConfig struct {
	// Path to a catalog TOML file. Empty uses the built-in catalog.
	Path string `toml:"path"`
}

// LogConfig contains debug log settings.
type LogConfig struct {
	// Path of the JSON debug log. Defaults to ~/.pingu/debug.log.
	// Set to "-" to disable logging.
	Path string `toml:"path"`

	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string `toml:"level"`
}

// GetPath returns the debug log path, or "" when logging is disabled.
func (l *LogConfig) GetPath() string {
	switch l.Path {
	case "-":
		return ""
	case "":
		return filepath.Join(Dir(), "debug.log")
	default:
		return l.Path
	}
}

// GetLevel returns the configured level name, defaulting to "info".
func (l *LogConfig) GetLevel() string {
	if l.Level == "" {
		return "info"
	}
	return l.Level
}

// RenderConfig contains terminal output settings.
type RenderConfig struct {
	// Width wraps message text at this many columns.
	// Defaults to 100 when not specified.
	Width *int `toml:"width"`

	// Color controls whether severity styles are applied.
	// Defaults to true when not specified.
	Color *bool `toml:"color"`
}

// GetWidth returns the wrap width.
func (r *RenderConfig) GetWidth() int {
	if r.Width != nil && *r.Width > 0 {
		return *r.Width
	}
	return 100
}

// ShouldColor reports whether output is styled.
// Defaults to true when not explicitly configured.
func (r *RenderConfig) ShouldColor() bool {
	if r.Color == nil {
		return true
	}
	return *r.Color
}

// WatchConfig contains settings for the watch command.
type WatchConfig struct {
	// DebounceMillis coalesces bursts of writes to the watched log.
	// Defaults to 250 milliseconds when not specified.
	DebounceMillis *int `toml:"debounce_millis"`
}

// GetDebounce returns the watch debounce interval.
func (w *WatchConfig) GetDebounce() time.Duration {
	if w.DebounceMillis != nil && *w.DebounceMillis > 0 {
		return time.Duration(*w.DebounceMillis) * time.Millisecond
	}
	return 250 * time.Millisecond
}

// Dir returns the directory holding the config and debug log.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pingu"
	}
	return filepath.Join(home, ".pingu")
}

// Find returns the config file path: $PINGU_CONFIG if set, otherwise
// ~/.pingu/config.toml. The file need not exist.
func Find() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// SaveDocumentedConfig writes a fully documented config to the specified path.
// This creates a config file with inline comments explaining all available options.
func (c *Config) SaveDocumentedConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	content, err := c.GenerateDocumentedConfig()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

// configTemplateData holds the data used to render the config template.
type configTemplateData struct {
	TimeoutSeconds int
	MaxRetries     int
	CacheMinutes   int
	CatalogPath    string
	LogPath        string
	LogLevel       string
	Width          int
	Color          bool
	DebounceMillis int
}

// tomlString formats a string for TOML output with proper escaping.
func tomlString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

// configTemplate is the parsed template for generating documented config files.
var configTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"tomlString": tomlString,
}).Parse(configTemplateText))

// GenerateDocumentedConfig renders the effective settings as a commented
// config.toml.
func (c *Config) GenerateDocumentedConfig() (string, error) {
	data := configTemplateData{
		TimeoutSeconds: int(c.Fetch.GetTimeout() / time.Second),
		MaxRetries:     c.Fetch.GetMaxRetries(),
		CacheMinutes:   int(c.Fetch.GetCacheTTL() / time.Minute),
		CatalogPath:    c.Catalog.Path,
		LogPath:        c.Log.Path,
		LogLevel:       c.Log.GetLevel(),
		Width:          c.Render.GetWidth(),
		Color:          c.Render.ShouldColor(),
		DebounceMillis: int(c.Watch.GetDebounce() / time.Millisecond),
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return buf.String(), nil
}
