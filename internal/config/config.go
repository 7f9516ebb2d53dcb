// Package config loads and validates the captionmate configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/captionmate/captionmate/internal/media"
)

// NASConfig contains the SMB connection settings.
type NASConfig struct {
	Protocol string `mapstructure:"protocol"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Domain   string `mapstructure:"domain"`
}

// Address returns host:port for dialing.
func (n NASConfig) Address() string {
	port := n.Port
	if port == 0 {
		port = 445
	}
	return fmt.Sprintf("%s:%d", n.Host, port)
}

// SubtitlesConfig controls subtitle languages and naming.
type SubtitlesConfig struct {
	Languages     []string `mapstructure:"languages"`
	Formats       []string `mapstructure:"formats"`
	NamingPattern string   `mapstructure:"naming_pattern"`
}

// DefaultLanguage returns the first configured language.
func (s SubtitlesConfig) DefaultLanguage() string {
	if len(s.Languages) > 0 {
		return s.Languages[0]
	}
	return "zh-cn"
}

// OpenSubtitlesConfig contains the subtitle provider credentials. The
// API key is mandatory for provider operations; username and password
// are optional and only raise the download quota.
type OpenSubtitlesConfig struct {
	APIKey    string `mapstructure:"api_key"`
	UserAgent string `mapstructure:"user_agent"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// ScanningConfig controls directory scanning.
type ScanningConfig struct {
	VideoExtensions []string `mapstructure:"video_extensions"`
	Recursive       bool     `mapstructure:"recursive"`
	SkipExisting    bool     `mapstructure:"skip_existing"`
}

// AIConfig contains AI matching configuration. Provider is "ollama" or
// "openai" (any OpenAI-compatible endpoint).
type AIConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Provider       string  `mapstructure:"provider"`
	Endpoint       string  `mapstructure:"endpoint"`
	Model          string  `mapstructure:"model"`
	APIKey         string  `mapstructure:"api_key"`
	Threshold      float64 `mapstructure:"threshold"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Timeout returns the model call timeout, defaulting to two minutes.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// LoggingConfig mirrors logging.Config for the config file.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// ServeConfig controls the REST API server.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the root configuration.
type Config struct {
	NAS           NASConfig           `mapstructure:"nas"`
	Subtitles     SubtitlesConfig     `mapstructure:"subtitles"`
	OpenSubtitles OpenSubtitlesConfig `mapstructure:"opensubtitles"`
	Scanning      ScanningConfig      `mapstructure:"scanning"`
	AI            AIConfig            `mapstructure:"ai"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Serve         ServeConfig         `mapstructure:"serve"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		NAS: NASConfig{
			Protocol: "smb",
			Port:     445,
			Domain:   "WORKGROUP",
		},
		Subtitles: SubtitlesConfig{
			Languages:     []string{"zh-cn", "en"},
			Formats:       []string{"srt", "ass"},
			NamingPattern: "{filename}.{lang}.{ext}",
		},
		OpenSubtitles: OpenSubtitlesConfig{
			UserAgent: "captionmate-v1.0",
		},
		Scanning: ScanningConfig{
			VideoExtensions: append([]string(nil), media.DefaultVideoExtensions...),
			Recursive:       true,
			SkipExisting:    true,
		},
		AI: AIConfig{
			Enabled:        false,
			Provider:       "ollama",
			Endpoint:       "http://localhost:11434",
			Model:          "qwen2.5:7b",
			Threshold:      0.8,
			TimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
		Serve: ServeConfig{
			Addr: ":8687",
		},
	}
}

// ConfigPath returns the config file location,
// ~/.config/captionmate/config.yaml by default.
func ConfigPath() (string, error) {
	if custom := os.Getenv("CAPTIONMATE_CONFIG"); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "captionmate", "config.yaml"), nil
}

// Load reads the config file, or returns defaults when it does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// Language tags in the file may be written loosely ("zh_CN", "EN");
	// everything downstream compares the canonical lowercase form.
	cfg.Subtitles.Languages = canonicalLanguages(cfg.Subtitles.Languages)

	return cfg, nil
}

func canonicalLanguages(tags []string) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = media.CanonicalLanguage(tag)
	}
	return out
}

// Save writes the config as YAML, creating the directory when needed.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.Set("nas", map[string]any{
		"protocol": c.NAS.Protocol,
		"host":     c.NAS.Host,
		"port":     c.NAS.Port,
		"username": c.NAS.Username,
		"password": c.NAS.Password,
		"domain":   c.NAS.Domain,
	})
	v.Set("subtitles", map[string]any{
		"languages":      c.Subtitles.Languages,
		"formats":        c.Subtitles.Formats,
		"naming_pattern": c.Subtitles.NamingPattern,
	})
	v.Set("opensubtitles", map[string]any{
		"api_key":    c.OpenSubtitles.APIKey,
		"user_agent": c.OpenSubtitles.UserAgent,
		"username":   c.OpenSubtitles.Username,
		"password":   c.OpenSubtitles.Password,
	})
	v.Set("scanning", map[string]any{
		"video_extensions": c.Scanning.VideoExtensions,
		"recursive":        c.Scanning.Recursive,
		"skip_existing":    c.Scanning.SkipExisting,
	})
	v.Set("ai", map[string]any{
		"enabled":         c.AI.Enabled,
		"provider":        c.AI.Provider,
		"endpoint":        c.AI.Endpoint,
		"model":           c.AI.Model,
		"api_key":         c.AI.APIKey,
		"threshold":       c.AI.Threshold,
		"timeout_seconds": c.AI.TimeoutSeconds,
	})
	v.Set("logging", map[string]any{
		"level":       c.Logging.Level,
		"file":        c.Logging.File,
		"max_size_mb": c.Logging.MaxSizeMB,
		"max_backups": c.Logging.MaxBackups,
	})
	v.Set("serve", map[string]any{
		"addr": c.Serve.Addr,
	})

	return v.WriteConfigAs(path)
}

// Validate returns every configuration problem found, empty when the
// config is usable for NAS operations.
func (c *Config) Validate() []string {
	var errs []string

	if c.NAS.Host == "" {
		errs = append(errs, "NAS host is required")
	}
	switch c.NAS.Protocol {
	case "smb":
	default:
		errs = append(errs, fmt.Sprintf("unsupported NAS protocol %q (only smb is implemented)", c.NAS.Protocol))
	}

	if c.AI.Enabled {
		switch c.AI.Provider {
		case "ollama", "openai":
		default:
			errs = append(errs, fmt.Sprintf("unknown AI provider %q", c.AI.Provider))
		}
		if c.AI.Endpoint == "" {
			errs = append(errs, "AI enabled but no endpoint configured")
		}
		if c.AI.Model == "" {
			errs = append(errs, "AI enabled but no model configured")
		}
		if c.AI.Provider == "openai" && c.AI.APIKey == "" {
			errs = append(errs, "openai provider requires an api_key")
		}
		if c.AI.Threshold < 0 || c.AI.Threshold > 1 {
			errs = append(errs, "ai threshold must be between 0 and 1")
		}
	}

	for _, ext := range c.Scanning.VideoExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("video extension %q must start with a dot", ext))
		}
	}

	return errs
}

// Get returns a config value by dot-notation key, e.g. "nas.host".
func (c *Config) Get(key string) (any, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	switch section {
	case "nas":
		switch field {
		case "protocol":
			return c.NAS.Protocol, nil
		case "host":
			return c.NAS.Host, nil
		case "port":
			return c.NAS.Port, nil
		case "username":
			return c.NAS.Username, nil
		case "password":
			return c.NAS.Password, nil
		case "domain":
			return c.NAS.Domain, nil
		}
	case "subtitles":
		switch field {
		case "languages":
			return c.Subtitles.Languages, nil
		case "formats":
			return c.Subtitles.Formats, nil
		case "naming_pattern":
			return c.Subtitles.NamingPattern, nil
		}
	case "opensubtitles":
		switch field {
		case "api_key":
			return c.OpenSubtitles.APIKey, nil
		case "user_agent":
			return c.OpenSubtitles.UserAgent, nil
		case "username":
			return c.OpenSubtitles.Username, nil
		case "password":
			return c.OpenSubtitles.Password, nil
		}
	case "scanning":
		switch field {
		case "video_extensions":
			return c.Scanning.VideoExtensions, nil
		case "recursive":
			return c.Scanning.Recursive, nil
		case "skip_existing":
			return c.Scanning.SkipExisting, nil
		}
	case "ai":
		switch field {
		case "enabled":
			return c.AI.Enabled, nil
		case "provider":
			return c.AI.Provider, nil
		case "endpoint":
			return c.AI.Endpoint, nil
		case "model":
			return c.AI.Model, nil
		case "api_key":
			return c.AI.APIKey, nil
		case "threshold":
			return c.AI.Threshold, nil
		case "timeout_seconds":
			return c.AI.TimeoutSeconds, nil
		}
	case "serve":
		if field == "addr" {
			return c.Serve.Addr, nil
		}
	}

	return nil, fmt.Errorf("unknown config key: %s", key)
}

// Set updates a config value by dot-notation key, converting the string
// to the field's type.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "nas":
		switch field {
		case "protocol":
			c.NAS.Protocol = value
			return nil
		case "host":
			c.NAS.Host = value
			return nil
		case "port":
			return setInt(&c.NAS.Port, key, value)
		case "username":
			c.NAS.Username = value
			return nil
		case "password":
			c.NAS.Password = value
			return nil
		case "domain":
			c.NAS.Domain = value
			return nil
		}
	case "subtitles":
		switch field {
		case "languages":
			c.Subtitles.Languages = canonicalLanguages(splitList(value))
			return nil
		case "formats":
			c.Subtitles.Formats = splitList(value)
			return nil
		case "naming_pattern":
			c.Subtitles.NamingPattern = value
			return nil
		}
	case "opensubtitles":
		switch field {
		case "api_key":
			c.OpenSubtitles.APIKey = value
			return nil
		case "user_agent":
			c.OpenSubtitles.UserAgent = value
			return nil
		case "username":
			c.OpenSubtitles.Username = value
			return nil
		case "password":
			c.OpenSubtitles.Password = value
			return nil
		}
	case "scanning":
		switch field {
		case "video_extensions":
			c.Scanning.VideoExtensions = splitList(value)
			return nil
		case "recursive":
			return setBool(&c.Scanning.Recursive, key, value)
		case "skip_existing":
			return setBool(&c.Scanning.SkipExisting, key, value)
		}
	case "ai":
		switch field {
		case "enabled":
			return setBool(&c.AI.Enabled, key, value)
		case "provider":
			c.AI.Provider = value
			return nil
		case "endpoint":
			c.AI.Endpoint = value
			return nil
		case "model":
			c.AI.Model = value
			return nil
		case "api_key":
			c.AI.APIKey = value
			return nil
		case "threshold":
			return setFloat(&c.AI.Threshold, key, value)
		case "timeout_seconds":
			return setInt(&c.AI.TimeoutSeconds, key, value)
		}
	case "serve":
		if field == "addr" {
			c.Serve.Addr = value
			return nil
		}
	}

	return fmt.Errorf("unknown config key: %s", key)
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setInt(dst *int, key, value string) error {
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil {
		return fmt.Errorf("%s expects an integer: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setFloat(dst *float64, key, value string) error {
	var parsed float64
	if _, err := fmt.Sscanf(value, "%g", &parsed); err != nil {
		return fmt.Errorf("%s expects a number: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setBool(dst *bool, key, value string) error {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		*dst = true
	case "false", "0", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("%s expects a boolean", key)
	}
	return nil
}
