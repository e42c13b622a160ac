package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// Thresholds are the two sentiment cutoffs applied to compound scores.
// A score <= Negative labels a headline negative, >= Positive labels it
// positive, anything in between is neutral.
type Thresholds struct {
	Negative float64 `yaml:"negative"`
	Positive float64 `yaml:"positive"`
}

type Config struct {
	CacheTTL      string     `yaml:"cache_ttl"`
	LookbackHours int        `yaml:"lookback_hours"`
	BinSize       string     `yaml:"bin_size"`
	MaxPerSource  int        `yaml:"max_per_source,omitempty"`
	Thresholds    Thresholds `yaml:"thresholds"`
	Sources       []Source   `yaml:"sources"`
}

// MinBinSize and MaxBinSize bound the time-series bucket width.
const (
	MinBinSize = time.Minute
	MaxBinSize = time.Hour
)

func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

func (c *Config) Lookback() time.Duration {
	if c.LookbackHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.LookbackHours) * time.Hour
}

func (c *Config) BinSizeDuration() time.Duration {
	d, err := time.ParseDuration(c.BinSize)
	if err != nil || d < MinBinSize || d > MaxBinSize {
		return 5 * time.Minute
	}
	return d
}

// EntryCap returns the per-source fetch cap, defaulting to 50.
func (c *Config) EntryCap() int {
	if c.MaxPerSource <= 0 {
		return 50
	}
	return c.MaxPerSource
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsmood", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}

	t := cfg.Thresholds
	if t.Negative < -1 || t.Negative > 0 {
		return fmt.Errorf("thresholds: negative cutoff %.2f outside [-1, 0]", t.Negative)
	}
	if t.Positive < 0 || t.Positive > 1 {
		return fmt.Errorf("thresholds: positive cutoff %.2f outside [0, 1]", t.Positive)
	}
	if t.Negative >= t.Positive {
		return fmt.Errorf("thresholds: negative cutoff %.2f must be below positive cutoff %.2f", t.Negative, t.Positive)
	}

	if cfg.BinSize != "" {
		d, err := time.ParseDuration(cfg.BinSize)
		if err != nil {
			return fmt.Errorf("bin_size: %w", err)
		}
		if d < MinBinSize || d > MaxBinSize {
			return fmt.Errorf("bin_size %s outside [%s, %s]", cfg.BinSize, MinBinSize, MaxBinSize)
		}
	}

	return nil
}
