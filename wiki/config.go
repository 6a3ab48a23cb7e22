package wiki

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/olgasafonova/mediawiki-list-client/paging"
)

// Config holds MediaWiki connection settings
type Config struct {
	// BaseURL is the wiki API endpoint (e.g., https://wiki.example.com/w/api.php)
	BaseURL string `yaml:"url"`

	// Timeout for API requests
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent identifies the client to the wiki
	UserAgent string `yaml:"user_agent"`

	// MaxRetries for failed requests
	MaxRetries int `yaml:"max_retries"`

	// RateLimit in requests per second, 0 disables client-side limiting
	RateLimit float64 `yaml:"rate_limit"`

	// MaxLimit is the largest per-request limit the server accepts
	MaxLimit int `yaml:"max_limit"`

	// Compatibility applies to every list unless a call overrides it
	Compatibility paging.CompatibilityOptions `yaml:"compatibility"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		UserAgent:     "mediawiki-list-client/1.0 (https://github.com/olgasafonova/mediawiki-list-client)",
		MaxRetries:    3,
		MaxLimit:      MaxLimit,
		Compatibility: paging.DefaultCompatibility(),
	}
}

// LoadConfig loads configuration from the file named by MEDIAWIKI_CONFIG,
// if any, and then from environment variables.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(os.Getenv("MEDIAWIKI_CONFIG"))
}

// LoadConfigFile reads a YAML file and overlays environment variables on it.
// An empty path skips the file. overrides run last, before validation, so
// command-line flags win over both.
func LoadConfigFile(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MEDIAWIKI_URL"); v != "" {
		cfg.BaseURL = v
	}

	if t := os.Getenv("MEDIAWIKI_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	if r := os.Getenv("MEDIAWIKI_MAX_RETRIES"); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	if ua := os.Getenv("MEDIAWIKI_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}

	if r := os.Getenv("MEDIAWIKI_RATE_LIMIT"); r != "" {
		if f, err := strconv.ParseFloat(r, 64); err == nil && f >= 0 {
			cfg.RateLimit = f
		}
	}

	if m := os.Getenv("MEDIAWIKI_MAX_LIMIT"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			cfg.MaxLimit = n
		}
	}

	if b := os.Getenv("MEDIAWIKI_LOOP_BEHAVIOR"); b != "" {
		behavior, err := paging.ParseLoopBehavior(b)
		if err != nil {
			return fmt.Errorf("MEDIAWIKI_LOOP_BEHAVIOR: %w", err)
		}
		cfg.Compatibility.ContinuationLoop = behavior
	}
	return nil
}

// Validate checks that the configuration can reach a wiki.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("MEDIAWIKI_URL environment variable is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid MEDIAWIKI_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid MEDIAWIKI_URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid MEDIAWIKI_URL %q: missing host", c.BaseURL)
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = MaxLimit
	}
	return nil
}
