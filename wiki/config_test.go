package wiki

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olgasafonova/mediawiki-list-client/paging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MEDIAWIKI_URL", "MEDIAWIKI_TIMEOUT", "MEDIAWIKI_MAX_RETRIES", "MEDIAWIKI_USER_AGENT",
		"MEDIAWIKI_RATE_LIMIT", "MEDIAWIKI_MAX_LIMIT", "MEDIAWIKI_LOOP_BEHAVIOR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFile_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
url: https://wiki.example.org/w/api.php
timeout: 10s
max_retries: 1
rate_limit: 2.5
max_limit: 50
compatibility:
  continuation_loop: fetch-more
  history_window: 4
`)

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.BaseURL != "https://wiki.example.org/w/api.php" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.MaxRetries != 1 || cfg.RateLimit != 2.5 || cfg.MaxLimit != 50 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Compatibility.ContinuationLoop != paging.FetchMore || cfg.Compatibility.HistoryWindow != 4 {
		t.Errorf("Compatibility = %+v", cfg.Compatibility)
	}
	if cfg.UserAgent != DefaultConfig().UserAgent {
		t.Errorf("UserAgent = %q, want default", cfg.UserAgent)
	}
}

func TestLoadConfigFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "url: https://file.example.org/w/api.php\nmax_retries: 1\n")
	t.Setenv("MEDIAWIKI_URL", "https://env.example.org/w/api.php")
	t.Setenv("MEDIAWIKI_MAX_RETRIES", "5")
	t.Setenv("MEDIAWIKI_TIMEOUT", "not-a-duration")
	t.Setenv("MEDIAWIKI_LOOP_BEHAVIOR", "fetch-more")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.BaseURL != "https://env.example.org/w/api.php" {
		t.Errorf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default for an invalid value", cfg.Timeout)
	}
	if cfg.Compatibility.ContinuationLoop != paging.FetchMore {
		t.Errorf("ContinuationLoop = %v, want fetch-more", cfg.Compatibility.ContinuationLoop)
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{"missing url", "timeout: 5s\n", nil, "MEDIAWIKI_URL"},
		{"bad scheme", "url: ftp://wiki.example.org/api.php\n", nil, "scheme"},
		{"missing host", "url: https:///api.php\n", nil, "host"},
		{"bad loop behavior", "url: https://wiki.example.org/w/api.php\n", map[string]string{"MEDIAWIKI_LOOP_BEHAVIOR": "retry-forever"}, "MEDIAWIKI_LOOP_BEHAVIOR"},
		{"bad yaml loop behavior", "url: https://wiki.example.org/w/api.php\ncompatibility:\n  continuation_loop: sometimes\n", nil, "continuation loop behavior"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfigFile(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigFile_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDIAWIKI_CONFIG", "")
	t.Setenv("MEDIAWIKI_URL", "http://localhost:8080/api.php")
	t.Setenv("MEDIAWIKI_MAX_LIMIT", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxLimit != MaxLimit {
		t.Errorf("MaxLimit = %d, want %d", cfg.MaxLimit, MaxLimit)
	}
	if cfg.Compatibility != paging.DefaultCompatibility() {
		t.Errorf("Compatibility = %+v, want defaults", cfg.Compatibility)
	}
}

func TestLoadConfigFile_OverridesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDIAWIKI_URL", "https://env.example.org/w/api.php")

	cfg, err := LoadConfigFile("", func(c *Config) {
		c.BaseURL = "https://flag.example.org/w/api.php"
		c.MaxLimit = -1
	})
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.BaseURL != "https://flag.example.org/w/api.php" {
		t.Errorf("BaseURL = %q, want the override", cfg.BaseURL)
	}
	if cfg.MaxLimit != MaxLimit {
		t.Errorf("MaxLimit = %d, want Validate to restore %d", cfg.MaxLimit, MaxLimit)
	}
}
