package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, DefaultEndpoint)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.RoundSize != DefaultRoundSize {
		t.Errorf("RoundSize = %d, want %d", cfg.RoundSize, DefaultRoundSize)
	}
	if !cfg.SaveHistory {
		t.Error("SaveHistory should default to true")
	}
}

// TestEffectiveBatchSize tests the credential-driven concurrency policy.
func TestEffectiveBatchSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		token     string
		batchSize int
		want      int
	}{
		{"anonymous is sequential", "", 0, DefaultAnonBatchSize},
		{"credential enables concurrency", "secret", 0, DefaultAuthBatchSize},
		{"explicit size wins over credential", "secret", 3, 3},
		{"explicit size wins when anonymous", "", 8, 8},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.Token = tt.token
			cfg.BatchSize = tt.batchSize

			if got := cfg.EffectiveBatchSize(); got != tt.want {
				t.Errorf("EffectiveBatchSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.EntryURL = "https://docs.example.com/"
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing entry URL", func(c *Config) { c.EntryURL = "" }, ErrNoEntryURL},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, ErrNoEndpoint},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero round size", func(c *Config) { c.RoundSize = 0 }, ErrInvalidRoundSize},
		{"negative batch size", func(c *Config) { c.BatchSize = -1 }, ErrInvalidBatchSize},
		{"negative max body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"conflicting formats", func(c *Config) { c.JSONSummary = true; c.MarkdownSummary = true }, ErrConflictingSummaryFormats},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".doccrawl")
		content := `
defaults:
  headers:
    X-Respond-With: text
sites:
  docs.example.com:
    token: site-token
    batchSize: 3
    headers:
      X-Target-Selector: main
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}

		sc := cf.GetSiteConfig("docs.example.com")
		if sc.Token != "site-token" {
			t.Errorf("Token = %q, want site-token", sc.Token)
		}
		if sc.BatchSize != 3 {
			t.Errorf("BatchSize = %d, want 3", sc.BatchSize)
		}
		if sc.Headers["X-Respond-With"] != "text" {
			t.Error("default header should be merged in")
		}
		if sc.Headers["X-Target-Selector"] != "main" {
			t.Error("site header should be present")
		}
	})

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{Headers: map[string]string{"X-Respond-With": "text"}},
			Sites:    map[string]SiteConfig{},
		}

		sc := cf.GetSiteConfig("unknown.example.com")
		if sc.Headers["X-Respond-With"] != "text" {
			t.Error("defaults should apply to unknown hosts")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".doccrawl")
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests search behavior with explicit paths.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("sites: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}

// TestXDGDirs tests that XDG paths embed the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if got := XDGDataDir(); filepath.Base(got) != AppName {
		t.Errorf("XDGDataDir = %q, want basename %q", got, AppName)
	}
	if got := XDGConfigDir(); filepath.Base(got) != AppName {
		t.Errorf("XDGConfigDir = %q, want basename %q", got, AppName)
	}
}
