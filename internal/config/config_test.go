package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, DefaultAPIBaseURL)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want 300ms", cfg.SearchDebounce)
	}
	if cfg.StatusTimeout != 3*time.Second {
		t.Errorf("StatusTimeout = %v, want 3s", cfg.StatusTimeout)
	}
	if !cfg.NotifyEmptyUpload {
		t.Error("expected NotifyEmptyUpload to default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "config.ini")

	cfg := NewConfig()
	cfg.APIBaseURL = "https://files.example.com/api/"
	cfg.ProxyMode = "basic"
	cfg.ProxyHost = "proxy.corp"
	cfg.ProxyPort = 3128
	cfg.ProxyUser = "alice"
	cfg.ProxyPassword = "secret"
	cfg.SearchDebounce = 150 * time.Millisecond
	cfg.StatusTimeout = 5 * time.Second
	cfg.NotifyEmptyUpload = false
	cfg.DesktopNotifications = true
	cfg.LogLevel = "debug"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.APIBaseURL != cfg.APIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", loaded.APIBaseURL, cfg.APIBaseURL)
	}
	if loaded.ProxyMode != "basic" || loaded.ProxyHost != "proxy.corp" || loaded.ProxyPort != 3128 {
		t.Errorf("proxy = %s %s:%d, want basic proxy.corp:3128", loaded.ProxyMode, loaded.ProxyHost, loaded.ProxyPort)
	}
	if loaded.ProxyPassword != "" {
		t.Error("proxy password must not be persisted")
	}
	if loaded.SearchDebounce != 150*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want 150ms", loaded.SearchDebounce)
	}
	if loaded.StatusTimeout != 5*time.Second {
		t.Errorf("StatusTimeout = %v, want 5s", loaded.StatusTimeout)
	}
	if loaded.NotifyEmptyUpload {
		t.Error("NotifyEmptyUpload should round-trip as false")
	}
	if !loaded.DesktopNotifications {
		t.Error("DesktopNotifications should round-trip as true")
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", loaded.LogLevel)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config permissions = %04o, want 0600", perm)
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvToken, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want default", cfg.APIBaseURL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://env.example.com/api/")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBaseURL != "https://env.example.com/api/" {
		t.Errorf("APIBaseURL = %q, want env override", cfg.APIBaseURL)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env-token", cfg.Token)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := NewConfig()
	cfg.Token = "from-env"

	cfg.MergeWithFlags("", "")
	if cfg.APIBaseURL != DefaultAPIBaseURL || cfg.Token != "from-env" {
		t.Error("empty flags must not override")
	}

	cfg.MergeWithFlags("https://flag.example.com/", "from-flag")
	if cfg.APIBaseURL != "https://flag.example.com/" {
		t.Errorf("APIBaseURL = %q, want flag value", cfg.APIBaseURL)
	}
	if cfg.Token != "from-flag" {
		t.Errorf("Token = %q, want from-flag", cfg.Token)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		anyErr  bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.APIBaseURL = " " }, wantErr: ErrMissingAPIURL},
		{name: "bad url", mutate: func(c *Config) { c.APIBaseURL = "not a url" }, anyErr: true},
		{name: "bad proxy mode", mutate: func(c *Config) { c.ProxyMode = "socks" }, anyErr: true},
		{name: "basic without host", mutate: func(c *Config) { c.ProxyMode = "basic" }, wantErr: ErrMissingProxyHost},
		{name: "ntlm with host", mutate: func(c *Config) { c.ProxyMode = "ntlm"; c.ProxyHost = "proxy" }},
		{name: "port out of range", mutate: func(c *Config) { c.ProxyPort = 70000 }, anyErr: true},
		{name: "debounce too long", mutate: func(c *Config) { c.SearchDebounce = time.Hour }, wantErr: ErrInvalidDebounce},
		{name: "zero status timeout", mutate: func(c *Config) { c.StatusTimeout = 0 }, wantErr: ErrInvalidStatusTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("Validate() = nil, want error")
				}
			default:
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
			}
		})
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	cfg := NewConfig()
	if cfg.NeedsProxyPassword() {
		t.Error("no-proxy never needs a password")
	}
	cfg.ProxyMode = "ntlm"
	cfg.ProxyUser = "alice"
	if !cfg.NeedsProxyPassword() {
		t.Error("ntlm with user and no password needs a password")
	}
	cfg.ProxyPassword = "pw"
	if cfg.NeedsProxyPassword() {
		t.Error("password already set")
	}
}
