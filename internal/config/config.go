// Package config provides configuration management for filedash.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/filedash/filedash/internal/constants"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "FILEDASH_API_URL"
	EnvToken    = "FILEDASH_TOKEN"
	EnvLogLevel = "FILEDASH_LOG_LEVEL"
)

// DefaultAPIBaseURL points at a locally running API server.
const DefaultAPIBaseURL = "http://localhost:8000/api/"

// Config holds the client configuration.
//
// INI format:
//
//	[server]
//	api_url = http://localhost:8000/api/
//	request_timeout_seconds = 30
//
//	[proxy]
//	mode = no-proxy
//	host = proxy.corp
//	port = 8080
//	user = alice
//	no_proxy = localhost,127.0.0.1
//	warmup = false
//
//	[dashboard]
//	search_debounce_ms = 300
//	status_timeout_ms = 3000
//	notify_empty_upload = true
//
//	[notifications]
//	desktop = false
//
//	[logging]
//	level = info
//	file = /home/alice/.config/filedash/logs/filedash.log
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration

	// Proxy settings. The password is never written to disk.
	ProxyMode     string
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string
	ProxyWarmup   bool

	SearchDebounce    time.Duration
	StatusTimeout     time.Duration
	NotifyEmptyUpload bool

	DesktopNotifications bool

	LogLevel string
	LogFile  string

	// Token comes from FILEDASH_TOKEN and takes precedence over the token file.
	Token string
}

// Validation errors
var (
	ErrMissingAPIURL     = errors.New("api_url is required")
	ErrInvalidProxyMode  = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost  = errors.New("proxy host is required for basic and ntlm modes")
	ErrInvalidDebounce   = errors.New("search_debounce_ms is out of range")
	ErrInvalidStatusTime = errors.New("status_timeout_ms is out of range")
)

var proxyModes = []interface{}{"", "no-proxy", "system", "basic", "ntlm"}

// NewConfig returns a config populated with defaults.
func NewConfig() *Config {
	return &Config{
		APIBaseURL:        DefaultAPIBaseURL,
		RequestTimeout:    constants.APIRequestTimeout,
		ProxyMode:         "no-proxy",
		SearchDebounce:    constants.SearchDebounceDelay,
		StatusTimeout:     constants.StatusMessageTimeout,
		NotifyEmptyUpload: true,
		LogLevel:          "info",
	}
}

// Load reads configuration from an INI file and applies environment overrides.
// A missing file yields defaults; an unreadable one is an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			iniFile, err := ini.Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			cfg.readINI(iniFile)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

func (c *Config) readINI(f *ini.File) {
	server := f.Section("server")
	c.APIBaseURL = server.Key("api_url").MustString(c.APIBaseURL)
	c.RequestTimeout = time.Duration(server.Key("request_timeout_seconds").MustInt(int(c.RequestTimeout/time.Second))) * time.Second

	proxy := f.Section("proxy")
	c.ProxyMode = strings.ToLower(proxy.Key("mode").MustString(c.ProxyMode))
	c.ProxyHost = proxy.Key("host").String()
	c.ProxyPort = proxy.Key("port").MustInt(0)
	c.ProxyUser = proxy.Key("user").String()
	c.NoProxy = proxy.Key("no_proxy").String()
	c.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	dash := f.Section("dashboard")
	c.SearchDebounce = time.Duration(dash.Key("search_debounce_ms").MustInt64(c.SearchDebounce.Milliseconds())) * time.Millisecond
	c.StatusTimeout = time.Duration(dash.Key("status_timeout_ms").MustInt64(c.StatusTimeout.Milliseconds())) * time.Millisecond
	c.NotifyEmptyUpload = dash.Key("notify_empty_upload").MustBool(c.NotifyEmptyUpload)

	c.DesktopNotifications = f.Section("notifications").Key("desktop").MustBool(false)

	logSection := f.Section("logging")
	c.LogLevel = logSection.Key("level").MustString(c.LogLevel)
	c.LogFile = logSection.Key("file").String()
}

// ApplyEnv loads a .env file from the working directory when present and
// applies FILEDASH_* overrides.
func (c *Config) ApplyEnv() {
	// Missing .env is the common case.
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// MergeWithFlags applies command-line overrides. Empty values are ignored.
func (c *Config) MergeWithFlags(apiURL, token string) {
	if apiURL != "" {
		c.APIBaseURL = apiURL
	}
	if token != "" {
		c.Token = token
	}
}

// Save writes the configuration to an INI file with owner-only permissions.
// The proxy password and environment token are not persisted.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
		if path == "" {
			return fmt.Errorf("failed to determine config path")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	server, err := iniFile.NewSection("server")
	if err != nil {
		return fmt.Errorf("failed to create server section: %w", err)
	}
	server.Key("api_url").SetValue(cfg.APIBaseURL)
	server.Key("request_timeout_seconds").SetValue(fmt.Sprintf("%d", int(cfg.RequestTimeout/time.Second)))

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(fmt.Sprintf("%d", cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(fmt.Sprintf("%t", cfg.ProxyWarmup))

	dash, err := iniFile.NewSection("dashboard")
	if err != nil {
		return fmt.Errorf("failed to create dashboard section: %w", err)
	}
	dash.Key("search_debounce_ms").SetValue(fmt.Sprintf("%d", cfg.SearchDebounce.Milliseconds()))
	dash.Key("status_timeout_ms").SetValue(fmt.Sprintf("%d", cfg.StatusTimeout.Milliseconds()))
	dash.Key("notify_empty_upload").SetValue(fmt.Sprintf("%t", cfg.NotifyEmptyUpload))

	notifications, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notifications.Key("desktop").SetValue(fmt.Sprintf("%t", cfg.DesktopNotifications))

	logSection, err := iniFile.NewSection("logging")
	if err != nil {
		return fmt.Errorf("failed to create logging section: %w", err)
	}
	logSection.Key("level").SetValue(cfg.LogLevel)
	logSection.Key("file").SetValue(cfg.LogFile)

	// Temporary file + rename so a crash never leaves a half-written config
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrMissingAPIURL
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL, is.URL),
		validation.Field(&c.ProxyMode, validation.In(proxyModes...).Error(ErrInvalidProxyMode.Error())),
		validation.Field(&c.ProxyPort, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	mode := strings.ToLower(c.ProxyMode)
	if (mode == "basic" || mode == "ntlm") && strings.TrimSpace(c.ProxyHost) == "" {
		return ErrMissingProxyHost
	}
	if c.SearchDebounce < constants.MinSearchDebounceDelay || c.SearchDebounce > constants.MaxSearchDebounceDelay {
		return ErrInvalidDebounce
	}
	if c.StatusTimeout <= 0 || c.StatusTimeout > constants.MaxStatusMessageTimeout {
		return ErrInvalidStatusTime
	}

	return nil
}

// NeedsProxyPassword reports whether the proxy mode needs credentials that
// have not been provided yet. The CLI prompts for the password in that case.
func (c *Config) NeedsProxyPassword() bool {
	mode := strings.ToLower(c.ProxyMode)
	if mode != "basic" && mode != "ntlm" {
		return false
	}
	return c.ProxyUser != "" && c.ProxyPassword == ""
}
