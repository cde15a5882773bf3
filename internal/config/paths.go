package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDir is the directory name used under the user's config root.
const AppDir = "filedash"

// ConfigDirectory returns the platform-appropriate config directory.
//   - Windows: %APPDATA%\filedash
//   - Unix: ~/.config/filedash
func ConfigDirectory() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDir)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppDir)
	}
	return ""
}

// DefaultConfigPath returns the default INI path, or "" if no home directory
// can be determined.
func DefaultConfigPath() string {
	dir := ConfigDirectory()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.ini")
}

// DefaultTokenPath returns where the session token is persisted.
func DefaultTokenPath() string {
	dir := ConfigDirectory()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "token")
}

// LogDirectory returns the directory used for rotating log files.
func LogDirectory() string {
	dir := ConfigDirectory()
	if dir == "" {
		return filepath.Join(os.TempDir(), AppDir+"-logs")
	}
	return filepath.Join(dir, "logs")
}

// DefaultLogFile returns the log file path used when logging to file is
// enabled without an explicit path.
func DefaultLogFile() string {
	return filepath.Join(LogDirectory(), AppDir+".log")
}

// EnsureConfigDir creates the config directory with owner-only permissions.
func EnsureConfigDir() error {
	dir := ConfigDirectory()
	if dir == "" {
		return os.ErrNotExist
	}
	return os.MkdirAll(dir, 0700)
}
