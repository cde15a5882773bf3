package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoToken is returned when no token has been stored yet.
var ErrNoToken = errors.New("no token stored")

// TokenFile persists the session bearer token in a single owner-only file.
type TokenFile struct {
	Path string

	// Warnings receives insecure-permission warnings. Defaults to os.Stderr.
	Warnings io.Writer
}

// NewTokenFile returns a token store at path, or at DefaultTokenPath when
// path is empty.
func NewTokenFile(path string) *TokenFile {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &TokenFile{Path: path}
}

// Read returns the stored token. Whitespace is trimmed.
// Returns ErrNoToken if the file is missing or empty.
func (t *TokenFile) Read() (string, error) {
	info, err := os.Stat(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}

	// Token files should be readable only by the owner
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		w := t.Warnings
		if w == nil {
			w = os.Stderr
		}
		fmt.Fprintf(w, "Warning: Token file %s has insecure permissions %04o. Consider using 'chmod 600 %s'\n", t.Path, mode, t.Path)
	}

	data, err := os.ReadFile(t.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Write stores token with 0600 permissions, creating parent directories.
func (t *TokenFile) Write(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("cannot write empty token")
	}

	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	if err := os.WriteFile(t.Path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Remove deletes the stored token. Removing a missing token is not an error.
func (t *TokenFile) Remove() error {
	if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
