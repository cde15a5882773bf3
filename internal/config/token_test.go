package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestTokenFileRoundTrip(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "nested", "token"))

	if _, err := store.Read(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Read on missing file = %v, want ErrNoToken", err)
	}

	if err := store.Write("  abc123 \n"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Read() = %q, want %q", got, "abc123")
	}

	if runtime.GOOS != "windows" {
		info, _ := os.Stat(store.Path)
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("token permissions = %04o, want 0600", perm)
		}
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Errorf("second Remove should be a no-op, got %v", err)
	}
	if _, err := store.Read(); !errors.Is(err, ErrNoToken) {
		t.Errorf("Read after Remove = %v, want ErrNoToken", err)
	}
}

func TestTokenFileRejectsEmpty(t *testing.T) {
	store := NewTokenFile(filepath.Join(t.TempDir(), "token"))
	if err := store.Write("   "); err == nil {
		t.Error("expected error writing empty token")
	}
}

func TestTokenFileWarnsOnInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var warnings bytes.Buffer
	store := &TokenFile{Path: path, Warnings: &warnings}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "tok" {
		t.Errorf("Read() = %q, want tok", got)
	}
	if !strings.Contains(warnings.String(), "insecure permissions") {
		t.Errorf("expected insecure permission warning, got %q", warnings.String())
	}
}
