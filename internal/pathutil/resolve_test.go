package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveAbsolutePathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ResolveAbsolutePath("~/filedash-test-missing/dir")
	if err != nil {
		t.Fatalf("ResolveAbsolutePath: %v", err)
	}
	resolvedHome, err := filepath.EvalSymlinks(home)
	if err != nil {
		t.Skip("home directory does not exist")
	}
	want := filepath.Join(resolvedHome, "filedash-test-missing", "dir")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAbsolutePathKeepsMissingComponents(t *testing.T) {
	base, _ := filepath.EvalSymlinks(t.TempDir())
	got, err := ResolveAbsolutePath(filepath.Join(base, "a", "b"))
	if err != nil {
		t.Fatalf("ResolveAbsolutePath: %v", err)
	}
	if want := filepath.Join(base, "a", "b"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAbsolutePathEmptyIsCwd(t *testing.T) {
	got, err := ResolveAbsolutePath("")
	if err != nil {
		t.Fatalf("ResolveAbsolutePath: %v", err)
	}
	wd, _ := os.Getwd()
	if got != wd {
		t.Errorf("got %q, want %q", got, wd)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"re\u200Bport.pdf", "report.pdf"},
		{"  spaced.txt ", "spaced.txt"},
		{"..", ""},
		{"", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := SafeFilename(tt.in); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
