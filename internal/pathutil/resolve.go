// Package pathutil resolves user-supplied local paths and makes server
// filenames safe to write.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveAbsolutePath expands a leading ~ and returns an absolute path.
// Symlinks are resolved in the existing portion of the path; components
// that do not exist yet are appended unchanged.
func ResolveAbsolutePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = home + path[1:]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved, nil
	}

	// Walk up to the deepest existing ancestor, resolve it, and re-append
	// the rest
	current := absPath
	var remainder []string
	for {
		if _, err := os.Stat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				resolved = current
			}
			for i := len(remainder) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, remainder[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absPath, nil
		}
		remainder = append(remainder, filepath.Base(current))
		current = parent
	}
}

var invisibleChars = strings.NewReplacer(
	"\u200B", "", // Zero-width space
	"\u200C", "", // Zero-width non-joiner
	"\u200D", "", // Zero-width joiner
	"\uFEFF", "", // BOM
	"\u00AD", "", // Soft hyphen
	"\u2060", "", // Word joiner
)

// SafeFilename reduces a server-supplied filename to a single path element:
// directories are dropped, invisible characters removed, and reserved
// names rejected. It returns "" when nothing usable remains.
func SafeFilename(name string) string {
	name = invisibleChars.Replace(name)
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(filepath.Clean("/" + name))
	name = strings.TrimSpace(name)

	switch name {
	case "", ".", "..", "/":
		return ""
	}
	if name == string(filepath.Separator) {
		return ""
	}
	return name
}
