package state

import (
	"context"
	"strings"
	"sync"

	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
)

// ExtensionLister fetches the extensions present in the user's files.
type ExtensionLister interface {
	FileExtensions(ctx context.Context) ([]string, error)
}

// ExtensionIndex holds the extension chips offered for filtering. It is
// loaded once when the dashboard mounts.
type ExtensionIndex struct {
	lister   ExtensionLister
	eventBus *events.EventBus
	logger   *logging.Logger

	mu         sync.RWMutex
	extensions []string
	loaded     bool
}

// NewExtensionIndex creates an empty index.
func NewExtensionIndex(lister ExtensionLister, eventBus *events.EventBus, logger *logging.Logger) *ExtensionIndex {
	return &ExtensionIndex{
		lister:     lister,
		eventBus:   eventBus,
		logger:     logging.OrDiscard(logger),
		extensions: make([]string, 0),
	}
}

// Load fetches the extension list. On failure the previous list is kept.
func (x *ExtensionIndex) Load(ctx context.Context) error {
	exts, err := x.lister.FileExtensions(ctx)
	if err != nil {
		x.logger.Error().Err(err).Msg("Failed to fetch file extensions")
		return err
	}

	normalized := normalizeExtensions(exts)

	x.mu.Lock()
	x.extensions = normalized
	x.loaded = true
	x.mu.Unlock()

	x.eventBus.Publish(events.NewExtensionsLoadedEvent(copyStrings(normalized)))
	return nil
}

// Extensions returns a copy of the loaded extensions.
func (x *ExtensionIndex) Extensions() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return copyStrings(x.extensions)
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Loaded reports whether a load has succeeded.
func (x *ExtensionIndex) Loaded() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.loaded
}

// Contains reports whether ext is known, case-insensitively.
func (x *ExtensionIndex) Contains(ext string) bool {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, e := range x.extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// normalizeExtensions trims whitespace and a leading dot, and drops blanks
// and case-insensitive duplicates. Order is preserved.
func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
