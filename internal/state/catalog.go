// Package state provides observable state containers for the dashboard.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/filedash/filedash/internal/constants"
	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/schedule"
)

// FileLister fetches the catalog for a set of criteria.
type FileLister interface {
	ListFiles(ctx context.Context, criteria models.SearchCriteria) ([]models.FileRecord, error)
}

// Status is the catalog lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

// FileCatalog holds the user's file list for the current search criteria.
//
// Criteria changes are debounced: each SetQuery or SetExtensionFilter
// restarts one shared timer, and when it fires a single fetch runs with the
// criteria as they are at that moment. Every fetch takes a sequence number;
// a completed fetch commits only if its number is higher than every fetch
// that completed before it, so a slow response for old criteria can never
// overwrite a newer one.
type FileCatalog struct {
	lister   FileLister
	eventBus *events.EventBus
	logger   *logging.Logger
	delay    time.Duration
	debounce schedule.Timer

	// Base context for debounced fetches, cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	criteria  models.SearchCriteria
	files     []models.FileRecord
	outcome   Status // Result of the newest completed fetch
	lastErr   error
	issued    uint64
	committed uint64
	inflight  int
}

// NewFileCatalog creates an idle catalog. A negative delay uses the default
// 300ms debounce.
func NewFileCatalog(lister FileLister, delay time.Duration, eventBus *events.EventBus, logger *logging.Logger) *FileCatalog {
	if delay < 0 {
		delay = constants.SearchDebounceDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FileCatalog{
		lister:   lister,
		eventBus: eventBus,
		logger:   logging.OrDiscard(logger),
		delay:    delay,
		ctx:      ctx,
		cancel:   cancel,
		files:    make([]models.FileRecord, 0),
		outcome:  StatusIdle,
	}
}

// SetQuery updates the search text and restarts the debounce.
func (c *FileCatalog) SetQuery(text string) {
	c.mu.Lock()
	c.criteria.Query = text
	c.mu.Unlock()
	c.scheduleFetch()
}

// SetExtensionFilter updates the extension filter ("" clears it) and
// restarts the debounce.
func (c *FileCatalog) SetExtensionFilter(ext string) {
	c.mu.Lock()
	c.criteria.Extension = ext
	c.mu.Unlock()
	c.scheduleFetch()
}

func (c *FileCatalog) scheduleFetch() {
	c.debounce.Reset(c.delay, func() {
		_ = c.fetch(c.ctx, c.Criteria())
	})
}

// Refresh fetches immediately with the current criteria and waits for the
// result. A pending debounced fetch is left alone.
func (c *FileCatalog) Refresh(ctx context.Context) error {
	return c.fetch(ctx, c.Criteria())
}

func (c *FileCatalog) fetch(ctx context.Context, criteria models.SearchCriteria) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.inflight++
	c.mu.Unlock()

	c.logger.Debug().
		Uint64("seq", seq).
		Str("search", criteria.Query).
		Str("ext", criteria.Extension).
		Msg("Fetching catalog")
	c.eventBus.Publish(events.NewCatalogLoadingEvent(seq, criteria))

	files, err := c.lister.ListFiles(ctx, criteria)

	c.mu.Lock()
	c.inflight--
	if seq <= c.committed {
		c.mu.Unlock()
		c.logger.Debug().Uint64("seq", seq).Msg("Discarding stale catalog response")
		return nil
	}
	c.committed = seq
	if err != nil {
		c.outcome = StatusError
		c.lastErr = err
		c.mu.Unlock()

		c.logger.Error().Err(err).Uint64("seq", seq).Msg("Failed to fetch files")
		c.eventBus.Publish(events.NewCatalogErrorEvent(seq, criteria, err))
		return err
	}
	if files == nil {
		files = make([]models.FileRecord, 0)
	}
	c.files = files
	c.outcome = StatusReady
	c.lastErr = nil
	snapshot := copyFiles(files)
	c.mu.Unlock()

	c.eventBus.Publish(events.NewCatalogUpdatedEvent(seq, criteria, snapshot))
	return nil
}

// Criteria returns the current search criteria.
func (c *FileCatalog) Criteria() models.SearchCriteria {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.criteria
}

// Status returns fetching while any fetch is in flight, otherwise the
// outcome of the newest completed fetch.
func (c *FileCatalog) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.inflight > 0 {
		return StatusFetching
	}
	return c.outcome
}

// Err returns the error of the newest completed fetch, if it failed.
func (c *FileCatalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Files returns a copy of the committed snapshot in server order.
func (c *FileCatalog) Files() []models.FileRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyFiles(c.files)
}

// VisibleFiles returns the snapshot filtered by the active extension.
func (c *FileCatalog) VisibleFiles() []models.FileRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ext := c.criteria.Extension
	visible := make([]models.FileRecord, 0, len(c.files))
	for _, f := range c.files {
		if f.HasExtension(ext) {
			visible = append(visible, f)
		}
	}
	return visible
}

// CommittedSeq returns the sequence number of the newest committed fetch.
func (c *FileCatalog) CommittedSeq() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.committed
}

// Close cancels the pending debounce and any debounced fetch in flight.
func (c *FileCatalog) Close() {
	c.debounce.Close()
	c.cancel()
}

func copyFiles(in []models.FileRecord) []models.FileRecord {
	out := make([]models.FileRecord, len(in))
	copy(out, in)
	return out
}
