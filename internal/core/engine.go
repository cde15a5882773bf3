// Package core wires the dashboard components together behind one Engine
// that hosts (CLI, shell, or any other frontend) drive with UI events.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/filedash/filedash/internal/api"
	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/constants"
	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/notify"
	"github.com/filedash/filedash/internal/preview"
	"github.com/filedash/filedash/internal/services"
	"github.com/filedash/filedash/internal/session"
	"github.com/filedash/filedash/internal/state"
)

// Dependencies are the host-provided collaborators. Nil fields get safe
// defaults: deletes are never confirmed, downloads fail, and navigation is
// a no-op.
type Dependencies struct {
	Confirmer services.Confirmer
	Saver     services.Saver
	Navigator services.Navigator
	Sinks     []notify.Sink
	Logger    *logging.Logger
}

// Engine is the dashboard orchestrator.
type Engine struct {
	config   *config.Config
	session  *session.Session
	client   *api.Client
	eventBus *events.EventBus
	logger   *logging.Logger

	notices    *notify.Center
	catalog    *state.FileCatalog
	extensions *state.ExtensionIndex
	uploads    *services.UploadCoordinator
	previews   *services.PreviewSession
	profile    *services.ProfileMenu

	closeOnce sync.Once
}

// NewEngine builds every component against cfg. The session must already
// be initialized; the gateway reads its token on every request.
func NewEngine(cfg *config.Config, sess *session.Session, deps Dependencies) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewLogger("engine")
	}

	client, err := api.NewClient(cfg, sess, logger.Sub("api"))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	eventBus := events.NewEventBus(constants.EventBusDefaultBuffer)

	center := notify.NewCenter(cfg.StatusTimeout, eventBus, logger.Sub("notify"))
	for _, sink := range deps.Sinks {
		center.AddSink(sink)
	}
	if cfg.DesktopNotifications {
		center.AddSink(notify.NewNotifier(true, logger.Sub("desktop")))
	}

	confirmer := deps.Confirmer
	if confirmer == nil {
		confirmer = denyAll{}
	}
	saver := deps.Saver
	if saver == nil {
		saver = noSaver{}
	}
	navigator := deps.Navigator
	if navigator == nil {
		navigator = stayPut{}
	}

	catalog := state.NewFileCatalog(client, cfg.SearchDebounce, eventBus, logger.Sub("catalog"))
	extensions := state.NewExtensionIndex(client, eventBus, logger.Sub("extensions"))

	uploads := services.NewUploadCoordinator(client, catalog, center, eventBus, logger.Sub("upload"))
	uploads.NotifyEmptySelection = cfg.NotifyEmptyUpload

	previews := services.NewPreviewSession(client, catalog, center, confirmer, saver, eventBus, logger.Sub("preview"))
	profile := services.NewProfileMenu(client, sess, navigator, eventBus, logger.Sub("profile"))

	return &Engine{
		config:     cfg,
		session:    sess,
		client:     client,
		eventBus:   eventBus,
		logger:     logger,
		notices:    center,
		catalog:    catalog,
		extensions: extensions,
		uploads:    uploads,
		previews:   previews,
		profile:    profile,
	}, nil
}

// Events returns the event bus for subscriptions.
func (e *Engine) Events() *events.EventBus { return e.eventBus }

// API returns the request gateway.
func (e *Engine) API() *api.Client { return e.client }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config { return e.config }

// Notices returns the status line owner.
func (e *Engine) Notices() *notify.Center { return e.notices }

// Mount runs the initial loads concurrently: the signed-in user, the
// extension list, and the catalog. Each one degrades on its own, so a
// failure in one does not stop the others. The first error is returned
// for the host to log.
func (e *Engine) Mount(ctx context.Context) error {
	if !e.session.Active() {
		return session.ErrNotSignedIn
	}

	var g errgroup.Group
	g.Go(func() error { return e.profile.LoadUser(ctx) })
	g.Go(func() error { return e.extensions.Load(ctx) })
	g.Go(func() error { return e.catalog.Refresh(ctx) })

	err := g.Wait()
	if err != nil {
		e.logger.Warn().Err(err).Msg("Dashboard mounted with errors")
	} else {
		e.logger.Debug().Msg("Dashboard mounted")
	}
	return err
}

// SetQuery changes the search text; the catalog refetches after the
// debounce.
func (e *Engine) SetQuery(text string) { e.catalog.SetQuery(text) }

// ClearQuery empties the search text.
func (e *Engine) ClearQuery() { e.catalog.SetQuery("") }

// ToggleExtension selects ext as the filter, or clears the filter when ext
// is already the active one.
func (e *Engine) ToggleExtension(ext string) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext != "" && strings.EqualFold(e.catalog.Criteria().Extension, ext) {
		ext = ""
	}
	e.catalog.SetExtensionFilter(ext)
}

// Refresh refetches the catalog immediately.
func (e *Engine) Refresh(ctx context.Context) error { return e.catalog.Refresh(ctx) }

// SelectFile sets the pending upload. nil clears it.
func (e *Engine) SelectFile(h services.FileHandle) { e.uploads.Select(h) }

// SubmitUpload uploads the pending selection.
func (e *Engine) SubmitUpload(ctx context.Context) error { return e.uploads.Submit(ctx) }

// OpenPreview opens a file for inline preview.
func (e *Engine) OpenPreview(ctx context.Context, id models.FileID) (preview.Rendering, bool) {
	payload, ok := e.previews.Open(ctx, id)
	if !ok {
		return preview.Rendering{}, false
	}
	return preview.Render(payload), true
}

// ClosePreview discards the open preview.
func (e *Engine) ClosePreview() { e.previews.Close() }

// DownloadPreview saves the previewed file through the host's Saver.
func (e *Engine) DownloadPreview(ctx context.Context) error { return e.previews.Download(ctx) }

// DeletePreview deletes the previewed file after confirmation.
func (e *Engine) DeletePreview(ctx context.Context) (bool, error) { return e.previews.Delete(ctx) }

// ToggleProfileMenu opens or closes the profile menu.
func (e *Engine) ToggleProfileMenu(ctx context.Context) error { return e.profile.Toggle(ctx) }

// Logout ends the session and resets the dashboard.
func (e *Engine) Logout() error {
	e.previews.Close()
	e.uploads.Select(nil)
	e.notices.Clear()
	return e.profile.Logout()
}

// Close stops the debounce and status timers and closes the event bus.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.catalog.Close()
		e.notices.Close()
		e.eventBus.Close()
	})
}

var errNoSaver = errors.New("no download destination configured")

type denyAll struct{}

func (denyAll) Confirm(string) bool { return false }

type noSaver struct{}

func (noSaver) Save(context.Context, string, []byte) error { return errNoSaver }

type stayPut struct{}

func (stayPut) NavigateToEntry() {}
