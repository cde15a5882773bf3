package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/filedash/filedash/internal/api"
	"github.com/filedash/filedash/internal/constants"
	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
)

// UploadCoordinator holds the pending upload selection and submits it.
type UploadCoordinator struct {
	uploader  Uploader
	refresher Refresher
	notices   Notices
	eventBus  *events.EventBus
	logger    *logging.Logger

	// NotifyEmptySelection posts "Choose a file first" when Submit runs
	// without a selection.
	NotifyEmptySelection bool

	mu        sync.Mutex
	selection FileHandle
	selGen    uint64 // Bumped on every Select
}

// NewUploadCoordinator creates a coordinator with no selection.
func NewUploadCoordinator(uploader Uploader, refresher Refresher, notices Notices, eventBus *events.EventBus, logger *logging.Logger) *UploadCoordinator {
	return &UploadCoordinator{
		uploader:  uploader,
		refresher: refresher,
		notices:   notices,
		eventBus:  eventBus,
		logger:    logging.OrDiscard(logger),
	}
}

// Select replaces the pending selection. nil clears it.
func (u *UploadCoordinator) Select(handle FileHandle) {
	u.mu.Lock()
	u.selection = handle
	u.selGen++
	u.mu.Unlock()

	u.eventBus.Publish(events.NewSelectionEvent(handleName(handle)))
}

// Selection returns the name of the pending file, or "".
func (u *UploadCoordinator) Selection() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return handleName(u.selection)
}

// Submit uploads the pending selection. On success it posts a success
// notice and refreshes the catalog; on failure it posts the server's
// message or "Upload failed". The submitted selection is cleared either
// way unless the user picked another file in the meantime.
func (u *UploadCoordinator) Submit(ctx context.Context) error {
	u.mu.Lock()
	handle := u.selection
	gen := u.selGen
	u.mu.Unlock()

	if handle == nil {
		if u.NotifyEmptySelection {
			u.notices.Error(constants.MsgChooseFileFirst)
		}
		return ErrNoSelection
	}

	name := handle.Name()
	u.logger.Info().Str("file", name).Msg("Uploading file")

	err := u.upload(ctx, handle)
	u.clearIfUnchanged(gen)

	if err != nil {
		u.logger.Error().Err(err).Str("file", name).Msg("Upload failed")
		u.notices.Error(api.ExtractMessage(err, constants.MsgUploadFailed))
		return err
	}

	u.notices.Success(constants.MsgUploadSucceeded)
	if err := u.refresher.Refresh(ctx); err != nil {
		u.logger.Warn().Err(err).Msg("Catalog refresh after upload failed")
	}
	return nil
}

func (u *UploadCoordinator) upload(ctx context.Context, handle FileHandle) error {
	rc, err := handle.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", handle.Name(), err)
	}
	defer rc.Close()

	return u.uploader.Upload(ctx, handle.Name(), rc)
}

func (u *UploadCoordinator) clearIfUnchanged(gen uint64) {
	u.mu.Lock()
	if u.selGen != gen {
		u.mu.Unlock()
		return
	}
	u.selection = nil
	u.selGen++
	u.mu.Unlock()

	u.eventBus.Publish(events.NewSelectionEvent(""))
}

func handleName(h FileHandle) string {
	if h == nil {
		return ""
	}
	return h.Name()
}
