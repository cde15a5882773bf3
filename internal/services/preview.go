package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/filedash/filedash/internal/constants"
	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/preview"
)

// PreviewSession owns the single open preview and the download and delete
// actions scoped to it.
type PreviewSession struct {
	files     FileAPI
	refresher Refresher
	notices   Notices
	confirmer Confirmer
	saver     Saver
	eventBus  *events.EventBus
	logger    *logging.Logger

	mu      sync.Mutex
	current *models.PreviewPayload
	gen     uint64 // Bumped by every Open and Close
}

// NewPreviewSession creates a session with nothing open.
func NewPreviewSession(files FileAPI, refresher Refresher, notices Notices, confirmer Confirmer, saver Saver, eventBus *events.EventBus, logger *logging.Logger) *PreviewSession {
	return &PreviewSession{
		files:     files,
		refresher: refresher,
		notices:   notices,
		confirmer: confirmer,
		saver:     saver,
		eventBus:  eventBus,
		logger:    logging.OrDiscard(logger),
	}
}

// Open fetches and decodes a file for preview. Any failure installs the
// "not available" placeholder instead of an error. It returns the installed
// payload, or false when a later Open or Close superseded this one.
func (p *PreviewSession) Open(ctx context.Context, id models.FileID) (models.PreviewPayload, bool) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	payload, err := p.fetch(ctx, id)
	if err != nil {
		p.logger.Warn().Err(err).Str("file_id", id.String()).Msg("Preview not available")
		payload = unavailablePayload(id)
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return models.PreviewPayload{}, false
	}
	p.current = &payload
	p.mu.Unlock()

	snapshot := payload
	p.eventBus.Publish(events.NewPreviewEvent(&snapshot))
	return payload, true
}

func (p *PreviewSession) fetch(ctx context.Context, id models.FileID) (models.PreviewPayload, error) {
	raw, err := p.files.RawFile(ctx, id)
	if err != nil {
		return models.PreviewPayload{}, err
	}
	content, err := base64.StdEncoding.DecodeString(raw.Base64)
	if err != nil {
		return models.PreviewPayload{}, fmt.Errorf("failed to decode preview content: %w", err)
	}
	return models.PreviewPayload{
		FileID:      id,
		Filename:    raw.Filename,
		ContentType: raw.ContentType,
		Content:     content,
	}, nil
}

func unavailablePayload(id models.FileID) models.PreviewPayload {
	return models.PreviewPayload{
		FileID:      id,
		Filename:    constants.MsgPreviewErrorName,
		ContentType: "text/plain",
		Content:     []byte(constants.MsgPreviewMissing),
		Unavailable: true,
	}
}

// Close discards the open preview and any Open still in flight.
func (p *PreviewSession) Close() {
	p.mu.Lock()
	p.gen++
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if had {
		p.eventBus.Publish(events.NewPreviewEvent(nil))
	}
}

// Current returns a copy of the open payload.
func (p *PreviewSession) Current() (models.PreviewPayload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return models.PreviewPayload{}, false
	}
	return *p.current, true
}

// Render returns the presentation of the open payload.
func (p *PreviewSession) Render() (preview.Rendering, bool) {
	payload, ok := p.Current()
	if !ok {
		return preview.Rendering{}, false
	}
	return preview.Render(payload), true
}

// actionable returns the open payload and its generation, or ErrNoPreview
// for nothing open or the placeholder.
func (p *PreviewSession) actionable() (models.PreviewPayload, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.Unavailable {
		return models.PreviewPayload{}, 0, ErrNoPreview
	}
	return *p.current, p.gen, nil
}

// Download fetches the open file and hands it to the Saver under its
// original filename.
func (p *PreviewSession) Download(ctx context.Context) error {
	payload, _, err := p.actionable()
	if err != nil {
		return err
	}

	data, err := p.files.Download(ctx, payload.FileID)
	if err == nil {
		err = p.saver.Save(ctx, payload.Filename, data)
	}
	if err != nil {
		p.logger.Error().Err(err).Str("file", payload.Filename).Msg("Download failed")
		p.notices.Error(constants.MsgDownloadFailed)
		return err
	}

	p.logger.Info().Str("file", payload.Filename).Int("bytes", len(data)).Msg("Downloaded file")
	return nil
}

// Delete asks for confirmation, then deletes the open file. It reports
// whether the file was deleted; declining is not an error. On success the
// preview closes and the catalog refreshes. On failure the preview stays.
func (p *PreviewSession) Delete(ctx context.Context) (bool, error) {
	payload, gen, err := p.actionable()
	if err != nil {
		return false, err
	}

	if !p.confirmer.Confirm(`Delete file "` + payload.Filename + `"?`) {
		return false, nil
	}

	if err := p.files.DeleteFile(ctx, payload.FileID); err != nil {
		p.logger.Error().Err(err).Str("file", payload.Filename).Msg("Delete failed")
		p.notices.Error(constants.MsgDeleteFailed)
		return false, err
	}
	p.logger.Info().Str("file", payload.Filename).Msg("Deleted file")

	// Leave a preview the user opened meanwhile alone
	p.mu.Lock()
	closed := p.gen == gen
	if closed {
		p.gen++
		p.current = nil
	}
	p.mu.Unlock()
	if closed {
		p.eventBus.Publish(events.NewPreviewEvent(nil))
	}

	if err := p.refresher.Refresh(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("Catalog refresh after delete failed")
	}
	return true, nil
}
