package events

import (
	"github.com/filedash/filedash/internal/models"
)

// CatalogEvent reports a catalog fetch transition.
type CatalogEvent struct {
	BaseEvent
	Seq      uint64
	Criteria models.SearchCriteria
	Files    []models.FileRecord // Only set on EventCatalogUpdated
	Err      error               // Only set on EventCatalogError
}

// NewCatalogLoadingEvent creates an event for an issued fetch.
func NewCatalogLoadingEvent(seq uint64, criteria models.SearchCriteria) *CatalogEvent {
	return &CatalogEvent{BaseEvent: NewBase(EventCatalogLoading), Seq: seq, Criteria: criteria}
}

// NewCatalogUpdatedEvent creates an event for a committed snapshot.
func NewCatalogUpdatedEvent(seq uint64, criteria models.SearchCriteria, files []models.FileRecord) *CatalogEvent {
	return &CatalogEvent{BaseEvent: NewBase(EventCatalogUpdated), Seq: seq, Criteria: criteria, Files: files}
}

// NewCatalogErrorEvent creates an event for a failed newest fetch.
func NewCatalogErrorEvent(seq uint64, criteria models.SearchCriteria, err error) *CatalogEvent {
	return &CatalogEvent{BaseEvent: NewBase(EventCatalogError), Seq: seq, Criteria: criteria, Err: err}
}

// ExtensionsEvent carries the loaded extension list.
type ExtensionsEvent struct {
	BaseEvent
	Extensions []string
}

// NewExtensionsLoadedEvent creates an extensions event.
func NewExtensionsLoadedEvent(exts []string) *ExtensionsEvent {
	return &ExtensionsEvent{BaseEvent: NewBase(EventExtensionsLoaded), Extensions: exts}
}

// StatusEvent carries the current status line. Cleared is true when the
// message expired or was dismissed.
type StatusEvent struct {
	BaseEvent
	Message models.StatusMessage
	Cleared bool
}

// NewStatusEvent creates an event for a newly posted message.
func NewStatusEvent(msg models.StatusMessage) *StatusEvent {
	return &StatusEvent{BaseEvent: NewBase(EventStatus), Message: msg}
}

// NewStatusClearedEvent creates an event for a cleared status line.
func NewStatusClearedEvent() *StatusEvent {
	return &StatusEvent{BaseEvent: NewBase(EventStatus), Cleared: true}
}

// SelectionEvent reports the pending upload selection. Name is empty when
// the selection was cleared.
type SelectionEvent struct {
	BaseEvent
	Name string
}

// NewSelectionEvent creates an upload selection event.
func NewSelectionEvent(name string) *SelectionEvent {
	return &SelectionEvent{BaseEvent: NewBase(EventUploadSelection), Name: name}
}

// PreviewEvent reports the open preview, or nil when it was closed.
type PreviewEvent struct {
	BaseEvent
	Preview *models.PreviewPayload
}

// NewPreviewEvent creates a preview change event.
func NewPreviewEvent(p *models.PreviewPayload) *PreviewEvent {
	return &PreviewEvent{BaseEvent: NewBase(EventPreviewChanged), Preview: p}
}

// ProfileEvent reports the profile menu state.
type ProfileEvent struct {
	BaseEvent
	Open    bool
	Profile *models.ProfileDetails
}

// NewProfileEvent creates a profile menu event.
func NewProfileEvent(open bool, p *models.ProfileDetails) *ProfileEvent {
	return &ProfileEvent{BaseEvent: NewBase(EventProfileChanged), Open: open, Profile: p}
}

// SessionEvent reports the signed-in user, or SignedOut after logout.
type SessionEvent struct {
	BaseEvent
	User      *models.SessionUser
	SignedOut bool
}

// NewSessionUserEvent creates an event for a loaded session user.
func NewSessionUserEvent(u *models.SessionUser) *SessionEvent {
	return &SessionEvent{BaseEvent: NewBase(EventSessionChanged), User: u}
}

// NewSignedOutEvent creates an event for a finished logout.
func NewSignedOutEvent() *SessionEvent {
	return &SessionEvent{BaseEvent: NewBase(EventSessionChanged), SignedOut: true}
}
