// Package services provides the frontend-agnostic dashboard actions: upload,
// preview, and the profile menu. Each service talks to the API through a
// narrow interface and reports user-facing outcomes through Notices.
package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/filedash/filedash/internal/models"
)

var (
	// ErrNoSelection is returned by Submit when no file is selected.
	ErrNoSelection = errors.New("no file selected")

	// ErrNoPreview is returned by preview actions when nothing real is open.
	ErrNoPreview = errors.New("no preview open")
)

// Notices receives user-facing status messages. notify.Center implements it.
type Notices interface {
	Success(text string)
	Error(text string)
}

// Refresher re-fetches the file catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Uploader sends one file to the server.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) error
}

// FileAPI is the subset of the API client the preview session needs.
type FileAPI interface {
	RawFile(ctx context.Context, id models.FileID) (*models.RawFile, error)
	Download(ctx context.Context, id models.FileID) ([]byte, error)
	DeleteFile(ctx context.Context, id models.FileID) error
}

// ProfileAPI is the subset of the API client the profile menu needs.
type ProfileAPI interface {
	Me(ctx context.Context) (*models.SessionUser, error)
	Profile(ctx context.Context) (*models.ProfileDetails, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Saver writes downloaded content somewhere the user can reach it.
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) error
}

// Navigator moves the host back to its entry point after logout.
type Navigator interface {
	NavigateToEntry()
}

// SessionEnder tears down the stored credential.
type SessionEnder interface {
	Teardown() error
}

// FileHandle is a file chosen for upload.
type FileHandle interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a FileHandle backed by a path on disk.
type LocalFile string

// Name returns the base name sent as the upload filename.
func (f LocalFile) Name() string { return filepath.Base(string(f)) }

// Open opens the file for reading.
func (f LocalFile) Open() (io.ReadCloser, error) { return os.Open(string(f)) }
