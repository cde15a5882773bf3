package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/filedash/filedash/internal/models"
)

type recordedNotices struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordedNotices) Success(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, text)
}

func (n *recordedNotices) Error(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, text)
}

func (n *recordedNotices) snapshot() (successes, errs []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...), append([]string(nil), n.errors...)
}

type countingRefresher struct {
	mu    sync.Mutex
	count int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return r.err
}

func (r *countingRefresher) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type memHandle struct {
	name    string
	content string
	openErr error
}

func (h memHandle) Name() string { return h.name }

func (h memHandle) Open() (io.ReadCloser, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	return io.NopCloser(bytes.NewBufferString(h.content)), nil
}

type fakeFiles struct {
	mu         sync.Mutex
	raw        map[models.FileID]*models.RawFile
	rawErr     error
	rawGate    chan struct{}
	blob       []byte
	blobErr    error
	deleteErr  error
	deleted    []models.FileID
	downloaded []models.FileID
}

func (f *fakeFiles) RawFile(ctx context.Context, id models.FileID) (*models.RawFile, error) {
	if f.rawGate != nil {
		select {
		case <-f.rawGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rawErr != nil {
		return nil, f.rawErr
	}
	raw, ok := f.raw[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return raw, nil
}

func (f *fakeFiles) Download(_ context.Context, id models.FileID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloaded = append(f.downloaded, id)
	return f.blob, f.blobErr
}

func (f *fakeFiles) DeleteFile(_ context.Context, id models.FileID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fixedConfirmer struct {
	answer  bool
	prompts []string
}

func (c *fixedConfirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type memSaver struct {
	saved map[string][]byte
	err   error
}

func (s *memSaver) Save(_ context.Context, filename string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[filename] = data
	return nil
}
