package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedash/filedash/internal/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 3, "..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}

type sent struct {
	kind  string
	title string
	text  string
}

type fakeDesktop struct {
	mu       sync.Mutex
	sent     []sent
	alertErr error
}

func (f *fakeDesktop) record(kind string) sendFunc {
	return func(title, message string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if kind == "alert" && f.alertErr != nil {
			return f.alertErr
		}
		f.sent = append(f.sent, sent{kind: kind, title: title, text: message})
		return nil
	}
}

func newFakeNotifier(enabled bool, fake *fakeDesktop) *Notifier {
	n := NewNotifier(enabled, nil)
	n.notify = fake.record("notify")
	n.alert = fake.record("alert")
	return n
}

func TestNotifierDeliver(t *testing.T) {
	fake := &fakeDesktop{}
	n := newFakeNotifier(true, fake)

	n.Deliver(models.StatusMessage{Text: "File uploaded successfully", Kind: models.StatusSuccess})
	n.Deliver(models.StatusMessage{Text: "Upload failed", Kind: models.StatusError})

	require.Len(t, fake.sent, 2)
	assert.Equal(t, sent{"notify", "filedash", "File uploaded successfully"}, fake.sent[0])
	assert.Equal(t, sent{"alert", "filedash", "Upload failed"}, fake.sent[1])
}

func TestNotifierAlertFallsBackToNotify(t *testing.T) {
	fake := &fakeDesktop{alertErr: errors.New("unsupported")}
	n := newFakeNotifier(true, fake)

	n.Deliver(models.StatusMessage{Text: "Failed to delete file.", Kind: models.StatusError})

	require.Len(t, fake.sent, 1)
	assert.Equal(t, "notify", fake.sent[0].kind)
}

func TestNotifierDisabled(t *testing.T) {
	fake := &fakeDesktop{}
	n := newFakeNotifier(false, fake)
	assert.False(t, n.IsEnabled())

	n.Deliver(models.StatusMessage{Text: "x", Kind: models.StatusError})
	assert.Empty(t, fake.sent)

	n.SetEnabled(true)
	n.Deliver(models.StatusMessage{Text: "x", Kind: models.StatusSuccess})
	assert.Len(t, fake.sent, 1)
}
