package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/models"
)

type collectingSink struct {
	mu   sync.Mutex
	msgs []models.StatusMessage
}

func (s *collectingSink) Deliver(m models.StatusMessage) {
	s.mu.Lock()
	s.msgs = append(s.msgs, m)
	s.mu.Unlock()
}

func TestCenterPostAndAutoClear(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventStatus)

	c := NewCenter(40*time.Millisecond, bus, nil)
	defer c.Close()

	c.Success("File uploaded successfully")

	msg, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "File uploaded successfully", msg.Text)
	assert.Equal(t, models.StatusSuccess, msg.Kind)

	posted := (<-ch).(*events.StatusEvent)
	assert.False(t, posted.Cleared)
	assert.Equal(t, msg.Text, posted.Message.Text)

	require.Eventually(t, func() bool {
		_, ok := c.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)

	select {
	case ev := <-ch:
		assert.True(t, ev.(*events.StatusEvent).Cleared)
	case <-time.After(time.Second):
		t.Fatal("expected a cleared event")
	}
}

func TestCenterNewMessageRestartsTimeout(t *testing.T) {
	c := NewCenter(150*time.Millisecond, nil, nil)
	defer c.Close()

	c.Error("Upload failed")
	time.Sleep(90 * time.Millisecond)
	c.Success("File uploaded successfully")

	// The first message's expiry would have fired by now
	time.Sleep(100 * time.Millisecond)
	msg, ok := c.Current()
	require.True(t, ok, "second message must survive the first message's timeout")
	assert.Equal(t, "File uploaded successfully", msg.Text)

	require.Eventually(t, func() bool {
		_, ok := c.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestCenterClear(t *testing.T) {
	c := NewCenter(time.Hour, nil, nil)
	defer c.Close()

	c.Error("Failed to download file.")
	c.Clear()

	_, ok := c.Current()
	assert.False(t, ok)

	// Clearing twice is harmless
	c.Clear()
}

func TestCenterDeliversToSinks(t *testing.T) {
	c := NewCenter(time.Hour, nil, nil)
	defer c.Close()

	sink := &collectingSink{}
	c.AddSink(sink)

	c.Error("Failed to delete file.")
	c.Success("File uploaded successfully")

	require.Len(t, sink.msgs, 2)
	assert.Equal(t, models.StatusError, sink.msgs[0].Kind)
	assert.Equal(t, models.StatusSuccess, sink.msgs[1].Kind)
}

func TestCenterDefaultTimeout(t *testing.T) {
	c := NewCenter(0, nil, nil)
	assert.Equal(t, 3*time.Second, c.timeout)
}
