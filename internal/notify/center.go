package notify

import (
	"sync"
	"time"

	"github.com/filedash/filedash/internal/constants"
	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/schedule"
)

// Center holds at most one status message and clears it after a timeout.
// Posting a new message replaces the current one and restarts the timeout.
type Center struct {
	timeout  time.Duration
	eventBus *events.EventBus
	logger   *logging.Logger
	expiry   schedule.Timer
	now      func() time.Time

	mu      sync.RWMutex
	current *models.StatusMessage
	sinks   []Sink
}

// NewCenter creates a notification center. A non-positive timeout uses the
// default of three seconds.
func NewCenter(timeout time.Duration, eventBus *events.EventBus, logger *logging.Logger) *Center {
	if timeout <= 0 {
		timeout = constants.StatusMessageTimeout
	}
	return &Center{
		timeout:  timeout,
		eventBus: eventBus,
		logger:   logging.OrDiscard(logger),
		now:      time.Now,
	}
}

// AddSink registers a sink that receives every posted message.
func (c *Center) AddSink(s Sink) {
	c.mu.Lock()
	c.sinks = append(c.sinks, s)
	c.mu.Unlock()
}

// Post shows text with the given kind, replacing any current message.
func (c *Center) Post(text string, kind models.StatusKind) {
	msg := models.StatusMessage{Text: text, Kind: kind, PostedAt: c.now()}

	posted := &msg

	c.mu.Lock()
	c.current = posted
	sinks := append([]Sink(nil), c.sinks...)
	c.expiry.Reset(c.timeout, func() { c.expire(posted) })
	c.mu.Unlock()

	c.logger.Debug().Str("kind", string(kind)).Str("text", text).Msg("Status posted")
	c.eventBus.Publish(events.NewStatusEvent(msg))

	for _, s := range sinks {
		s.Deliver(msg)
	}
}

// Success posts a success message.
func (c *Center) Success(text string) {
	c.Post(text, models.StatusSuccess)
}

// Error posts an error message.
func (c *Center) Error(text string) {
	c.Post(text, models.StatusError)
}

// Current returns the visible message, if any.
func (c *Center) Current() (models.StatusMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return models.StatusMessage{}, false
	}
	return *c.current, true
}

// Clear dismisses the current message immediately.
func (c *Center) Clear() {
	c.mu.Lock()
	c.expiry.Stop()
	had := c.current != nil
	c.current = nil
	c.mu.Unlock()

	if had {
		c.eventBus.Publish(events.NewStatusClearedEvent())
	}
}

// Close cancels the pending expiry. The current message stays readable.
func (c *Center) Close() {
	c.expiry.Close()
}

// expire clears msg if it is still the visible message. A newer message
// posted while this expiry was firing is left alone.
func (c *Center) expire(msg *models.StatusMessage) {
	c.mu.Lock()
	mine := c.current == msg
	if mine {
		c.current = nil
	}
	c.mu.Unlock()

	if mine {
		c.eventBus.Publish(events.NewStatusClearedEvent())
	}
}
