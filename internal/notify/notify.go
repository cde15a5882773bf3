// Package notify owns the transient status line of the dashboard and
// optionally mirrors it to desktop notifications.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/models"
)

// Sink receives every status message posted to a Center.
type Sink interface {
	Deliver(msg models.StatusMessage)
}

type sendFunc func(title, message string) error

// Notifier mirrors status messages to desktop notifications via beeep.
type Notifier struct {
	logger *logging.Logger
	title  string

	mu      sync.RWMutex
	enabled bool
	notify  sendFunc
	alert   sendFunc
}

// NewNotifier creates a desktop notifier.
func NewNotifier(enabled bool, logger *logging.Logger) *Notifier {
	return &Notifier{
		logger:  logging.OrDiscard(logger),
		title:   "filedash",
		enabled: enabled,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Deliver implements Sink. Errors use the more prominent alert style.
func (n *Notifier) Deliver(msg models.StatusMessage) {
	n.mu.RLock()
	enabled, notify, alert := n.enabled, n.notify, n.alert
	n.mu.RUnlock()

	if !enabled {
		return
	}

	text := truncate(msg.Text, 200)
	var err error
	if msg.Kind == models.StatusError {
		// Fall back to a regular notification where alerts are unsupported
		if err = alert(n.title, text); err != nil {
			err = notify(n.title, text)
		}
	} else {
		err = notify(n.title, text)
	}
	if err != nil {
		n.logger.Warn().Err(err).Str("kind", string(msg.Kind)).Msg("Failed to send desktop notification")
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
