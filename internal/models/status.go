package models

import "time"

// StatusKind is the severity of a status message.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusMessage is a transient user-visible message.
type StatusMessage struct {
	Text     string
	Kind     StatusKind
	PostedAt time.Time
}
