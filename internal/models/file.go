package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FileID is the server's opaque file identifier. The API may send it as a
// JSON number or string; both decode to the same textual form.
type FileID string

// UnmarshalJSON accepts numbers and strings.
func (id *FileID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FileID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("file id must be a number or string: %w", err)
	}
	*id = FileID(n.String())
	return nil
}

func (id FileID) String() string { return string(id) }

// Timestamp keeps the server's timestamp text and, when it is parseable,
// the parsed time. Unparseable values are kept verbatim rather than failing
// the whole response.
type Timestamp struct {
	Raw  string
	Time time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the formats the API is known to emit.
func ParseTimestamp(s string) Timestamp {
	ts := Timestamp{Raw: s}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			break
		}
	}
	return ts
}

// UnmarshalJSON accepts a string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON writes the original text back.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw)
}

// Valid reports whether the timestamp was parsed.
func (t Timestamp) Valid() bool { return !t.Time.IsZero() }

func (t Timestamp) String() string { return t.Raw }

// FileRecord is one entry of the user's file catalog.
type FileRecord struct {
	ID          FileID    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	UploadedAt  Timestamp `json:"uploaded_at"`
}

// HasExtension reports whether the filename ends with "."+ext, compared
// case-insensitively. An empty ext matches every file.
func (f FileRecord) HasExtension(ext string) bool {
	if ext == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Filename), "."+strings.ToLower(ext))
}

// SearchCriteria is what the catalog sends on every list request.
type SearchCriteria struct {
	Query     string // Free-text search, may be empty
	Extension string // Extension filter without dot, empty = none
}

// RawFile is the wire shape of file/{id}/raw/.
type RawFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Base64      string `json:"base64"`
}

// PreviewPayload is the decoded content of an opened file.
type PreviewPayload struct {
	FileID      FileID
	Filename    string
	ContentType string
	Content     []byte

	// Unavailable marks the sentinel installed when the raw fetch failed.
	Unavailable bool
}
