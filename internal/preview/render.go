// Package preview decides how an opened file is shown inline.
package preview

import (
	"encoding/base64"
	"strings"

	"github.com/filedash/filedash/internal/constants"
	"github.com/filedash/filedash/internal/models"
)

// Kind is the inline presentation chosen for a payload.
type Kind string

const (
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindUnsupported Kind = "unsupported"
	KindUnavailable Kind = "unavailable"
)

// Rendering is a presentation-ready view of a PreviewPayload.
type Rendering struct {
	Kind     Kind
	Filename string

	Text    string // KindText content, or the notice for unsupported/unavailable
	DataURI string // KindImage and KindPDF
}

// Render applies the content-type policy. Types are checked in order:
// text/*, image/*, exactly application/pdf, then everything else.
func Render(p models.PreviewPayload) Rendering {
	r := Rendering{Filename: p.Filename}

	if p.Unavailable {
		r.Kind = KindUnavailable
		r.Text = string(p.Content)
		if r.Text == "" {
			r.Text = constants.MsgPreviewMissing
		}
		return r
	}

	ct := mediaType(p.ContentType)
	switch {
	case strings.HasPrefix(ct, "text/"):
		r.Kind = KindText
		r.Text = string(p.Content)
	case strings.HasPrefix(ct, "image/"):
		r.Kind = KindImage
		r.DataURI = DataURI(p.ContentType, p.Content)
	case ct == "application/pdf":
		r.Kind = KindPDF
		r.DataURI = DataURI(p.ContentType, p.Content)
	default:
		r.Kind = KindUnsupported
		r.Text = constants.MsgPreviewNoSupport
	}
	return r
}

// DataURI encodes content as a base64 data URI.
func DataURI(contentType string, content []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// mediaType strips parameters such as "; charset=utf-8". The prefix match
// stays case-sensitive on the type itself, as servers send it lowercase.
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
