// Package core provides the domain types and error taxonomy for the
// document gateway.
package core

import (
	"strings"
	"time"
)

// Scope is the tuple of path-level identifiers that uniquely addresses a
// document's files on the platform API: training center, optional attendee,
// and document.
type Scope struct {
	CenterID   string `json:"center_id"`
	AttendeeID string `json:"attendee_id,omitempty"`
	DocumentID string `json:"document_id"`
}

// IDs returns the non-empty scope components in path order.
func (s Scope) IDs() []string {
	ids := []string{s.CenterID}
	if s.AttendeeID != "" {
		ids = append(ids, s.AttendeeID)
	}
	return append(ids, s.DocumentID)
}

// FileDescriptor is the raw, endpoint-specific representation of a file's
// metadata. Fields are optional and their wire shapes are inconsistent
// across platform endpoints: names may arrive as a string or a fragment
// list, header values may be wrapped in single-element arrays, and some
// endpoints embed the content as base64.
type FileDescriptor struct {
	ID     string
	FileID string
	// FileName holds the plain-string wire form; FileNames holds the
	// fragment-list form. Endpoints emit one or the other, never both.
	FileName    string
	FileNames   []string
	Headers     map[string][]string
	Body        string
	ContentType string
	Size        int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Header returns the first value for the given header key using a
// case-insensitive lookup, or "" if absent.
func (d *FileDescriptor) Header(key string) string {
	for k, vals := range d.Headers {
		if len(vals) > 0 && strings.EqualFold(k, key) {
			return vals[0]
		}
	}
	return ""
}

// FileItem is the normalized file metadata surfaced to the UI layer.
// ID and ContentType are never empty after resolution.
type FileItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileContent is the render-ready content pair returned to the UI.
// Content is base64-encoded. DataURI is populated for previewable types
// (images, PDF) so the front end can render it directly.
type FileContent struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	Previewable bool   `json:"previewable"`
	DataURI     string `json:"data_uri,omitempty"`
}
