// Package audit records document access events: who fetched, uploaded, or
// deleted which file, when, and with what outcome. Recording is
// best-effort and never fails the user operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies the audited operation.
type Action string

const (
	ActionList     Action = "list"
	ActionFetch    Action = "fetch"
	ActionUpload   Action = "upload"
	ActionDelete   Action = "delete"
	ActionDownload Action = "download"
)

// Event is a single document access record.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Action    Action        `json:"action"`
	ScopeKey  string        `json:"scope_key"`
	FileID    string        `json:"file_id,omitempty"`
	Outcome   string        `json:"outcome"` // "ok" or the error kind
	Duration  time.Duration `json:"duration_ns"`
}

// Recorder accepts access events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// Record stores one event. Errors are the store's to report (log);
	// callers do not check them.
	Record(ctx context.Context, event Event)

	// Close releases any resources held by the recorder.
	Close() error
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(action Action, scopeKey, fileID, outcome string, duration time.Duration) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		ScopeKey:  scopeKey,
		FileID:    fileID,
		Outcome:   outcome,
		Duration:  duration,
	}
}

// NoopRecorder discards all events. Used when auditing is disabled.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Event) {}
func (NoopRecorder) Close() error                  { return nil }
