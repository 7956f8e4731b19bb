package audit

import (
	"context"
	"fmt"
)

// Backend names for Options.Backend.
const (
	BackendMemory     = "memory"
	BackendPostgreSQL = "postgresql"
)

// Options selects and configures the audit backend.
type Options struct {
	Enabled       bool
	Backend       string
	DSN           string
	RetentionDays int
}

// New creates a Recorder from options. Disabled auditing yields a
// NoopRecorder. The caller must Close the recorder during shutdown.
func New(ctx context.Context, opts Options) (Recorder, error) {
	if !opts.Enabled {
		return NoopRecorder{}, nil
	}

	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryRecorder(), nil
	case BackendPostgreSQL:
		if opts.DSN == "" {
			return nil, fmt.Errorf("audit backend %q requires a DSN", opts.Backend)
		}
		return NewPostgresRecorder(ctx, opts.DSN, opts.RetentionDays)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", opts.Backend)
	}
}
