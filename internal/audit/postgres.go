package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder implements Recorder backed by PostgreSQL.
type PostgresRecorder struct {
	pool          *pgxpool.Pool
	retentionDays int
	stopCleanup   chan struct{}
}

// NewPostgresRecorder creates a PostgreSQL-backed recorder. It creates the
// access_events table if it doesn't exist and starts a background cleanup
// goroutine if retention is configured.
func NewPostgresRecorder(ctx context.Context, dsn string, retentionDays int) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS access_events (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			action TEXT NOT NULL,
			scope_key TEXT NOT NULL,
			file_id TEXT,
			outcome TEXT NOT NULL,
			duration_ns BIGINT DEFAULT 0
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create access_events table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_access_timestamp ON access_events(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_access_scope ON access_events(scope_key)",
		"CREATE INDEX IF NOT EXISTS idx_access_action ON access_events(action)",
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	r := &PostgresRecorder{
		pool:          pool,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go r.cleanupLoop()
	}

	return r, nil
}

// Record inserts the event. Failures are logged, not returned; auditing
// never blocks the user operation.
func (r *PostgresRecorder) Record(ctx context.Context, event Event) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO access_events (id, timestamp, action, scope_key, file_id, outcome, duration_ns)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.Timestamp, string(event.Action), event.ScopeKey, event.FileID, event.Outcome, event.Duration.Nanoseconds())
	if err != nil {
		slog.Warn("failed to write access event", "error", err, "id", event.ID)
	}
}

func (r *PostgresRecorder) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCleanup:
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -r.retentionDays)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			tag, err := r.pool.Exec(ctx, "DELETE FROM access_events WHERE timestamp < $1", cutoff)
			cancel()
			if err != nil {
				slog.Warn("access event cleanup failed", "error", err)
				continue
			}
			if tag.RowsAffected() > 0 {
				slog.Info("cleaned up access events", "deleted", tag.RowsAffected())
			}
		}
	}
}

// Close stops the cleanup loop and closes the pool.
func (r *PostgresRecorder) Close() error {
	close(r.stopCleanup)
	r.pool.Close()
	return nil
}
