package viewer

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/google/uuid"

	"traindocs/internal/core"
	"traindocs/internal/docs"
)

// DefaultSessionTTL expires viewer sessions whose dialog was abandoned
// without an explicit close.
const DefaultSessionTTL = 30 * time.Minute

// Registry owns the live viewer sessions. Sessions are addressed by
// opaque ids and expire automatically after the TTL, so abandoned dialogs
// do not accumulate.
type Registry struct {
	service  *docs.Service
	sessions *ttlworker.Cache[string, *Controller]
}

// NewRegistry creates a session registry over the retrieval service.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewRegistry(service *docs.Service, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		service:  service,
		sessions: ttlworker.NewCache[string, *Controller](ttl),
	}
}

// Open creates a viewer session for the scope and file list, returning
// its controller.
func (r *Registry) Open(scope core.Scope, files []core.FileItem) *Controller {
	c := NewController(uuid.NewString(), scope, r.service, files)
	r.sessions.Set(c.ID(), c)
	return c
}

// Get returns the controller for a session id, or false if the session
// does not exist or has expired.
func (r *Registry) Get(id string) (*Controller, bool) {
	c := r.sessions.Get(id)
	if c == nil {
		return nil, false
	}
	return c, true
}

// Close discards a session. An in-flight fetch for the session finishes
// against the detached controller and is never rendered.
func (r *Registry) Close(id string) {
	r.sessions.Delete(id)
}
