package viewer

import "traindocs/internal/core"

// FileView is one file's render-ready row: metadata plus its keyed state
// and, when failed, the user-facing message.
type FileView struct {
	core.FileItem
	State FileState `json:"state"`
	Error string    `json:"error,omitempty"`
}

// State is the full render-ready snapshot of a viewer session. Empty is
// the defined "no files attached" state the UI shows instead of indexing
// into an empty list.
type State struct {
	ID            string         `json:"id"`
	Scope         core.Scope     `json:"scope"`
	Files         []FileView     `json:"files"`
	ActiveIndex   int            `json:"active_index"`
	Empty         bool           `json:"empty"`
	PendingDelete *core.FileItem `json:"pending_delete,omitempty"`
}

// Snapshot captures the current session state for rendering.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := make([]FileView, len(c.files))
	for i, f := range c.files {
		state, ok := c.states[f.ID]
		if !ok {
			state = StateIdle
		}
		files[i] = FileView{
			FileItem: f,
			State:    state,
			Error:    c.failures[f.ID],
		}
	}

	var pending *core.FileItem
	if c.pendingDelete != nil {
		p := *c.pendingDelete
		pending = &p
	}

	return State{
		ID:            c.id,
		Scope:         c.scope,
		Files:         files,
		ActiveIndex:   c.activeIndex,
		Empty:         len(c.files) == 0,
		PendingDelete: pending,
	}
}
