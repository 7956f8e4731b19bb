// Package viewer holds the per-dialog preview state machine: which file is
// active, per-file load/download state, and the delete confirmation flow.
package viewer

import (
	"context"
	"errors"
	"sync"

	"traindocs/internal/core"
	"traindocs/internal/docs"
	"traindocs/internal/transcode"
)

// FileState is the keyed per-file state. A single enum per file replaces
// separate loading/downloading flags so the combinations stay consistent.
type FileState string

const (
	StateIdle        FileState = "idle"
	StateLoading     FileState = "loading"
	StateLoaded      FileState = "loaded"
	StateFailed      FileState = "failed"
	StateDownloading FileState = "downloading"
)

// Controller tracks one open preview dialog. All methods are safe for
// concurrent use; a fetch completing after Close simply updates state
// nobody renders anymore.
type Controller struct {
	id      string
	scope   core.Scope
	service *docs.Service

	mu            sync.Mutex
	files         []core.FileItem
	activeIndex   int
	states        map[string]FileState
	contents      map[string]*core.FileContent
	failures      map[string]string
	pendingDelete *core.FileItem
}

// NewController creates a controller for the given scope and file list.
func NewController(id string, scope core.Scope, service *docs.Service, files []core.FileItem) *Controller {
	return &Controller{
		id:       id,
		scope:    scope,
		service:  service,
		files:    append([]core.FileItem(nil), files...),
		states:   make(map[string]FileState),
		contents: make(map[string]*core.FileContent),
		failures: make(map[string]string),
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Scope returns the document scope the viewer is bound to.
func (c *Controller) Scope() core.Scope { return c.scope }

// SetActive switches the active tab. A pure transition: no fetch happens
// until the file's content is requested.
func (c *Controller) SetActive(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.files) {
		return core.NewInvalidRequestError("active index out of range", nil)
	}
	c.activeIndex = index
	return nil
}

// Content returns the content for a file, loading it through the retrieval
// service when the controller has none yet. A previous failure is not
// retried implicitly; calling Content again is the explicit reload action.
func (c *Controller) Content(ctx context.Context, fileID string) (*core.FileContent, error) {
	c.mu.Lock()
	if _, ok := c.fileByID(fileID); !ok {
		c.mu.Unlock()
		return nil, core.NewNotFoundError("File not found on the server")
	}
	if content, ok := c.contents[fileID]; ok {
		c.mu.Unlock()
		return content, nil
	}
	c.states[fileID] = StateLoading
	delete(c.failures, fileID)
	c.mu.Unlock()

	content, err := c.service.GetContent(ctx, c.scope, fileID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.states[fileID] = StateFailed
		c.failures[fileID] = userMessage(err)
		return nil, err
	}
	c.states[fileID] = StateLoaded
	c.contents[fileID] = content
	return content, nil
}

// Download returns the decoded bytes for a file, reusing already-loaded
// content to avoid a second fetch. The downloading state is independent of
// the preview flow and resolves back to the file's settled state.
func (c *Controller) Download(ctx context.Context, fileID string) (*transcode.Blob, error) {
	c.mu.Lock()
	if _, ok := c.fileByID(fileID); !ok {
		c.mu.Unlock()
		return nil, core.NewNotFoundError("File not found on the server")
	}
	content := c.contents[fileID]
	settled := c.states[fileID]
	c.states[fileID] = StateDownloading
	c.mu.Unlock()

	var err error
	if content == nil {
		content, err = c.service.GetContent(ctx, c.scope, fileID)
	}

	var blob *transcode.Blob
	if err == nil {
		blob, err = transcode.DecodeToBlob(content.Content, content.ContentType)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.states[fileID] = StateFailed
		c.failures[fileID] = userMessage(err)
		return nil, err
	}
	c.contents[fileID] = content
	if settled == StateLoaded || settled == "" || settled == StateIdle {
		c.states[fileID] = StateLoaded
	} else {
		c.states[fileID] = settled
	}
	return blob, nil
}

// RequestDelete starts the confirmation flow for a file.
func (c *Controller) RequestDelete(fileID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, ok := c.fileByID(fileID)
	if !ok {
		return core.NewNotFoundError("File not found on the server")
	}
	pending := *file
	c.pendingDelete = &pending
	return nil
}

// CancelDelete abandons the confirmation flow.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete deletes the pending file on the platform, removes it from
// the list, invalidates its cache entry, and re-clamps the active index.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.pendingDelete == nil {
		c.mu.Unlock()
		return core.NewInvalidRequestError("no delete pending", nil)
	}
	fileID := c.pendingDelete.ID
	c.mu.Unlock()

	if err := c.service.DeleteFile(ctx, c.scope, fileID); err != nil {
		return err
	}
	if err := c.service.Invalidate(ctx, c.scope, fileID); err != nil {
		// The entry expires on its own; deletion already succeeded.
		err = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
	c.removeFile(fileID)
	return nil
}

// fileByID must be called with the lock held.
func (c *Controller) fileByID(fileID string) (*core.FileItem, bool) {
	for i := range c.files {
		if c.files[i].ID == fileID {
			return &c.files[i], true
		}
	}
	return nil, false
}

// removeFile must be called with the lock held.
func (c *Controller) removeFile(fileID string) {
	removed := -1
	for i := range c.files {
		if c.files[i].ID == fileID {
			removed = i
			break
		}
	}
	if removed < 0 {
		return
	}

	c.files = append(c.files[:removed], c.files[removed+1:]...)
	delete(c.states, fileID)
	delete(c.contents, fileID)
	delete(c.failures, fileID)

	switch {
	case len(c.files) == 0:
		c.activeIndex = 0
	case removed < c.activeIndex:
		// Keep pointing at the same logical file.
		c.activeIndex--
	case c.activeIndex >= len(c.files):
		c.activeIndex = len(c.files) - 1
	}
}

func userMessage(err error) string {
	var docErr *core.DocError
	if errors.As(err, &docErr) {
		return docErr.Message
	}
	return "an unexpected error occurred"
}
