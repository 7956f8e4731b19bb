package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"traindocs/internal/core"
	"traindocs/internal/docs"
	"traindocs/internal/viewer"
)

// Handler holds the HTTP request handlers
type Handler struct {
	service *docs.Service
	viewers *viewer.Registry
}

// NewHandler creates a new Handler instance
func NewHandler(service *docs.Service, viewers *viewer.Registry) *Handler {
	return &Handler{
		service: service,
		viewers: viewers,
	}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "traindocs",
	})
}

// scopeFromPath reads the document scope from the route parameters. The
// attendee segment is present only on the attendee-level routes.
func scopeFromPath(c echo.Context) core.Scope {
	return core.Scope{
		CenterID:   c.Param("centerID"),
		AttendeeID: c.Param("attendeeID"),
		DocumentID: c.Param("documentID"),
	}
}

// ListFiles handles GET .../documents/:documentID/files
func (h *Handler) ListFiles(c echo.Context) error {
	files, err := h.service.ListFiles(c.Request().Context(), scopeFromPath(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"files": files})
}

// GetContent handles GET .../files/:fileID/content
func (h *Handler) GetContent(c echo.Context) error {
	content, err := h.service.GetContent(c.Request().Context(), scopeFromPath(c), c.Param("fileID"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, content)
}

// UploadFile handles POST .../documents/:documentID/files. The payload is
// a multipart form with the file under the "file" field.
func (h *Handler) UploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.handleError(c, core.NewInvalidRequestError("multipart form must carry a 'file' field", err))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return h.handleError(c, core.NewInvalidRequestError("failed to open uploaded file", err))
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return h.handleError(c, core.NewInvalidRequestError("failed to read uploaded file", err))
	}

	item, err := h.service.UploadFile(c.Request().Context(), scopeFromPath(c), fileHeader.Filename, content)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// DeleteFile handles DELETE .../files/:fileID
func (h *Handler) DeleteFile(c echo.Context) error {
	ctx := c.Request().Context()
	scope := scopeFromPath(c)
	fileID := c.Param("fileID")

	if err := h.service.DeleteFile(ctx, scope, fileID); err != nil {
		return h.handleError(c, err)
	}
	// The platform copy is gone; a stale cache entry would just expire, but
	// drop it now so a re-upload under the same id is never masked.
	_ = h.service.Invalidate(ctx, scope, fileID)

	return c.NoContent(http.StatusNoContent)
}

type openViewerRequest struct {
	CenterID   string `json:"center_id"`
	AttendeeID string `json:"attendee_id"`
	DocumentID string `json:"document_id"`
}

// OpenViewer handles POST /viewers. It lists the scope's files and opens
// a preview session over them.
func (h *Handler) OpenViewer(c echo.Context) error {
	var req openViewerRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	if req.CenterID == "" || req.DocumentID == "" {
		return h.handleError(c, core.NewInvalidRequestError("center_id and document_id are required", nil))
	}

	scope := core.Scope{CenterID: req.CenterID, AttendeeID: req.AttendeeID, DocumentID: req.DocumentID}
	files, err := h.service.ListFiles(c.Request().Context(), scope)
	if err != nil {
		return h.handleError(c, err)
	}

	ctrl := h.viewers.Open(scope, files)
	return c.JSON(http.StatusCreated, ctrl.Snapshot())
}

// ViewerState handles GET /viewers/:id
func (h *Handler) ViewerState(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, ctrl.Snapshot())
}

type setActiveRequest struct {
	Index int `json:"index"`
}

// SetActive handles PUT /viewers/:id/active
func (h *Handler) SetActive(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}

	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	if err := ctrl.SetActive(req.Index); err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, ctrl.Snapshot())
}

// ViewerContent handles POST /viewers/:id/files/:fileID/content
func (h *Handler) ViewerContent(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}

	content, err := ctrl.Content(c.Request().Context(), c.Param("fileID"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, content)
}

// ViewerDownload handles POST /viewers/:id/files/:fileID/download and
// streams the decoded bytes as an attachment.
func (h *Handler) ViewerDownload(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}

	fileID := c.Param("fileID")
	blob, err := ctrl.Download(c.Request().Context(), fileID)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileID+`"`)
	return c.Blob(http.StatusOK, blob.ContentType, blob.Data)
}

type deleteRequest struct {
	FileID string `json:"file_id"`
}

// RequestDelete handles POST /viewers/:id/delete
func (h *Handler) RequestDelete(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}

	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	if err := ctrl.RequestDelete(req.FileID); err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, ctrl.Snapshot())
}

// ConfirmDelete handles POST /viewers/:id/delete/confirm
func (h *Handler) ConfirmDelete(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}
	if err := ctrl.ConfirmDelete(c.Request().Context()); err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, ctrl.Snapshot())
}

// CancelDelete handles POST /viewers/:id/delete/cancel
func (h *Handler) CancelDelete(c echo.Context) error {
	ctrl, err := h.session(c)
	if err != nil {
		return h.handleError(c, err)
	}
	ctrl.CancelDelete()
	return c.JSON(http.StatusOK, ctrl.Snapshot())
}

// CloseViewer handles DELETE /viewers/:id
func (h *Handler) CloseViewer(c echo.Context) error {
	if _, err := h.session(c); err != nil {
		return h.handleError(c, err)
	}
	h.viewers.Close(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) session(c echo.Context) (*viewer.Controller, error) {
	ctrl, ok := h.viewers.Get(c.Param("id"))
	if !ok {
		return nil, core.NewNotFoundError("viewer session not found or expired")
	}
	return ctrl, nil
}

// handleError converts gateway errors to HTTP responses
func (h *Handler) handleError(c echo.Context, err error) error {
	var docErr *core.DocError
	if errors.As(err, &docErr) {
		return c.JSON(docErr.HTTPStatusCode(), docErr.ToJSON())
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"error": map[string]any{
			"kind":    "internal",
			"message": "an unexpected error occurred",
		},
	})
}
