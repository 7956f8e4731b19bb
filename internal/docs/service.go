// Package docs implements the file retrieval service: cache-first content
// access, descriptor listing with partial-failure tolerance, uploads, and
// deletes against the platform API.
package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"traindocs/internal/apiclient"
	"traindocs/internal/audit"
	"traindocs/internal/cache"
	"traindocs/internal/core"
	"traindocs/internal/resolve"
	"traindocs/internal/transcode"
)

// Service orchestrates the resolvers, transcoder, cache, and platform
// client. The cache instance is injected so each application (and each
// test) owns its own; there is no module-level state.
type Service struct {
	client  *apiclient.Client
	cache   cache.Cache
	audit   audit.Recorder
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAudit attaches an access event recorder.
func WithAudit(recorder audit.Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.audit = recorder
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a retrieval service over the given platform client
// and cache.
func NewService(client *apiclient.Client, c cache.Cache, opts ...Option) *Service {
	s := &Service{
		client: client,
		cache:  c,
		audit:  audit.NoopRecorder{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the composite cache key for a file within a scope.
func (s *Service) Key(scope core.Scope, fileID string) string {
	return cache.KeyFor(append(scope.IDs(), fileID)...)
}

// filesPath builds the platform API path for a scope's file collection.
func filesPath(scope core.Scope) string {
	var b strings.Builder
	b.WriteString("/centers/")
	b.WriteString(url.PathEscape(scope.CenterID))
	if scope.AttendeeID != "" {
		b.WriteString("/attendees/")
		b.WriteString(url.PathEscape(scope.AttendeeID))
	}
	b.WriteString("/documents/")
	b.WriteString(url.PathEscape(scope.DocumentID))
	b.WriteString("/files")
	return b.String()
}

func filePath(scope core.Scope, fileID string) string {
	return filesPath(scope) + "/" + url.PathEscape(fileID)
}

// GetContent returns the base64 content and content type for a file,
// serving from the cache when a fresh entry exists. On a miss it fetches
// metadata best-effort for a content-type hint, fetches the binary
// content, resolves the type through the fallback chain, transcodes, and
// writes the cache entry.
func (s *Service) GetContent(ctx context.Context, scope core.Scope, fileID string) (*core.FileContent, error) {
	if fileID == "" {
		return nil, core.NewIdentifierMissingError("missing file identifier")
	}

	start := s.now()
	key := s.Key(scope, fileID)

	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed, falling through to fetch", "key", key, "error", err)
	}
	if entry != nil {
		s.metrics.hit()
		s.record(ctx, audit.ActionFetch, key, fileID, "ok", start)
		return contentFromEntry(entry), nil
	}
	s.metrics.miss()

	// Metadata fetch is best-effort: failure only forfeits a type hint.
	var typeHint, nameHint string
	metaResp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: filePath(scope, fileID),
		Headers:  map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		slog.Debug("file metadata fetch failed", "file_id", fileID, "error", err)
	} else {
		meta := resolve.ParseDescriptor(metaResp.Body)
		typeHint = meta.ContentType
		if id, ok := resolve.Identifier(&meta); ok {
			nameHint = id
		}
	}

	resp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: filePath(scope, fileID),
		Headers:  map[string]string{"Accept": "application/octet-stream"},
	})
	if err != nil {
		s.recordFailure(ctx, audit.ActionFetch, key, fileID, err, start)
		return nil, err
	}

	encoded := encodeBody(resp)
	if nameHint == "" {
		nameHint = fileID
	}
	contentType := resolve.ContentType(typeHint, nameHint, resp.Header.Get("Content-Type"))

	newEntry := &cache.Entry{
		Content:     encoded,
		ContentType: contentType,
		CachedAt:    s.now(),
	}
	if err := s.cache.Set(ctx, key, newEntry); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}

	s.metrics.fetch()
	s.record(ctx, audit.ActionFetch, key, fileID, "ok", start)
	return contentFromEntry(newEntry), nil
}

// encodeBody extracts base64 content from an upstream response. Some
// endpoints return raw bytes, others a JSON envelope with an embedded
// base64 body; both are normalized to base64 text.
func encodeBody(resp *apiclient.Response) string {
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if body := gjson.GetBytes(resp.Body, "body"); body.Exists() && body.String() != "" {
			return body.String()
		}
	}
	return transcode.EncodeBase64(resp.Body)
}

func contentFromEntry(entry *cache.Entry) *core.FileContent {
	content := &core.FileContent{
		Content:     entry.Content,
		ContentType: entry.ContentType,
		Previewable: resolve.Previewable(entry.ContentType),
	}
	if content.Previewable {
		content.DataURI = transcode.DataURI(entry.Content, entry.ContentType)
	}
	return content
}

// ListFiles fetches the scope's raw descriptors and normalizes each into a
// FileItem. A descriptor that yields no identifier is logged and excluded;
// one bad file never aborts the list.
func (s *Service) ListFiles(ctx context.Context, scope core.Scope) ([]core.FileItem, error) {
	start := s.now()
	key := cache.KeyFor(scope.IDs()...)

	resp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: filesPath(scope),
		Headers:  map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		s.recordFailure(ctx, audit.ActionList, key, "", err, start)
		return nil, err
	}

	descriptors := resolve.ParseDescriptorList(resp.Body)
	items := make([]core.FileItem, 0, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		id, ok := resolve.Identifier(d)
		if !ok {
			slog.Warn("excluding file with no resolvable identifier",
				"scope", key, "descriptor", fmt.Sprintf("%+v", *d))
			continue
		}
		items = append(items, s.toItem(d, id))
	}

	s.record(ctx, audit.ActionList, key, "", "ok", start)
	return items, nil
}

func (s *Service) toItem(d *core.FileDescriptor, id string) core.FileItem {
	item := core.FileItem{
		ID:          id,
		Name:        id,
		Size:        d.Size,
		ContentType: resolve.ContentType(d.ContentType, id, ""),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	return item
}

// DeleteFile removes the file on the platform. Cache invalidation is the
// caller's responsibility via Invalidate, so callers control ordering
// between the delete and their own state updates.
func (s *Service) DeleteFile(ctx context.Context, scope core.Scope, fileID string) error {
	if fileID == "" {
		return core.NewIdentifierMissingError("missing file identifier")
	}

	start := s.now()
	key := s.Key(scope, fileID)

	_, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:   http.MethodDelete,
		Endpoint: filePath(scope, fileID),
	})
	if err != nil {
		s.recordFailure(ctx, audit.ActionDelete, key, fileID, err, start)
		return err
	}

	s.record(ctx, audit.ActionDelete, key, fileID, "ok", start)
	return nil
}

// Invalidate drops the cache entry for a file.
func (s *Service) Invalidate(ctx context.Context, scope core.Scope, fileID string) error {
	return s.cache.Invalidate(ctx, s.Key(scope, fileID))
}

// UploadFile sends the binary payload as multipart form data and returns
// the normalized FileItem. The content is not pre-populated into the
// cache; the first preview fetches it.
func (s *Service) UploadFile(ctx context.Context, scope core.Scope, fileName string, content []byte) (*core.FileItem, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, core.NewInvalidRequestError("file name is required", nil)
	}
	if len(content) == 0 {
		return nil, core.NewInvalidRequestError("file content is required", nil)
	}

	start := s.now()
	key := cache.KeyFor(scope.IDs()...)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to create multipart file field", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, core.NewInvalidRequestError("failed to write file content", err)
	}
	if err := writer.Close(); err != nil {
		return nil, core.NewInvalidRequestError("failed to finalize multipart payload", err)
	}

	resp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: filesPath(scope),
		RawBody:  buf.Bytes(),
		Headers: map[string]string{
			"Content-Type": writer.FormDataContentType(),
		},
	})
	if err != nil {
		s.recordFailure(ctx, audit.ActionUpload, key, fileName, err, start)
		return nil, err
	}

	descriptor := resolve.ParseDescriptor(resp.Body)
	id, ok := resolve.Identifier(&descriptor)
	if !ok {
		// The platform accepted the upload; fall back to the name we sent.
		id = fileName
	}
	item := s.toItem(&descriptor, id)
	if item.Size == 0 {
		item.Size = int64(len(content))
	}

	s.record(ctx, audit.ActionUpload, key, id, "ok", start)
	return &item, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, key, fileID, outcome string, start time.Time) {
	s.audit.Record(ctx, audit.NewEvent(action, key, fileID, outcome, s.now().Sub(start)))
}

func (s *Service) recordFailure(ctx context.Context, action audit.Action, key, fileID string, err error, start time.Time) {
	outcome := "error"
	var docErr *core.DocError
	if errors.As(err, &docErr) {
		outcome = string(docErr.Kind)
		s.metrics.failure(docErr.Kind)
	} else {
		s.metrics.failure(core.KindUnknown)
	}
	s.audit.Record(ctx, audit.NewEvent(action, key, fileID, outcome, s.now().Sub(start)))
}
