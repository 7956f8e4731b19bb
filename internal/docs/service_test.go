package docs

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"traindocs/internal/apiclient"
	"traindocs/internal/audit"
	"traindocs/internal/cache"
	"traindocs/internal/core"
)

func newTestService(t *testing.T, handler http.Handler, opts ...Option) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := apiclient.DefaultConfig(srv.URL, "token")
	cfg.MaxRetries = 0
	cfg.CircuitBreaker = nil
	client := apiclient.New(cfg)

	return NewService(client, cache.NewMemoryCache(cache.DefaultTTL), opts...), srv
}

func TestGetContentFetchesAndCaches(t *testing.T) {
	var contentFetches atomic.Int32
	scope := core.Scope{CenterID: "center1", DocumentID: "doc9"}

	mux := http.NewServeMux()
	mux.HandleFunc("/centers/center1/documents/doc9/files/cert.pdf", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/json" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"fileId": "cert.pdf", "contentType": "application/pdf"}`))
			return
		}
		contentFetches.Add(1)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	})

	recorder := audit.NewMemoryRecorder()
	svc, _ := newTestService(t, mux, WithAudit(recorder))

	content, err := svc.GetContent(context.Background(), scope, "cert.pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", content.ContentType)
	require.True(t, content.Previewable)
	require.Contains(t, content.DataURI, "data:application/pdf;base64,")

	decoded, err := base64.StdEncoding.DecodeString(content.Content)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7 fake", string(decoded))

	// Second call within the TTL must not hit the network.
	again, err := svc.GetContent(context.Background(), scope, "cert.pdf")
	require.NoError(t, err)
	require.Equal(t, content.Content, again.Content)
	require.Equal(t, int32(1), contentFetches.Load())

	events := recorder.Events()
	require.Len(t, events, 2)
	require.Equal(t, audit.ActionFetch, events[0].Action)
	require.Equal(t, "ok", events[1].Outcome)
}

func TestGetContentMetadataFailureIsNonFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/centers/c/documents/d/files/scan.png", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/json" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	})

	svc, _ := newTestService(t, mux)
	content, err := svc.GetContent(context.Background(), core.Scope{CenterID: "c", DocumentID: "d"}, "scan.png")
	require.NoError(t, err)
	require.Equal(t, "image/png", content.ContentType)
}

func TestGetContentEmbeddedBase64Body(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("embedded"))
	mux := http.NewServeMux()
	mux.HandleFunc("/centers/c/documents/d/files/f1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"body": "` + payload + `", "contentType": "text/plain"}`))
	})

	svc, _ := newTestService(t, mux)
	content, err := svc.GetContent(context.Background(), core.Scope{CenterID: "c", DocumentID: "d"}, "f1")
	require.NoError(t, err)
	require.Equal(t, payload, content.Content)
}

func TestGetContentNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	recorder := audit.NewMemoryRecorder()
	svc, _ := newTestService(t, mux, WithAudit(recorder))

	_, err := svc.GetContent(context.Background(), core.Scope{CenterID: "c", DocumentID: "d"}, "missing.pdf")
	var docErr *core.DocError
	require.ErrorAs(t, err, &docErr)
	require.Equal(t, core.KindNotFound, docErr.Kind)
	require.Equal(t, "File not found on the server", docErr.Message)

	events := recorder.Events()
	require.Len(t, events, 1)
	require.Equal(t, "not_found", events[0].Outcome)
}

func TestGetContentEmptyFileID(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())
	_, err := svc.GetContent(context.Background(), core.Scope{CenterID: "c", DocumentID: "d"}, "")
	var docErr *core.DocError
	require.ErrorAs(t, err, &docErr)
	require.Equal(t, core.KindIdentifierMissing, docErr.Kind)
}

func TestListFilesPartialFailureTolerance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/centers/c/documents/d/files", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "a.pdf", "size": 10},
			{"comment": "no identifier here"},
			{"headers": {"Content-Disposition": ["attachment; filename=\"b.docx\""]}}
		]`))
	})

	svc, _ := newTestService(t, mux)
	items, err := svc.ListFiles(context.Background(), core.Scope{CenterID: "c", DocumentID: "d"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "a.pdf", items[0].ID)
	require.Equal(t, "application/pdf", items[0].ContentType)
	require.Equal(t, int64(10), items[0].Size)
	require.False(t, items[0].CreatedAt.IsZero())

	require.Equal(t, "b.docx", items[1].ID)
	require.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		items[1].ContentType)
}

func TestListFilesAttendeeScope(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	})

	svc, _ := newTestService(t, mux)
	scope := core.Scope{CenterID: "c1", AttendeeID: "a2", DocumentID: "d3"}
	_, err := svc.ListFiles(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, "/centers/c1/attendees/a2/documents/d3/files", gotPath)
}

func TestDeleteFileAndInvalidate(t *testing.T) {
	var deleted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/centers/c/documents/d/files/x.pdf", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deleted.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("bytes"))
		}
	})

	svc, _ := newTestService(t, mux)
	scope := core.Scope{CenterID: "c", DocumentID: "d"}
	ctx := context.Background()

	// Populate the cache, then delete and invalidate.
	_, err := svc.GetContent(ctx, scope, "x.pdf")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFile(ctx, scope, "x.pdf"))
	require.True(t, deleted.Load())
	require.NoError(t, svc.Invalidate(ctx, scope, "x.pdf"))
}

func TestUploadFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/centers/c/documents/d/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "new.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "new.pdf", "size": 4}`))
	})

	svc, _ := newTestService(t, mux)
	item, err := svc.UploadFile(context.Background(), core.Scope{CenterID: "c", DocumentID: "d"}, "new.pdf", []byte("data"))
	require.NoError(t, err)
	require.Equal(t, "new.pdf", item.ID)
	require.Equal(t, int64(4), item.Size)
	require.Equal(t, "application/pdf", item.ContentType)
}

func TestUploadFileValidation(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())
	ctx := context.Background()
	scope := core.Scope{CenterID: "c", DocumentID: "d"}

	_, err := svc.UploadFile(ctx, scope, "", []byte("data"))
	require.Error(t, err)

	_, err = svc.UploadFile(ctx, scope, "a.pdf", nil)
	require.Error(t, err)
}

func TestKeyMatchesScopeAndFile(t *testing.T) {
	svc := NewService(nil, cache.NewMemoryCache(cache.DefaultTTL))
	key := svc.Key(core.Scope{CenterID: "center1", DocumentID: "doc9"}, "cert.pdf")
	require.Equal(t, "center1_doc9_cert.pdf", key)
}
