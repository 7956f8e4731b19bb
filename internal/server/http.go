// Package server provides the HTTP surface the admin front end calls:
// file listing, content, upload, delete, and viewer session routes.
package server

import (
	"context"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"traindocs/internal/docs"
	"traindocs/internal/viewer"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	MasterKey       string // Optional: master key for authentication
	MetricsEnabled  bool   // Whether to expose the Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for the metrics endpoint (default: /metrics)
	BodySizeLimit   string // Max request body size (echo format, default: 32M)
}

// New creates a new HTTP server over the retrieval service and viewer
// registry.
func New(service *docs.Service, viewers *viewer.Registry, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	handler := NewHandler(service, viewers)

	authSkipPaths := []string{"/health"}

	metricsPath := "/metrics"
	if cfg != nil && cfg.MetricsEnabled {
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal tricks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		authSkipPaths = append(authSkipPaths, metricsPath)
	}

	// Global middleware stack (order matters)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	bodySizeLimit := "32M"
	if cfg != nil && cfg.BodySizeLimit != "" {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(bodySizeLimit))

	if cfg != nil && cfg.MasterKey != "" {
		e.Use(AuthMiddleware(cfg.MasterKey, authSkipPaths))
	}

	// Public routes
	e.GET("/health", handler.Health)
	if cfg != nil && cfg.MetricsEnabled {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api/v1")

	// Center-level document files
	centerFiles := "/centers/:centerID/documents/:documentID/files"
	api.GET(centerFiles, handler.ListFiles)
	api.POST(centerFiles, handler.UploadFile)
	api.GET(centerFiles+"/:fileID/content", handler.GetContent)
	api.DELETE(centerFiles+"/:fileID", handler.DeleteFile)

	// Attendee-level document files
	attendeeFiles := "/centers/:centerID/attendees/:attendeeID/documents/:documentID/files"
	api.GET(attendeeFiles, handler.ListFiles)
	api.POST(attendeeFiles, handler.UploadFile)
	api.GET(attendeeFiles+"/:fileID/content", handler.GetContent)
	api.DELETE(attendeeFiles+"/:fileID", handler.DeleteFile)

	// Viewer sessions
	api.POST("/viewers", handler.OpenViewer)
	api.GET("/viewers/:id", handler.ViewerState)
	api.PUT("/viewers/:id/active", handler.SetActive)
	api.POST("/viewers/:id/files/:fileID/content", handler.ViewerContent)
	api.POST("/viewers/:id/files/:fileID/download", handler.ViewerDownload)
	api.POST("/viewers/:id/delete", handler.RequestDelete)
	api.POST("/viewers/:id/delete/confirm", handler.ConfirmDelete)
	api.POST("/viewers/:id/delete/cancel", handler.CancelDelete)
	api.DELETE("/viewers/:id", handler.CloseViewer)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
