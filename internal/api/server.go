// Package api exposes metadata extraction and prompt conversion over HTTP
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/alevsk/tagview/internal/converter"
	"github.com/alevsk/tagview/internal/ingestor"
	"github.com/alevsk/tagview/internal/logger"
)

// RequestIDHeader carries the id assigned to every request
const RequestIDHeader = "X-Request-Id"

// uploadField is the multipart form field holding the image
const uploadField = "file"

// Options configures the API server
type Options struct {
	Host string
	Port int
	// Timeout bounds reading a request and writing its response
	Timeout time.Duration
	// MaxUploadBytes is the largest accepted image upload
	MaxUploadBytes int64
	// Ingestor processes uploaded images; a default one is created when nil
	Ingestor *ingestor.Ingestor
}

// DefaultOptions returns the default server options
func DefaultOptions() *Options {
	return &Options{
		Host:           "0.0.0.0",
		Port:           8080,
		Timeout:        30 * time.Second,
		MaxUploadBytes: 32 << 20,
	}
}

// Server represents the API server
type Server struct {
	router *mux.Router
	opts   *Options
	ing    *ingestor.Ingestor
}

// NewServer creates a new API server instance
func NewServer(opts *Options) *Server {
	if opts == nil {
		opts = DefaultOptions()
	}
	ing := opts.Ingestor
	if ing == nil {
		ing = ingestor.New(nil)
	}

	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
		ing:    ing,
	}
	s.routes()
	return s
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.Use(requestLogger)
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/extract", s.extract).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/convert", s.convert).Methods(http.MethodPost)
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

// Start serves the API until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.opts.Timeout,
		WriteTimeout: s.opts.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	grace := s.opts.Timeout
	if grace <= 0 {
		grace = DefaultOptions().Timeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error().Err(err).Msg("failed to encode health check response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

// extract handles image uploads, either as the raw request body or as a multipart file
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	name, data, err := readUpload(r, s.opts.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty upload"))
		return
	}

	res := s.ing.Process(r.Context(), name, data)
	if res.Error != "" {
		writeError(w, http.StatusBadRequest, errors.New(res.Error))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// readUpload returns the uploaded file name and contents
func readUpload(r *http.Request, maxBytes int64) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read body: %w", err)
		}
		return name, data, nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", nil, fmt.Errorf("failed to parse form: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q field: %w", uploadField, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}

// ConvertRequest is the body of a prompt conversion request
type ConvertRequest struct {
	Prompt string `json:"prompt"`
}

// ConvertResponse holds the prompt and its converted form
type ConvertResponse struct {
	Prompt    string `json:"prompt"`
	Converted string `json:"converted"`
}

// convert rewrites bracket emphasis into explicit weights
func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.opts.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, ConvertResponse{
		Prompt:    req.Prompt,
		Converted: converter.Convert(req.Prompt),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger assigns a request id and logs every request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
