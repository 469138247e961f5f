// Package server exposes a trained network over HTTP.
//
// Routes:
//
//	POST /predict   {"image": [...pixels 0-255...] | "data:image/png;base64,..."}
//	GET  /health    model presence and dimensions
//	GET  /          drawing canvas
//	GET  /{file}    static assets
//
// The server only reads the build directory. Running it against a
// directory that a training run is writing at the same moment is not
// supported.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/born-ml/digits/internal/serialization"
)

//go:embed static
var embedded embed.FS

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 5 * time.Second
)

// Server serves predictions from the model stored in a build directory.
type Server struct {
	models *modelCache
	static fs.FS
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStaticDir serves static assets from dir instead of the embedded canvas.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		if dir != "" {
			s.static = os.DirFS(dir)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a server reading models from store.
func New(store *serialization.Store, opts ...Option) *Server {
	static, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err) // embedded directory is fixed at build time
	}
	s := &Server{
		models: newModelCache(store),
		static: static,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleCanvas)
	mux.Handle("GET /", http.FileServerFS(s.static))

	return s.withRequestID(s.withLogging(s.withRecover(mux)))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening addr=%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, s.static, "canvas.html")
}
