// Package capture records incoming webhook requests to disk for inspection,
// so a downstream payload format can be reverse engineered before wiring the
// real receiver.
package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxCaptureBytes = 10 << 20

// Record is the on-disk shape of one captured request.
type Record struct {
	ReceivedAt time.Time           `json:"received_at"`
	Method     string              `json:"method"`
	Path       string              `json:"path"`
	Query      map[string][]string `json:"query,omitempty"`
	Headers    map[string][]string `json:"headers"`
	Body       string              `json:"body"`
	JSON       json.RawMessage     `json:"json,omitempty"`
}

// Server persists webhook requests under Dir, one JSON file per request.
type Server struct {
	dir    string
	logger *slog.Logger
}

func NewServer(dir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{dir: dir, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", s.capture)
	mux.HandleFunc("/captures", s.list)
}

// capture accepts any method: the whole point is recording whatever the
// sender does.
func (s *Server) capture(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCaptureBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "body exceeds 10 MiB", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	record := Record{
		ReceivedAt: time.Now().UTC(),
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		Headers:    r.Header,
		Body:       string(body),
	}
	if json.Valid(body) {
		record.JSON = json.RawMessage(body)
	}

	name, err := s.save(record)
	if err != nil {
		s.logger.Error("save capture", "error", err)
		http.Error(w, "save capture: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("captured request", "method", r.Method, "file", name, "bytes", len(body))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"saved": name})
}

func (s *Server) save(record Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode capture: %w", err)
	}

	name := fmt.Sprintf("capture_%s_%s.json",
		record.ReceivedAt.Format("20060102T150405"), uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o600); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}

	return name, nil
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
		return
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		http.Error(w, "list captures: "+err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"captures": names})
}

// NewHTTPServer builds the capture http.Server.
func NewHTTPServer(address string, server *Server) *http.Server {
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	return &http.Server{
		Addr:         address,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Serve runs the capture server until ctx is cancelled.
func Serve(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("capture server listening", "address", server.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
