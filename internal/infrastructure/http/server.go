// Package http serves a local browser view of the session.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/0xcro3dile/docqa-go/internal/adapters/loader"
	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const (
	moduleHTTP = "HTTP"

	// MaxUploadBytes bounds the uploaded file, matching the terminal loader.
	MaxUploadBytes = loader.DefaultMaxBytes

	// multipartOverhead is headroom for boundaries and part headers.
	multipartOverhead = 1 << 20
)

// Session is the subset of the session controller the web view drives.
type Session interface {
	Snapshot() entities.Snapshot
	SubmitQuestion(ctx context.Context, text string) (<-chan struct{}, error)
	SubmitUpload(ctx context.Context, file entities.FileUpload) (<-chan struct{}, error)
	ToggleSources(ctx context.Context, messageID string) (bool, error)
}

// SnapshotSource streams published snapshots.
type SnapshotSource interface {
	Subscribe(ctx context.Context) (<-chan entities.Snapshot, error)
}

// Server is the HTTP server for the browser view.
type Server struct {
	session        Session
	snapshots      SnapshotSource
	health         ports.HealthChecker // optional
	logger         logger.ILogger
	addr           string
	allowedOrigins []string
	maxUploadBytes int64
}

// NewServer creates a new HTTP server. health may be nil.
func NewServer(
	session Session,
	snapshots SnapshotSource,
	health ports.HealthChecker,
	log logger.ILogger,
	addr string,
	allowedOrigins string,
) *Server {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Server{
		session:        session,
		snapshots:      snapshots,
		health:         health,
		logger:         log,
		addr:           addr,
		allowedOrigins: origins,
		maxUploadBytes: MaxUploadBytes,
	}
}

// Handler builds the router. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Get("/health", s.handleHealth)
		r.Post("/question", s.handleQuestion)
		r.Post("/upload", s.handleUpload)
		r.Post("/messages/{messageID}/toggle", s.handleToggle)
	})

	return r
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 60 * time.Second, // uploads can be large
		// no WriteTimeout: /api/events is long-lived
	}

	s.logger.Info(moduleHTTP, "Web view starting", map[string]interface{}{"addr": s.addr})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(moduleHTTP, "Shutdown incomplete", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleEvents streams snapshots as SSE. The current state goes out first;
// anything not newer than what was already sent is skipped.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	ctx := r.Context()
	updates, err := s.snapshots.Subscribe(ctx)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Subscription failed")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	current := s.session.Snapshot()
	sendSSE(w, flusher, current)
	last := current.Version

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			sendSSE(w, flusher, snap)
		}
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, snap entities.Snapshot) {
	jsonData, _ := json.Marshal(snap)
	fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, jsonData)
	flusher.Flush()
}

type questionRequest struct {
	Question string `json:"question"`
}

// handleQuestion accepts JSON or a form field. The answer arrives via /api/events.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var question string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		question = req.Question
	} else {
		question = r.FormValue("question")
	}

	if _, err := s.session.SubmitQuestion(r.Context(), question); err != nil {
		s.respondWithIntentError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleUpload reads the multipart "file" field and submits it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Could not read file")
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	if _, err := s.session.SubmitUpload(r.Context(), entities.FileUpload{Name: header.Filename, Data: data}); err != nil {
		s.respondWithIntentError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "file_name": header.Filename})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")

	expanded, err := s.session.ToggleSources(r.Context(), messageID)
	if err != nil {
		s.respondWithIntentError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"id": messageID, "expanded": expanded})
}

// handleHealth reports the local server and, when configured, the backend.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	health, err := s.health.Health(r.Context())
	if err != nil {
		respondWithJSON(w, http.StatusBadGateway, map[string]string{"status": "degraded", "backend": err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "backend": health})
}

// respondWithIntentError maps controller rejections onto status codes.
func (s *Server) respondWithIntentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecases.ErrEmptyQuestion):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecases.ErrQueryInFlight), errors.Is(err, usecases.ErrUploadInFlight):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, usecases.ErrNoSources):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error(moduleHTTP, "Unexpected intent error", map[string]interface{}{"error": err.Error()})
		respondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(moduleHTTP, "Request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}
