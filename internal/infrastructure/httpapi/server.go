// Package httpapi exposes the command pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/doeshing/voicectl/internal/application/command"
	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/pkg/logger"
	"github.com/doeshing/voicectl/internal/ports"
)

// CommandService is the subset of command.Service the API needs.
type CommandService interface {
	Execute(ctx context.Context, req domain.ExecuteRequest) (domain.CommandRecord, error)
	List(ctx context.Context, limit int) ([]domain.CommandRecord, error)
	Clear(ctx context.Context) error
}

// StorageStatus reports the history backend state. Optional.
type StorageStatus interface {
	Persistent() bool
	StoreName() string
}

// Server routes API requests.
type Server struct {
	router       *mux.Router
	commands     CommandService
	processor    ports.CommandProcessor
	storage      StorageStatus
	logger       ports.Logger
	historyLimit int
	now          func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithStorageStatus adds storage state to /api/status.
func WithStorageStatus(s StorageStatus) Option {
	return func(srv *Server) { srv.storage = s }
}

// WithLogger sets the request logger.
func WithLogger(l ports.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithHistoryLimit sets the default page size for /api/history.
func WithHistoryLimit(n int) Option {
	return func(srv *Server) {
		if n > 0 {
			srv.historyLimit = n
		}
	}
}

// WithClock overrides the status timestamp source.
func WithClock(now func() time.Time) Option {
	return func(srv *Server) { srv.now = now }
}

// NewServer wires the routes.
func NewServer(commands CommandService, processor ports.CommandProcessor, opts ...Option) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		commands:     commands,
		processor:    processor,
		logger:       logger.NewNop(),
		historyLimit: domain.DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

const apiPrefix = "/api"

func (s *Server) routes() {
	s.router.Use(requestID, s.logRequests, s.recoverPanics)

	s.router.HandleFunc(apiPrefix+"/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc(apiPrefix+"/execute", s.handleExecute).Methods(http.MethodPost)
	s.router.HandleFunc(apiPrefix+"/history", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc(apiPrefix+"/history", s.handleClearHistory).Methods(http.MethodDelete)
	for _, intent := range domain.InfoIntents {
		s.router.HandleFunc(apiPrefix+"/"+string(intent), s.handleInfo(intent)).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer builds a configured *http.Server for addr.
func (s *Server) HTTPServer(addr string, read, write time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       read,
		ReadHeaderTimeout: read,
		WriteTimeout:      write,
	}
}

type statusResponse struct {
	Status    string `json:"status"`
	Platform  string `json:"platform"`
	Timestamp string `json:"timestamp"`
	Storage   string `json:"storage,omitempty"`
	Degraded  *bool  `json:"degraded,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:    "online",
		Platform:  string(s.processor.Platform()),
		Timestamp: s.now().UTC().Format(domain.TimestampFormat),
	}
	if s.storage != nil {
		degraded := !s.storage.Persistent()
		resp.Storage = s.storage.StoreName()
		resp.Degraded = &degraded
	}
	writeJSON(w, http.StatusOK, resp)
}

type executeRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type executeResponse struct {
	ID        string `json:"id"`
	Response  string `json:"response"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "text and type are required")
		return
	}

	rec, err := s.commands.Execute(r.Context(), domain.ExecuteRequest{
		Text:          req.Text,
		Source:        domain.Source(req.Type),
		ClientContext: r.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, command.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("execute failed", err, map[string]interface{}{"request_id": RequestID(r.Context())})
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		ID:        rec.ID,
		Response:  rec.Response,
		Status:    string(rec.Status),
		Timestamp: rec.Timestamp.UTC().Format(domain.TimestampFormat),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be a positive integer, got %q", raw))
			return
		}
		limit = n
	}

	records, err := s.commands.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("history list failed", err, nil)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []domain.CommandRecord{}
	}
	for i := range records {
		records[i].ClientContext = ""
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.commands.Clear(r.Context()); err != nil {
		s.logger.Error("history clear failed", err, nil)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared"})
}

func (s *Server) handleInfo(intent domain.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := s.processor.Info(r.Context(), intent)
		if err != nil {
			s.logger.Error("info query failed", err, map[string]interface{}{"intent": string(intent)})
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"info": info})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
