package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vishnutej000/Memories-sub001/internal/analysis"
	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// maxUploadBytes bounds the size of one transcript upload.
const maxUploadBytes = 64 << 20

// Store is the read side of chat storage.
type Store interface {
	ListChats(ctx context.Context) ([]core.Chat, error)
	GetChat(ctx context.Context, id string) (core.Chat, error)
	DeleteChat(ctx context.Context, id string) error
	CountMessages(ctx context.Context, chatID string, filters Filters) (int64, error)
	ListMessages(ctx context.Context, chatID string, filters Filters) ([]core.ChatMessage, error)
	AllMessages(ctx context.Context, chatID string) ([]core.ChatMessage, error)
}

// ChatImporter ingests one raw transcript and returns the stored chat.
type ChatImporter interface {
	ImportText(ctx context.Context, title, text string) (core.Chat, error)
}

type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	store      Store
	importer   ChatImporter
	opts       Options
	metrics    *Metrics
	limiter    *ipRateLimiter
	cors       *corsPolicy

	mu      sync.Mutex
	clients map[*streamClient]struct{}
	closed  bool
}

type Options struct {
	Addr            string
	CORSOrigins     []string
	RateLimitRPS    int
	RateLimitBurst  int
	EnableMetrics   bool
	EnableAccessLog bool
	Build           BuildInfo
	ConfigSnapshot  map[string]any
}

func New(store Store, importer ChatImporter, opts Options) *Server {
	srv := &Server{
		store:    store,
		importer: importer,
		opts:     opts,
		limiter:  newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		cors:     newCORSPolicy(opts.CORSOrigins),
		clients:  make(map[*streamClient]struct{}),
	}
	if opts.EnableMetrics {
		srv.metrics = newMetrics()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.wrap("/healthz", srv.handleHealthz))
	mux.HandleFunc("GET /info", srv.wrap("/info", srv.handleInfo))
	mux.HandleFunc("GET /configz", srv.wrap("/configz", srv.handleConfig))
	mux.HandleFunc("POST /chats", srv.wrap("/chats", srv.handleImport))
	mux.HandleFunc("GET /chats", srv.wrap("/chats", srv.handleListChats))
	mux.HandleFunc("GET /chats/{id}", srv.wrap("/chats/{id}", srv.handleGetChat))
	mux.HandleFunc("DELETE /chats/{id}", srv.wrap("/chats/{id}", srv.handleDeleteChat))
	mux.HandleFunc("GET /chats/{id}/messages", srv.wrap("/chats/{id}/messages", srv.handleMessages))
	mux.HandleFunc("GET /chats/{id}/statistics", srv.wrap("/chats/{id}/statistics", srv.handleStatistics))
	mux.HandleFunc("GET /chats/{id}/sentiment", srv.wrap("/chats/{id}/sentiment", srv.handleSentiment))
	mux.HandleFunc("GET /chats/{id}/keywords", srv.wrap("/chats/{id}/keywords", srv.handleKeywords))
	mux.HandleFunc("GET /stream", srv.wrap("/stream", srv.handleStream))
	if srv.metrics != nil {
		mux.Handle("GET /metrics", srv.metrics.Handler())
	}
	srv.mux = mux

	srv.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv
}

// Mux exposes the router so extra handlers (admin) can be registered before
// the server starts.
func (s *Server) Mux() *http.ServeMux { return s.mux }

// wrap applies rate limiting, CORS, metrics and access logging around a
// handler. The route label keeps metric cardinality bounded.
func (s *Server) wrap(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if handled, status := s.cors.handlePreflight(w, r); handled {
			s.metrics.ObserveRequest(route, r.Method, status, time.Since(start))
			return
		}
		if !s.cors.applyHeaders(w, r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			s.metrics.ObserveRequest(route, r.Method, http.StatusForbidden, time.Since(start))
			return
		}

		ip := remoteIP(r)
		if !s.limiter.Allow(ip) {
			s.metrics.IncRateLimited()
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			s.metrics.ObserveRequest(route, r.Method, http.StatusTooManyRequests, time.Since(start))
			return
		}

		rec := newResponseRecorder(w)
		h(rec, r)

		dur := time.Since(start)
		s.metrics.ObserveRequest(route, r.Method, rec.Status(), dur)
		if s.opts.EnableAccessLog {
			slog.Info("http request",
				"route", route,
				"method", r.Method,
				"status", rec.Status(),
				"bytes", rec.Bytes(),
				"ip", ip,
				"dur_ms", dur.Milliseconds(),
			)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	if s.opts.ConfigSnapshot == nil {
		writeError(w, http.StatusNotFound, "config snapshot unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.opts.ConfigSnapshot)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		writeError(w, http.StatusServiceUnavailable, "import disabled")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "transcript too large")
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, "empty transcript")
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		title = "chat"
	}

	chat, err := s.importer.ImportText(r.Context(), title, string(body))
	if err != nil {
		s.metrics.ObserveImport(0, true)
		slog.Error("import failed", "title", title, "err", err)
		writeError(w, http.StatusUnprocessableEntity, "import failed")
		return
	}

	s.metrics.ObserveImport(chat.MessageCount, false)
	writeJSON(w, http.StatusCreated, chat)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.store.ListChats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if chats == nil {
		chats = []core.Chat{}
	}
	writeJSON(w, http.StatusOK, chats)
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := s.store.GetChat(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteChat(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chatID := r.PathValue("id")
	if _, err := s.store.GetChat(r.Context(), chatID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup error")
		return
	}

	total, err := s.store.CountMessages(r.Context(), chatID, filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "count error")
		return
	}
	rows, err := s.store.ListMessages(r.Context(), chatID, filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if rows == nil {
		rows = []core.ChatMessage{}
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, rows)
}

// messagesForAnalysis loads the full chat history once for the derived views.
func (s *Server) messagesForAnalysis(w http.ResponseWriter, r *http.Request) ([]core.ChatMessage, bool) {
	chatID := r.PathValue("id")
	if _, err := s.store.GetChat(r.Context(), chatID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "lookup error")
		return nil, false
	}
	msgs, err := s.store.AllMessages(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return nil, false
	}
	return msgs, true
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.messagesForAnalysis(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Calculate(msgs))
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.messagesForAnalysis(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Sentiment(msgs))
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	msgs, ok := s.messagesForAnalysis(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Keywords(msgs, limit))
}

func (s *Server) Start() error {
	log.Printf("http api listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for client := range s.clients {
		close(client.ch)
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}
