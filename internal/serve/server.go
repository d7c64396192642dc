// Package serve provides the quorum HTTP server: the streaming /api/ask
// endpoint plus REST access to modes and persisted conversations.
package serve

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dicklesworthstone/quorum/internal/events"
	"github.com/Dicklesworthstone/quorum/internal/gateway"
	"github.com/Dicklesworthstone/quorum/internal/modes"
	"github.com/Dicklesworthstone/quorum/internal/state"
	"github.com/google/uuid"
)

// AuthMode configures authentication for the server.
type AuthMode string

const (
	AuthModeLocal  AuthMode = "local"
	AuthModeAPIKey AuthMode = "api_key"
)

// ParseAuthMode validates a raw auth mode string.
func ParseAuthMode(raw string) (AuthMode, error) {
	mode := AuthMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case "", AuthModeLocal:
		return AuthModeLocal, nil
	case AuthModeAPIKey:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid auth mode %q (valid: local, api_key)", raw)
	}
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	Dispatcher *modes.Dispatcher
	Store      *state.Store
	AuthMode   AuthMode
	APIKey     string
	// AllowedOrigins controls the CORS allowlist. Empty means localhost only.
	AllowedOrigins []string
	// DefaultModels supplies the model roster for requests that do not name
	// one. Called per request so a config reload takes effect immediately.
	DefaultModels func() []string
	Logger        *slog.Logger
}

const (
	defaultPort     = 8377
	requestIDHeader = "X-Request-Id"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func defaultLocalOrigins() []string {
	return []string{
		"http://localhost",
		"http://127.0.0.1",
		"http://[::1]",
		"https://localhost",
		"https://127.0.0.1",
		"https://[::1]",
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = AuthModeLocal
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaultLocalOrigins()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// ValidateConfig checks server configuration for security and completeness.
func ValidateConfig(cfg Config) error {
	applyDefaults(&cfg)

	mode, err := ParseAuthMode(string(cfg.AuthMode))
	if err != nil {
		return err
	}
	if mode == AuthModeAPIKey && cfg.APIKey == "" {
		return errors.New("auth mode api_key requires an api key")
	}
	if mode == AuthModeLocal && !isLoopbackHost(cfg.Host) {
		return fmt.Errorf("refusing to bind %s without auth; set auth mode api_key and a key", cfg.Host)
	}
	return nil
}

func isLoopbackHost(host string) bool {
	switch host {
	case "127.0.0.1", "localhost", "::1", "[::1]", "":
		return true
	}
	return false
}

// Server exposes the deliberation engine over HTTP.
type Server struct {
	cfg    Config
	server *http.Server
	logger *slog.Logger
}

// New creates a server around a dispatcher and store.
func New(cfg Config) *Server {
	applyDefaults(&cfg)
	return &Server{cfg: cfg, logger: cfg.Logger}
}

// Handler builds the routed and middleware-wrapped handler. Exposed for
// httptest use.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/modes", s.handleModes)
	mux.HandleFunc("/api/conversations", s.handleConversations)
	mux.HandleFunc("/api/conversations/", s.handleConversation)
	mux.HandleFunc("/health", s.handleHealth)
	return s.requestIDMiddleware(s.loggingMiddleware(s.corsMiddleware(s.authMiddleware(mux))))
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := ValidateConfig(s.cfg); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays 0: /api/ask streams for the whole pipeline.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting server", "addr", s.server.Addr, "auth", s.cfg.AuthMode)
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		reqID, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(), "request_id", reqID)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if !originAllowed(origin, s.cfg.AllowedOrigins) {
				writeError(w, http.StatusForbidden, "origin not allowed")
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, "+requestIDHeader)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if origin == a || strings.HasPrefix(origin, a+":") {
			return true
		}
	}
	return false
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthMode != AuthModeAPIKey || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				key = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) != 1 {
			s.logger.Warn("auth failed", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "healthy",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleModes handles GET /api/modes - the mode registry dump.
func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"modes":   modes.Registry,
		"count":   len(modes.Registry),
	})
}

// askRequest is the POST /api/ask body.
type askRequest struct {
	Question       string         `json:"question"`
	Mode           string         `json:"mode"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Config         map[string]any `json:"config,omitempty"`
}

// handleAsk handles POST /api/ask: run one deliberation, streaming events as
// SSE frames, and persist the exchange when a store is configured.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.cfg.Dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "dispatcher not available")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Mode == "" {
		req.Mode = "council"
	}

	modeCfg := modes.Config(req.Config)
	if len(modeCfg.Models()) == 0 && s.cfg.DefaultModels != nil {
		if modeCfg == nil {
			modeCfg = modes.Config{}
		}
		modeCfg["models"] = s.cfg.DefaultModels()
	}

	history := s.loadHistory(req.ConversationID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	result := s.cfg.Dispatcher.Execute(r.Context(), modes.Request{
		Question:       req.Question,
		Mode:           req.Mode,
		ConversationID: req.ConversationID,
		History:        history,
		Config:         modeCfg,
	}, events.NewSSEWriter(w))

	s.persistResult(req, result)
}

// loadHistory converts a conversation's prior messages to gateway turns.
func (s *Server) loadHistory(conversationID string) []gateway.Turn {
	if s.cfg.Store == nil || conversationID == "" {
		return nil
	}
	messages, err := s.cfg.Store.History(conversationID)
	if err != nil {
		s.logger.Warn("history load failed", "conversation", conversationID, "error", err)
		return nil
	}
	turns := make([]gateway.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, gateway.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// persistResult saves the exchange. Stage rows are persisted on failure too,
// so partial pipelines stay inspectable.
func (s *Server) persistResult(req askRequest, result modes.Result) {
	if s.cfg.Store == nil {
		return
	}
	answer := result.Answer
	if result.Err != nil {
		answer = fmt.Sprintf("[error: %v]", result.Err)
	}
	err := s.cfg.Store.SaveExchange(&state.Exchange{
		ConversationID: result.ConversationID,
		Title:          result.Title,
		Mode:           req.Mode,
		MessageID:      result.MessageID,
		Question:       req.Question,
		Answer:         answer,
		Stages:         result.Stages,
	})
	if err != nil {
		s.logger.Warn("exchange persist failed", "conversation", result.ConversationID, "error", err)
	}
}

// handleConversations handles GET /api/conversations - the conversation list.
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.cfg.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not available")
		return
	}
	list, err := s.cfg.Store.ListConversations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"conversations": list,
		"count":         len(list),
	})
}

// handleConversation handles /api/conversations/{id}: GET returns the full
// message tree with stages; DELETE removes it.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "conversation ID required")
		return
	}
	if s.cfg.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "store not available")
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.cfg.Store.GetConversation(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if c == nil {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "conversation": c})
	case http.MethodDelete:
		if err := s.cfg.Store.DeleteConversation(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
