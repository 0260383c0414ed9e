// Package http exposes the agent as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/usecases"
)

// Server is the HTTP front end of the agent.
type Server struct {
	agent   *usecases.Agent
	addr    string
	origins map[string]bool
	logger  zerolog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(agent *usecases.Agent, addr string, logger zerolog.Logger) *Server {
	return &Server{
		agent:  agent,
		addr:   addr,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// AllowOrigins lists the browser origins that get CORS headers. Without it
// no cross-origin request is allowed.
func (s *Server) AllowOrigins(origins ...string) *Server {
	s.origins = make(map[string]bool, len(origins))
	for _, o := range origins {
		s.origins[o] = true
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/request", s.handleRequest)
	mux.HandleFunc("POST /api/build", s.handleBuild)
	mux.HandleFunc("POST /api/fix", s.handleFix)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/diagnose", s.handleDiagnose)
	mux.HandleFunc("POST /api/refactor", s.handleRefactor)
	mux.HandleFunc("POST /api/ask", s.handleAsk)
	mux.HandleFunc("GET /api/ask/stream", s.handleAskStream) // SSE
	mux.HandleFunc("POST /api/learn", s.handleLearn)
	mux.HandleFunc("POST /api/reindex", s.handleReindex)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 600 * time.Second, // builds chain several oracle calls
	}

	s.logger.Info().Str("addr", s.addr).Msg("server starting")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type (
	requestBody struct {
		Request string `json:"request"`
	}
	buildBody struct {
		Request   string `json:"request"`
		OutputDir string `json:"output_dir"`
	}
	projectBody struct {
		ProjectPath string `json:"project_path"`
		Description string `json:"description"`
	}
	refactorBody struct {
		FilePath  string `json:"file_path"`
		Objective string `json:"objective"`
	}
	askBody struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}
	learnBody struct {
		Content string   `json:"content"`
		Type    string   `json:"type"`
		Tags    []string `json:"tags"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	var body requestBody
	if !decode(w, r, &body) || !required(w, "request", body.Request) {
		return
	}
	writeJSON(w, http.StatusOK, s.agent.ProcessRequest(r.Context(), body.Request))
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var body buildBody
	if !decode(w, r, &body) || !required(w, "request", body.Request) {
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Build(r.Context(), body.Request, body.OutputDir))
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	var body projectBody
	if !decode(w, r, &body) || !required(w, "project_path", body.ProjectPath) || !required(w, "description", body.Description) {
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Fix(r.Context(), body.ProjectPath, body.Description))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body projectBody
	if !decode(w, r, &body) || !required(w, "project_path", body.ProjectPath) {
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Analyze(body.ProjectPath))
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var body projectBody
	if !decode(w, r, &body) || !required(w, "project_path", body.ProjectPath) || !required(w, "description", body.Description) {
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Diagnose(r.Context(), body.ProjectPath, body.Description))
}

func (s *Server) handleRefactor(w http.ResponseWriter, r *http.Request) {
	var body refactorBody
	if !decode(w, r, &body) || !required(w, "file_path", body.FilePath) {
		return
	}
	writeJSON(w, http.StatusOK, s.agent.Refactor(r.Context(), body.FilePath, body.Objective))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body askBody
	if !decode(w, r, &body) || !required(w, "question", body.Question) {
		return
	}
	answer, err := s.agent.Ask(r.Context(), body.Question, body.Context)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "answer": answer})
}

// handleAskStream streams an answer as server-sent events.
func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	tokens, err := s.agent.AskStream(r.Context(), question, r.URL.Query().Get("context"))
	if err != nil {
		sendSSE(w, flusher, map[string]any{"error": err.Error(), "done": true})
		return
	}

	for token := range tokens {
		if token.Error != nil {
			sendSSE(w, flusher, map[string]any{"error": token.Error.Error(), "done": true})
			return
		}
		sendSSE(w, flusher, map[string]any{"content": token.Content, "done": token.Done})
	}
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var body learnBody
	if !decode(w, r, &body) || !required(w, "content", body.Content) {
		return
	}
	id, err := s.agent.Learn(r.Context(), body.Content, body.Type, body.Tags)
	if errors.Is(err, entities.ErrModuleDisabled) {
		writeError(w, http.StatusServiceUnavailable, entities.MsgLearnerDisabled)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.agent.Reindex(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

// decode reads a JSON body. Other content types are refused so that plain
// HTML forms cannot drive the API.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func required(w http.ResponseWriter, field, value string) bool {
	if value == "" {
		writeError(w, http.StatusBadRequest, field+" is required")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && (s.origins[origin] || s.origins["*"])
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
