package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/soyeahso/meshbuilder/internal/service"
)

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// agentBody is decoded loosely so that non-string entries reach validation
// instead of failing the decode.
type agentBody struct {
	Solutions  any `json:"solutions"`
	Priorities any `json:"priorities"`
}

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/solutions", s.handleSolutions)
	mux.HandleFunc("POST /api/agent", s.handleAgent)
	mux.HandleFunc("GET /api/mesh", s.handleWebSocket)

	mux.Handle("/", s.fallbackHandler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSolutions(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, `Query parameter "company" is required.`)
		return
	}

	d, err := s.backend.Discover(r.Context(), company)
	if err != nil {
		s.log.Error().Err(err).Str("company", company).Msg("error fetching solutions or context")
		writeError(w, http.StatusInternalServerError, errorMessage(err, "Failed to fetch solutions."))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	}

	var body agentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	priorities, _ := body.Priorities.(string)
	concept, err := s.backend.GenerateAgent(r.Context(), service.AgentRequest{
		Solutions:  solutionNames(body.Solutions),
		Priorities: priorities,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("error generating agent concept")
		writeError(w, http.StatusInternalServerError, errorMessage(err, "Failed to generate agent concept."))
		return
	}
	writeJSON(w, http.StatusOK, concept)
}

// solutionNames converts a decoded solutions value to names. Entries that
// are not strings become empty names, and a non-array becomes nil.
func solutionNames(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	names := make([]string, len(list))
	for i, item := range list {
		names[i], _ = item.(string)
	}
	return names
}

// fallbackHandler serves the built client when its directory exists and a
// JSON 404 otherwise. API paths always get the JSON 404.
func (s *Server) fallbackHandler() http.Handler {
	dir := s.cfg.Server.StaticDir
	if dir == "" {
		return http.HandlerFunc(handleNotFound)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.log.Warn().Str("dir", dir).Msg("static assets not found, build the client to enable production mode")
		return http.HandlerFunc(handleNotFound)
	}

	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			handleNotFound(w, r)
			return
		}
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); err != nil {
			http.ServeFile(w, r, index)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
