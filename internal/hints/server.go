// Package hints implements the backend record services fronted by the
// gateway. Each service performs a single parameterized write against the
// chatbot_hints table and shapes every response as {success, ...} JSON.
// The services trust the gateway's identity headers instead of verifying
// tokens; the gateway is their only entry point.
package hints

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hintwise/hintgate/internal/db/models"
	"github.com/hintwise/hintgate/internal/proxy"
	"github.com/hintwise/hintgate/internal/repository"
)

// Mode selects which single-purpose service a hintsvc process runs as.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
	ModeDelete Mode = "delete"
)

// ParseMode validates a --mode flag value.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeCreate, ModeUpdate, ModeDelete:
		return Mode(raw), nil
	}
	return "", fmt.Errorf("unknown mode %q (want create, update or delete)", raw)
}

// Server exposes the hint endpoints for one mode.
type Server struct {
	mode Mode
	repo repository.HintRepository
}

// NewServer creates a hint service for the given mode.
func NewServer(mode Mode, repo repository.HintRepository) *Server {
	return &Server{mode: mode, repo: repo}
}

// Router assembles the chi router for the server's mode. Route shapes match
// what the gateway forwards: the record services receive their own prefix
// unstripped.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(logGatewayIdentity)

	r.Get("/health", s.handleHealth)

	switch s.mode {
	case ModeCreate:
		r.Post("/create", s.handleCreate)
	case ModeUpdate:
		r.Get("/update/health", s.handleHealth)
		r.Put("/update/api/hints/{id}", s.handleUpdate)
		r.Put("/api/hints/{id}", s.handleUpdate)
	case ModeDelete:
		r.Get("/delete/health", s.handleHealth)
		r.Delete("/delete/api/hints/{id}", s.handleDelete)
	}

	return r
}

// logGatewayIdentity surfaces the trust headers injected by the dispatcher
// in the service logs. The headers are informational here; enforcement
// already happened at the gateway.
func logGatewayIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pid := r.Header.Get(proxy.HeaderUserPID); pid != "" {
			log.Printf("request %s %s on behalf of %s (%s)",
				r.Method, r.URL.Path, pid, r.Header.Get(proxy.HeaderUserRole))
		}
		next.ServeHTTP(w, r)
	})
}

type hintRequest struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": string(s.mode),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req hintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Both question and reply are required")
		return
	}
	if req.Question == "" || req.Reply == "" {
		respondError(w, http.StatusBadRequest, "Both question and reply are required")
		return
	}
	if len(req.Question) > models.MaxHintFieldLength || len(req.Reply) > models.MaxHintFieldLength {
		respondError(w, http.StatusBadRequest, "Question and reply must be 100 characters or less")
		return
	}

	hint := &models.Hint{Question: req.Question, Reply: req.Reply}
	if err := s.repo.Create(r.Context(), hint); err != nil {
		log.Printf("create hint: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Printf("created hint id=%d question=%q", hint.ID, hint.Question)
	respond(w, http.StatusCreated, map[string]any{
		"success":  true,
		"insertId": hint.ID,
		"message":  "Chatbot hint created successfully",
		"data":     hint,
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := hintID(w, r)
	if !ok {
		return
	}

	var req hintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Question and reply are required")
		return
	}
	if req.Question == "" || req.Reply == "" {
		respondError(w, http.StatusBadRequest, "Question and reply are required")
		return
	}

	affected, err := s.repo.Update(r.Context(), id, req.Question, req.Reply)
	if err != nil {
		log.Printf("update hint %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "Hint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"success":      true,
		"affectedRows": affected,
		"message":      "Hint updated successfully",
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := hintID(w, r)
	if !ok {
		return
	}

	affected, err := s.repo.Delete(r.Context(), id)
	if err != nil {
		log.Printf("delete hint %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected == 0 {
		respondError(w, http.StatusNotFound, "Hint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Hint deleted successfully",
		"affectedRows": affected,
	})
}

// hintID parses the {id} route parameter, rejecting non-integer values.
func hintID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID format, must be an integer")
		return 0, false
	}
	return id, true
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
