// Package server exposes the question-answering pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"docqa/internal/errs"
	"docqa/internal/models"
)

// Runner executes one document question-answering request.
type Runner interface {
	Run(ctx context.Context, url string, questions []string) ([]string, error)
}

type Server struct {
	runner Runner
	apiKey string
	log    zerolog.Logger
}

func New(runner Runner, apiKey string, log zerolog.Logger) *Server {
	return &Server{runner: runner, apiKey: apiKey, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/hackrx/run", s.handleRun)
	})
	return r
}

// authenticate rejects the request before any pipeline work happens. An
// unset server key is a configuration error, not an auth failure.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.writeError(w, r, errs.New(errs.KindConfig, "API key not configured"))
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			s.writeError(w, r, errs.New(errs.KindAuth, "missing or invalid authorization header"))
			return
		}
		if strings.TrimPrefix(auth, "Bearer ") != s.apiKey {
			s.writeError(w, r, errs.New(errs.KindAuth, "invalid API key"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req models.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: models.ErrorBody{
			Kind:    "bad_request",
			Message: "invalid JSON body",
		}})
		return
	}
	if req.Documents == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: models.ErrorBody{
			Kind:    "bad_request",
			Message: "documents URL is required",
		}})
		return
	}

	answers, err := s.runner.Run(r.Context(), req.Documents, req.Questions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RunResponse{Answers: answers})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	hlog.FromRequest(r).Error().Err(err).Str("kind", string(kind)).Int("status", status).Msg("request failed")
	writeJSON(w, status, models.ErrorResponse{Error: models.ErrorBody{
		Kind:     string(kind),
		Message:  err.Error(),
		Question: errs.QuestionOf(err),
	}})
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindAuth:
		return http.StatusUnauthorized
	case errs.KindFetch, errs.KindExtract, errs.KindAnswer:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
