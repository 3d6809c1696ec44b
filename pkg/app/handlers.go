package app

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"

	"github.com/relayops/identity-actions/pkg/action"
	"github.com/relayops/identity-actions/pkg/fault"
)

type invokeRequest struct {
	Params action.Params `json:"params"`
}

type errorEnvelope struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorRequest struct {
	Error errorEnvelope `json:"error"`
}

type invokeResponse struct {
	InvocationID string         `json:"invocationId"`
	Result       *action.Result `json:"result,omitempty"`
	Error        *errorEnvelope `json:"error,omitempty"`
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(*s.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, _ int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Dur("duration", duration).
			Msg("request")
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/actions/remove-user-from-group", func(r chi.Router) {
		r.Post("/invoke", s.handleInvoke)
		r.Post("/error", s.handleError)
		r.Post("/halt", s.handleHalt)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	invocationID := uuid.NewString()
	logger := hlog.FromRequest(r).With().Str("invocation_id", invocationID).Logger()

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeClassified(w, invocationID, fault.Fatal("Invalid request body: %s", err.Error()))
		return
	}

	if req.Params.Region == "" && s.cfg.Action.DefaultRegion != "" {
		req.Params.Region = s.cfg.Action.DefaultRegion
	}

	result, err := s.action.Invoke(r.Context(), req.Params, s.cfg.Secrets.ActionSecrets())
	if err != nil {
		classified, ok := fault.FromError(err)
		if !ok {
			// Invoke guarantees classification; keep the boundary anyway.
			classified = fault.Fatal("Unexpected error: %s", err.Error())
		}

		logger.Error().Str("error", classified.Message).Bool("retryable", classified.Retryable).Msg("invoke failed")
		s.writeClassified(w, invocationID, classified)

		return
	}

	s.writeJSON(w, http.StatusOK, invokeResponse{InvocationID: invocationID, Result: result})
}

// handleError re-raises a previously reported failure unchanged so the
// framework owns all retry and backoff policy.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	invocationID := uuid.NewString()

	var req errorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeClassified(w, invocationID, fault.Fatal("Invalid request body: %s", err.Error()))
		return
	}

	in := &fault.Error{Message: req.Error.Message, Retryable: req.Error.Retryable}
	out := s.action.Error(r.Context(), in)

	classified, ok := fault.FromError(out)
	if !ok {
		classified = fault.Fatal("%s", out.Error())
	}

	s.writeClassified(w, invocationID, classified)
}

func (s *Server) handleHalt(w http.ResponseWriter, r *http.Request) {
	var params action.HaltParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	summary := s.action.Halt(r.Context(), params)
	s.writeJSON(w, http.StatusOK, summary)
}

// writeClassified maps the two-kind taxonomy onto status codes: retryable
// failures answer 503 with a Retry-After hint, fatal failures answer 422.
func (s *Server) writeClassified(w http.ResponseWriter, invocationID string, classified *fault.Error) {
	status := http.StatusUnprocessableEntity
	if classified.Retryable {
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "30")
	}

	s.writeJSON(w, status, invokeResponse{
		InvocationID: invocationID,
		Error: &errorEnvelope{
			Message:   classified.Message,
			Retryable: classified.Retryable,
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}
