package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/query"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps an engine error to an HTTP status.
func statusFor(err error) int {
	var ve *query.ValidationError
	var dse *metrics.DataShapeError
	switch {
	case errors.As(err, &ve), errors.Is(err, feed.ErrInvalidSeason):
		return http.StatusBadRequest
	case errors.As(err, &dse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, feed.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, feed.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var ve *query.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	s.writeJSON(w, status, body)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// decodeBody reads a JSON object from the request body.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// handleHealth reports liveness and the default season.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"season": s.svc.DefaultSeason(),
	})
}

// handleMetrics returns the metric catalog and the accepted windows.
// GET /api/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	windows := make([]string, 0, len(metrics.Windows))
	for _, win := range metrics.Windows {
		windows = append(windows, string(win))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics.All(),
		"windows": windows,
	})
}

// handleQuery runs a query dictionary. The body is either the dictionary
// itself or {"query": {...}, "season": "..."}; ?season= also selects the
// season.
// POST /api/query
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, err.Error())
		return
	}

	d := body
	season := r.URL.Query().Get("season")
	if inner, ok := body["query"]; ok {
		m, ok := inner.(map[string]any)
		if !ok {
			s.badRequest(w, "query must be an object")
			return
		}
		d = m
		if v, ok := body["season"].(string); ok && v != "" {
			season = v
		}
	}

	resp, err := s.svc.Query(r.Context(), d, season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleAsk answers a plain-English question.
// POST /api/ask
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
		Season   string `json:"season"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		s.badRequest(w, "question is required")
		return
	}

	ans, err := s.svc.Ask(r.Context(), body.Question, body.Season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ans)
}

// handleSeasons lists the seasons the feed offers.
// GET /api/seasons
func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"default": s.svc.DefaultSeason(),
		"seasons": feed.KnownSeasons(s.now()),
	})
}

// handleSeasonInfo summarises one season.
// GET /api/seasons/{season}
func (s *Server) handleSeasonInfo(w http.ResponseWriter, r *http.Request) {
	season := chi.URLParam(r, "season")
	info, err := s.svc.SeasonInfo(r.Context(), season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}
