// Package engine runs chart queries and natural-language questions against
// loaded seasons. The CLI, the MCP server and the HTTP API all go through it.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/nlquery"
	"github.com/blackwell-systems/courtside/internal/query"
)

// Source loads a derived season. *feed.Loader and *feed.Static implement it.
type Source interface {
	LoadFrame(ctx context.Context, season string) (*metrics.Frame, *feed.Snapshot, error)
}

// Service binds a Source to the query runner.
type Service struct {
	src    Source
	runner *query.Runner
	season string
	log    zerolog.Logger
}

// New returns a Service that answers for defaultSeason when a call names none.
func New(src Source, defaultSeason string, log zerolog.Logger) *Service {
	return &Service{
		src:    src,
		runner: query.NewRunner(log),
		season: defaultSeason,
		log:    log.With().Str("component", "engine").Logger(),
	}
}

// DefaultSeason returns the season used when none is given.
func (s *Service) DefaultSeason() string {
	return s.season
}

func (s *Service) pick(season string) string {
	if season = strings.TrimSpace(season); season != "" {
		return season
	}
	return s.season
}

// Response is a query result labelled with the season it ran on.
type Response struct {
	Season string
	Stale  bool
	Result *query.Result
}

// MarshalJSON encodes the response as {season, stale, spec, explanation, rows}.
func (r *Response) MarshalJSON() ([]byte, error) {
	res := r.Result
	if res == nil {
		res = &query.Result{}
	}
	table := res.Table
	if table == nil {
		table = &metrics.Table{}
	}
	return json.Marshal(struct {
		Season      string          `json:"season"`
		Stale       bool            `json:"stale,omitempty"`
		Spec        query.ChartSpec `json:"spec"`
		Explanation string          `json:"explanation"`
		Rows        *metrics.Table  `json:"rows"`
	}{r.Season, r.Stale, res.Spec, res.Explanation, table})
}

// Query validates d and runs it. Validation happens before any data is
// loaded, so an invalid dictionary never triggers a fetch.
func (s *Service) Query(ctx context.Context, d map[string]any, season string) (*Response, error) {
	spec, err := query.FromMap(d)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, spec, season)
}

// Run executes a validated spec on a season.
func (s *Service) Run(ctx context.Context, spec query.ChartSpec, season string) (*Response, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	season = s.pick(season)
	f, snap, err := s.src.LoadFrame(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", season, err)
	}
	res, err := s.runner.Run(f, spec)
	if err != nil {
		return nil, err
	}
	return &Response{Season: snap.Season, Stale: snap.Stale, Result: res}, nil
}

// Answer is the outcome of a natural-language question. Result is set only
// when the question translated into a query.
type Answer struct {
	Question string         `json:"question"`
	Outcome  nlquery.Kind   `json:"outcome"`
	Message  string         `json:"message,omitempty"`
	Query    map[string]any `json:"query,omitempty"`
	Result   *Response      `json:"result,omitempty"`
}

// Ask translates a question and runs it when it is a supported query. A
// season named in the question wins over the default but not over an
// explicit season argument.
func (s *Service) Ask(ctx context.Context, question, season string) (*Answer, error) {
	out := nlquery.Parse(question)
	ans := &Answer{Question: question, Outcome: out.Kind, Message: out.Message, Query: out.Query}
	s.log.Debug().Str("question", question).Stringer("outcome", out.Kind).Msg("parsed question")
	if !out.IsQuery() {
		return ans, nil
	}
	if strings.TrimSpace(season) == "" {
		season = out.Season
	}
	resp, err := s.Query(ctx, out.Query, season)
	if err != nil {
		return nil, err
	}
	ans.Result = resp
	return ans, nil
}

// SeasonInfo loads a season and summarises it.
func (s *Service) SeasonInfo(ctx context.Context, season string) (*feed.SeasonInfo, error) {
	season = s.pick(season)
	f, snap, err := s.src.LoadFrame(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", season, err)
	}
	info := feed.Describe(snap, f)
	return &info, nil
}
