package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// MetricsResult lists the supported metrics.
type MetricsResult struct {
	Metrics []metrics.Info `json:"metrics"`
	Windows []string       `json:"windows"`
}

var (
	runQuerySchema = json.RawMessage(`{"type":"object","properties":{` +
		`"query":{"type":"object","description":"Chart query: chart_type (leaderboard|scatter|compare), window (SEASON|LAST_5|LAST_10|LAST_20; other LAST_N values snap to one of these), metric, top_n, order (asc|desc), x_metric, y_metric, teams"},` +
		`"season":{"type":"string","description":"Season label such as 2024-25 (default: current season)"}},` +
		`"required":["query"],"additionalProperties":false}`)
	askSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"question":{"type":"string","description":"Plain-English question about team metrics"},` +
		`"season":{"type":"string","description":"Season label such as 2024-25 (overrides a season named in the question)"}},` +
		`"required":["question"],"additionalProperties":false}`)
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	seasonSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"season":{"type":"string","description":"Season label such as 2024-25 (default: current season)"}},` +
		`"additionalProperties":false}`)
)

// addTools registers all four MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "run_query",
		Description: "Run a team metrics chart query (leaderboard, scatter or compare) and return the result table with an explanation.",
		InputSchema: runQuerySchema,
		Handler:     s.handleRunQuery,
	})
	s.registerTool(toolDef{
		Name:        "ask",
		Description: "Answer a plain-English question about NBA team metrics, or explain why it cannot be answered.",
		InputSchema: askSchema,
		Handler:     s.handleAsk,
	})
	s.registerTool(toolDef{
		Name:        "list_metrics",
		Description: "List the supported team metrics with definitions and the accepted windows.",
		InputSchema: noArgsSchema,
		Handler:     s.handleListMetrics,
	})
	s.registerTool(toolDef{
		Name:        "season_info",
		Description: "Teams, game count and date range of the loaded season.",
		InputSchema: seasonSchema,
		Handler:     s.handleSeasonInfo,
	})
}

// decodeArgs unmarshals tool arguments; empty arguments leave v unchanged.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleRunQuery(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Query  map[string]any `json:"query"`
		Season string         `json:"season"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if params.Query == nil {
		return nil, errors.New("query is required")
	}
	return s.svc.Query(ctx, params.Query, params.Season)
}

func (s *Server) handleAsk(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Question string `json:"question"`
		Season   string `json:"season"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Question) == "" {
		return nil, errors.New("question is required")
	}
	return s.svc.Ask(ctx, params.Question, params.Season)
}

func (s *Server) handleListMetrics(_ context.Context, _ json.RawMessage) (any, error) {
	windows := make([]string, 0, len(metrics.Windows))
	for _, w := range metrics.Windows {
		windows = append(windows, string(w))
	}
	return MetricsResult{Metrics: metrics.All(), Windows: windows}, nil
}

func (s *Server) handleSeasonInfo(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Season string `json:"season"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	return s.svc.SeasonInfo(ctx, params.Season)
}
