package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// Stats API defaults.
const (
	DefaultBaseURL      = "https://stats.nba.com/stats"
	DefaultTimeout      = 60 * time.Second
	DefaultRequestDelay = 600 * time.Millisecond
	DefaultSeasonType   = "Regular Season"
)

// The endpoint rejects requests that do not look like they came from nba.com.
var browserHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Origin":             "https://www.nba.com",
	"Referer":            "https://www.nba.com/",
	"Connection":         "keep-alive",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

// ClientConfig configures a StatsClient. Zero values take the defaults.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RequestDelay time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// StatsClient reads team game logs from the stats.nba.com LeagueGameLog
// endpoint.
type StatsClient struct {
	baseURL string
	http    *http.Client
	delay   time.Duration
	log     zerolog.Logger
}

// NewStatsClient returns a client for cfg.
func NewStatsClient(cfg ClientConfig, log zerolog.Logger) *StatsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = 0
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &StatsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		delay:   cfg.RequestDelay,
		log:     log.With().Str("component", "statsapi").Logger(),
	}
}

// Source names the host the client reads from.
func (c *StatsClient) Source() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Host == "" {
		return c.baseURL
	}
	return u.Host
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type gameLogResponse struct {
	ResultSets []resultSet `json:"resultSets"`
	// a few endpoints return a single object under this key
	ResultSet *resultSet `json:"resultSet"`
}

// FetchGameLog downloads every team game row of a season.
func (c *StatsClient) FetchGameLog(ctx context.Context, season, seasonType string) (metrics.GameLog, error) {
	if seasonType == "" {
		seasonType = DefaultSeasonType
	}
	if err := c.wait(ctx); err != nil {
		return metrics.GameLog{}, err
	}

	params := url.Values{
		"LeagueID":     {"00"},
		"PlayerOrTeam": {"T"},
		"Season":       {season},
		"SeasonType":   {seasonType},
		"Direction":    {"DESC"},
		"Sorter":       {"DATE"},
	}
	endpoint := c.baseURL + "/leaguegamelog?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return metrics.GameLog{}, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return metrics.GameLog{}, fmt.Errorf("%w: sending request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return metrics.GameLog{}, fmt.Errorf("%w: reading response: %w", ErrUpstream, err)
	}
	c.log.Debug().
		Str("season", season).
		Str("season_type", seasonType).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("leaguegamelog")

	if resp.StatusCode != http.StatusOK {
		return metrics.GameLog{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(body))
	}

	log, err := decodeGameLog(body)
	if err != nil {
		return metrics.GameLog{}, err
	}
	if len(log.Rows) == 0 {
		return metrics.GameLog{}, fmt.Errorf("%w for %s %s", ErrNoData, season, seasonType)
	}
	return log, nil
}

// wait sleeps for the request delay unless ctx ends first.
func (c *StatsClient) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// decodeGameLog reads the first result set's headers and rows.
func decodeGameLog(body []byte) (metrics.GameLog, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp gameLogResponse
	if err := dec.Decode(&resp); err != nil {
		return metrics.GameLog{}, fmt.Errorf("%w: decoding response: %w", ErrUpstream, err)
	}
	sets := resp.ResultSets
	if len(sets) == 0 && resp.ResultSet != nil {
		sets = []resultSet{*resp.ResultSet}
	}
	if len(sets) == 0 {
		return metrics.GameLog{}, fmt.Errorf("%w: response has no result sets", ErrUpstream)
	}

	h := readHeader(sets[0].Headers)
	log := metrics.GameLog{Columns: h.columns, Rows: make([]metrics.TeamGameRow, 0, len(sets[0].RowSet))}
	record := make([]string, len(sets[0].Headers))
	for i, cells := range sets[0].RowSet {
		for j := range record {
			record[j] = ""
			if j < len(cells) {
				record[j] = cellString(cells[j])
			}
		}
		r, err := h.decode(record, i+1)
		if err != nil {
			return metrics.GameLog{}, err
		}
		log.Rows = append(log.Rows, r)
	}
	return log, nil
}

func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
