package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

var apiHeaders = []string{
	"SEASON_ID", "TEAM_ID", "TEAM_ABBREVIATION", "TEAM_NAME", "GAME_ID", "GAME_DATE", "MATCHUP", "WL", "MIN",
	"FGM", "FGA", "FG3M", "FG3A", "FG3_PCT", "FTM", "FTA", "OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV",
	"PF", "PTS", "PLUS_MINUS", "VIDEO_AVAILABLE",
}

func apiRow(team, game, date, wl string, pts int) []any {
	return []any{
		"22024", 1610612700, team, team + " Team", game, date, team + " game", wl, 240,
		40, 88, 12, 34, 0.353, 18, 22, 10, 33, 43, 24, 7, 5, 13,
		19, pts, nil, 1,
	}
}

func gameLogBody(rows ...[]any) map[string]any {
	return map[string]any{
		"resource": "leaguegamelog",
		"resultSets": []map[string]any{{
			"name":    "LeagueGameLog",
			"headers": apiHeaders,
			"rowSet":  rows,
		}},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *StatsClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewStatsClient(ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestStatsClientFetchGameLog(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gameLogBody(
			apiRow("BOS", "0022400061", "2024-10-22", "W", 132),
			apiRow("NYK", "0022400061", "2024-10-22", "L", 109),
		))
	})

	log, err := client.FetchGameLog(context.Background(), "2024-25", "")
	require.NoError(t, err)
	require.Len(t, log.Rows, 2)

	require.NotNil(t, got)
	assert.Equal(t, "/leaguegamelog", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "00", q.Get("LeagueID"))
	assert.Equal(t, "T", q.Get("PlayerOrTeam"))
	assert.Equal(t, "2024-25", q.Get("Season"))
	assert.Equal(t, "Regular Season", q.Get("SeasonType"))
	assert.Equal(t, "DESC", q.Get("Direction"))
	assert.Equal(t, "DATE", q.Get("Sorter"))
	assert.Equal(t, "https://www.nba.com/", got.Header.Get("Referer"))
	assert.Contains(t, got.Header.Get("User-Agent"), "Mozilla")

	bos := log.Rows[0]
	assert.Equal(t, "BOS", bos.TeamAbbreviation)
	assert.Equal(t, 132, bos.PTS)
	assert.Equal(t, 13, bos.TOV)
	assert.Equal(t, 240.0, bos.MIN)
	assert.Equal(t, int64(1610612700), bos.TeamID)
	assert.True(t, log.Columns.Has(metrics.ColFTA))
	assert.False(t, log.Columns.Has(metrics.Column("FG3_PCT")))
}

func TestStatsClientUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	})
	_, err := client.FetchGameLog(context.Background(), "2024-25", "Regular Season")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, err.Error(), "403")
}

func TestStatsClientBadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})
	_, err := client.FetchGameLog(context.Background(), "2024-25", "")
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestStatsClientNoRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(gameLogBody())
	})
	_, err := client.FetchGameLog(context.Background(), "2030-31", "")
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestStatsClientDelayHonoursContext(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewStatsClient(ClientConfig{BaseURL: srv.URL, RequestDelay: time.Hour}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchGameLog(ctx, "2024-25", "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestStatsClientSource(t *testing.T) {
	c := NewStatsClient(ClientConfig{}, zerolog.Nop())
	assert.Equal(t, "stats.nba.com", c.Source())
}

func TestDecodeSingleResultSet(t *testing.T) {
	body, err := json.Marshal(map[string]any{
		"resultSet": map[string]any{
			"headers": []string{"GAME_ID", "TEAM_ABBREVIATION", "GAME_DATE", "PTS"},
			"rowSet":  [][]any{{"G1", "BOS", "2024-10-22T00:00:00", 101}},
		},
	})
	require.NoError(t, err)

	log, err := decodeGameLog(body)
	require.NoError(t, err)
	require.Len(t, log.Rows, 1)
	assert.Equal(t, 101, log.Rows[0].PTS)
}
