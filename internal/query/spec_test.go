package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

func TestFromMapDefaults(t *testing.T) {
	spec, err := FromMap(map[string]any{"chart_type": "leaderboard"})
	require.NoError(t, err)
	assert.Equal(t, ChartLeaderboard, spec.Type())
	assert.Equal(t, EntityTeam, spec.Entity())
	assert.Equal(t, metrics.Season, spec.Window())
	assert.Equal(t, Leaderboard{Metric: metrics.NetRtg, TopN: 10, Order: Desc}, spec.Chart())

	spec, err = FromMap(map[string]any{"chart_type": "scatter", "window": "LAST_10"})
	require.NoError(t, err)
	assert.Equal(t, metrics.Last10, spec.Window())
	assert.Equal(t, Scatter{X: metrics.ORtg, Y: metrics.DRtg}, spec.Chart())
}

func TestFromMapNullMeansAbsent(t *testing.T) {
	spec, err := FromMap(map[string]any{"chart_type": "leaderboard", "window": nil, "metric": nil, "top_n": nil})
	require.NoError(t, err)
	assert.Equal(t, metrics.Season, spec.Window())
	assert.Equal(t, Leaderboard{Metric: metrics.NetRtg, TopN: 10, Order: Desc}, spec.Chart())
}

func TestDefaultOrder(t *testing.T) {
	tests := []struct {
		metric metrics.Metric
		want   Order
	}{
		{metrics.NetRtg, Desc},
		{metrics.ORtg, Desc},
		{metrics.DRtg, Asc},
		{metrics.TovRate, Asc},
		{metrics.PPG, Desc},
		{metrics.Pace, Desc},
	}
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultOrder(tt.metric))

			spec, err := FromMap(map[string]any{"chart_type": "leaderboard", "metric": string(tt.metric)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Chart().(Leaderboard).Order)
		})
	}
}

func TestFromMapExplicitOrderWins(t *testing.T) {
	spec, err := FromMap(map[string]any{"chart_type": "leaderboard", "metric": "DRtg", "order": "DESC"})
	require.NoError(t, err)
	assert.Equal(t, Desc, spec.Chart().(Leaderboard).Order)
}

func TestFromMapTopNForms(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 3, 3},
		{"int64", int64(4), 4},
		{"float64", float64(5), 5},
		{"json number", json.Number("6"), 6},
		{"integral json number", json.Number("5.0"), 5},
		{"string", " 7 ", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := FromMap(map[string]any{"chart_type": "leaderboard", "top_n": tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Chart().(Leaderboard).TopN)
		})
	}
}

func TestFromMapTeams(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"strings", []string{"bos", "MIA"}, []string{"BOS", "MIA"}},
		{"any list", []any{"Bos", " nyk "}, []string{"BOS", "NYK"}},
		{"comma string", "lal, gsw,,den", []string{"LAL", "GSW", "DEN"}},
		{"duplicates", []string{"BOS", "bos", "MIA"}, []string{"BOS", "MIA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := FromMap(map[string]any{"chart_type": "compare", "teams": tt.in})
			require.NoError(t, err)
			assert.Equal(t, Compare{Teams: tt.want}, spec.Chart())
		})
	}
}

func TestFromMapRejects(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]any
		field string
	}{
		{"missing chart type", map[string]any{}, "chart_type"},
		{"unknown chart type", map[string]any{"chart_type": "pie"}, "chart_type"},
		{"chart type not a string", map[string]any{"chart_type": 3}, "chart_type"},
		{"player entity", map[string]any{"chart_type": "scatter", "entity": "player"}, "entity"},
		{"bad window", map[string]any{"chart_type": "scatter", "window": "MONTH"}, "window"},
		{"numeric window", map[string]any{"chart_type": "scatter", "window": 10}, "window"},
		{"fake metric", map[string]any{"chart_type": "leaderboard", "metric": "FAKE_METRIC", "top_n": 5}, "metric"},
		{"wrong case metric", map[string]any{"chart_type": "leaderboard", "metric": "efg"}, "metric"},
		{"zero top_n", map[string]any{"chart_type": "leaderboard", "top_n": 0}, "top_n"},
		{"negative top_n", map[string]any{"chart_type": "leaderboard", "top_n": -3}, "top_n"},
		{"fractional top_n", map[string]any{"chart_type": "leaderboard", "top_n": 2.5}, "top_n"},
		{"fractional json top_n", map[string]any{"chart_type": "leaderboard", "top_n": json.Number("2.5")}, "top_n"},
		{"padded metric", map[string]any{"chart_type": "leaderboard", "metric": " ORtg"}, "metric"},
		{"metric with newline", map[string]any{"chart_type": "leaderboard", "metric": "DRtg\n"}, "metric"},
		{"padded x metric", map[string]any{"chart_type": "scatter", "x_metric": "eFG ", "y_metric": "TS"}, "x_metric"},
		{"word top_n", map[string]any{"chart_type": "leaderboard", "top_n": "five"}, "top_n"},
		{"bad order", map[string]any{"chart_type": "leaderboard", "order": "up"}, "order"},
		{"bad x metric", map[string]any{"chart_type": "scatter", "x_metric": "REB"}, "x_metric"},
		{"bad y metric", map[string]any{"chart_type": "scatter", "y_metric": 7}, "y_metric"},
		{"no teams", map[string]any{"chart_type": "compare"}, "teams"},
		{"one team", map[string]any{"chart_type": "compare", "teams": []string{"BOS"}}, "teams"},
		{"same team twice", map[string]any{"chart_type": "compare", "teams": []string{"BOS", "bos"}}, "teams"},
		{"teams not strings", map[string]any{"chart_type": "compare", "teams": []any{"BOS", 1}}, "teams"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := FromMap(tt.in)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, ChartSpec{}, spec)
		})
	}
}

func TestFakeMetricErrorNamesMetric(t *testing.T) {
	_, err := FromMap(map[string]any{"chart_type": "leaderboard", "window": "SEASON", "metric": "FAKE_METRIC", "top_n": 5})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "FAKE_METRIC")
}

func TestMetricAllowListClosure(t *testing.T) {
	for _, m := range metrics.Names() {
		_, err := FromMap(map[string]any{"chart_type": "leaderboard", "metric": string(m)})
		assert.NoError(t, err, "leaderboard %s", m)
		_, err = FromMap(map[string]any{"chart_type": "scatter", "x_metric": string(m), "y_metric": string(m)})
		assert.NoError(t, err, "scatter %s", m)
	}
	for _, name := range []string{"", "ortg", "NET RTG", "PTS", "eFG%", "TS "} {
		_, err := FromMap(map[string]any{"chart_type": "leaderboard", "metric": name})
		if name == "TS " {
			// surrounding whitespace is trimmed
			assert.NoError(t, err)
			continue
		}
		assert.True(t, IsValidationError(err), "metric %q", name)
	}
}

func TestZeroSpecIsInvalid(t *testing.T) {
	err := ChartSpec{}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestSpecRoundTrip(t *testing.T) {
	inputs := []map[string]any{
		{"chart_type": "leaderboard", "metric": "DRtg", "top_n": 3, "window": "l5"},
		{"chart_type": "scatter", "x_metric": "eFG", "y_metric": "TS"},
		{"chart_type": "compare", "teams": "bos,mia", "window": "last 20"},
	}
	for _, in := range inputs {
		spec, err := FromMap(in)
		require.NoError(t, err)
		again, err := FromMap(spec.ToMap())
		require.NoError(t, err)
		assert.Equal(t, spec, again)
	}
}

func TestSpecMarshalJSON(t *testing.T) {
	spec, err := FromMap(map[string]any{"chart_type": "leaderboard", "metric": "PPG", "top_n": 3})
	require.NoError(t, err)

	b, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"chart_type":"leaderboard","entity":"team","window":"SEASON","metric":"PPG","top_n":3,"order":"desc"}`, string(b))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	again, err := FromMap(decoded)
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}

func TestCompareTeamsCopied(t *testing.T) {
	spec, err := FromMap(map[string]any{"chart_type": "compare", "teams": []string{"BOS", "MIA"}})
	require.NoError(t, err)

	c := spec.Chart().(Compare)
	c.Teams[0] = "XXX"
	assert.Equal(t, []string{"BOS", "MIA"}, spec.Chart().(Compare).Teams)
}
