package server

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/metrics"
)

type countingFetcher struct {
	calls atomic.Int32
}

func (f *countingFetcher) Source() string { return "test" }

func (f *countingFetcher) FetchGameLog(ctx context.Context, season, seasonType string) (metrics.GameLog, error) {
	f.calls.Add(1)
	return roundRobin("BOS", "NYK"), nil
}

type funcJob struct {
	runs atomic.Int32
}

func (j *funcJob) Name() string { return "func" }
func (j *funcJob) Run() error {
	j.runs.Add(1)
	return nil
}

func TestSchedulerAddJob(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	job := &funcJob{}

	require.NoError(t, s.AddJob("@every 1h", job))
	require.NoError(t, s.AddJob("0 6 * * *", job))
	assert.Equal(t, 2, s.Len())

	err := s.AddJob("every hour", job)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "every hour")

	s.Start()
	s.Stop()

	require.NoError(t, s.RunNow(job))
	assert.EqualValues(t, 1, job.runs.Load())
}

func TestRefreshJob(t *testing.T) {
	f := &countingFetcher{}
	loader := feed.NewLoader(nil, f, feed.LoaderConfig{}, zerolog.Nop())

	job := &RefreshJob{Loader: loader, Seasons: []string{"2024-25", "2023-24"}, Log: zerolog.Nop()}
	require.NoError(t, job.Run())
	assert.EqualValues(t, 2, f.calls.Load())
	assert.Equal(t, "refresh_seasons", job.Name())

	job.Seasons = []string{"2024-25", "2024"}
	err := job.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, feed.ErrInvalidSeason)
	assert.Contains(t, err.Error(), "2024:")
	assert.EqualValues(t, 3, f.calls.Load())
}
