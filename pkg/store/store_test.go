package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshbench/meshbench/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)

	summary := &types.RunSummary{
		ID:          "run-1",
		Kind:        types.RunKindResources,
		StartedAt:   time.Now().UTC().Truncate(time.Second),
		Duration:    time.Minute,
		PeerCount:   5,
		SampleCount: 2,
	}
	samples := []types.MetricSample{
		{
			ElapsedSeconds: 5,
			Instance:       "bootstrap-node",
			Role:           types.RoleBootstrap,
			Values:         map[string]float64{"go_goroutines": 20},
			Rates:          map[string]float64{"process_cpu_seconds_total": 0.5},
		},
		{
			ElapsedSeconds: 5,
			Instance:       "p2p-peer-node-1",
			Role:           types.RolePeer,
			Values:         map[string]float64{"go_goroutines": 12},
			Rates:          map[string]float64{"process_cpu_seconds_total": 0.1},
		},
	}

	require.NoError(t, s.SaveRun(summary, samples, nil))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	gotSamples, err := s.GetSamples("run-1")
	require.NoError(t, err)
	assert.Equal(t, samples, gotSamples)

	gotLatencies, err := s.GetLatencies("run-1")
	require.NoError(t, err)
	assert.Empty(t, gotLatencies)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetSamples("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetLatencies("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsMostRecentFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		summary := &types.RunSummary{
			ID:        id,
			Kind:      types.RunKindLatency,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.SaveRun(summary, nil, nil))
	}

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, "run-a", runs[2].ID)
}

func TestSaveRunOverwrite(t *testing.T) {
	s := openTestStore(t)

	summary := &types.RunSummary{ID: "run-1", Kind: types.RunKindLatency, StartedAt: time.Now().UTC()}
	require.NoError(t, s.SaveRun(summary, nil, []types.LatencyRecord{{MsgID: "m", Receiver: "p", LatencyMs: 1.5}}))

	summary.Notes = "rerun"
	require.NoError(t, s.SaveRun(summary, nil, nil))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "rerun", got.Notes)

	latencies, err := s.GetLatencies("run-1")
	require.NoError(t, err)
	assert.Empty(t, latencies)
}
