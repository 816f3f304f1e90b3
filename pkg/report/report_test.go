package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshbench/meshbench/pkg/types"
)

func sample(elapsed int, instance string, role types.Role, goroutines, cpuRate float64) types.MetricSample {
	return types.MetricSample{
		ElapsedSeconds: elapsed,
		Instance:       instance,
		Role:           role,
		Values:         map[string]float64{"go_goroutines": goroutines},
		Rates:          map[string]float64{"process_cpu_seconds_total": cpuRate},
	}
}

func TestCompareRoles(t *testing.T) {
	samples := []types.MetricSample{
		// First tick: dropped as the known rate artifact.
		sample(0, "bootstrap-node", types.RoleBootstrap, 50, 0),
		sample(0, "p2p-peer-node-1", types.RolePeer, 10, 0),

		sample(5, "bootstrap-node", types.RoleBootstrap, 60, 0.8),
		sample(5, "p2p-peer-node-1", types.RolePeer, 10, 0.2),
		sample(5, "p2p-peer-node-2", types.RolePeer, 20, 0.4),
	}

	rows := CompareRoles(samples)
	require.Len(t, rows, 2, "one row per metric at elapsed=5")

	byMetric := map[string]RoleComparison{}
	for _, r := range rows {
		assert.Equal(t, 5, r.ElapsedSeconds)
		byMetric[r.Metric] = r
	}

	g := byMetric["go_goroutines"]
	assert.Equal(t, 60.0, g.Bootstrap)
	assert.Equal(t, 15.0, g.PeerMean)

	c := byMetric["process_cpu_seconds_total_rate"]
	assert.Equal(t, 0.8, c.Bootstrap)
	assert.InDelta(t, 0.3, c.PeerMean, 1e-9)
}

func TestCompareRolesEmpty(t *testing.T) {
	assert.Empty(t, CompareRoles(nil))

	// Only first-tick samples: everything is dropped.
	onlyFirst := []types.MetricSample{sample(0, "bootstrap-node", types.RoleBootstrap, 1, 0)}
	assert.Empty(t, CompareRoles(onlyFirst))
}

func TestSummarizeLatencies(t *testing.T) {
	records := []types.LatencyRecord{
		{MsgID: "m", Receiver: "p1", LatencyMs: 4.0},
		{MsgID: "m", Receiver: "p2", LatencyMs: 1.0},
		{MsgID: "m", Receiver: "p3", LatencyMs: 2.0},
		{MsgID: "m", Receiver: "p4", LatencyMs: 8.0},
	}

	s := SummarizeLatencies(records)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.MinMs)
	assert.Equal(t, 3.75, s.MeanMs)
	assert.Equal(t, 8.0, s.MaxMs)
	assert.Equal(t, 8.0, s.P95Ms)
}

func TestSummarizeLatenciesEmpty(t *testing.T) {
	assert.Equal(t, LatencySummary{}, SummarizeLatencies(nil))
}

func TestWriteSamplesCSV(t *testing.T) {
	samples := []types.MetricSample{
		sample(5, "bootstrap-node", types.RoleBootstrap, 60, 0.8),
		sample(10, "p2p-peer-node-1", types.RolePeer, 12, 0.1),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSamplesCSV(&buf, samples))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "elapsed_s,instance,role,go_goroutines,process_cpu_seconds_total_rate", lines[0])
	assert.Equal(t, "5,bootstrap-node,bootstrap,60,0.8", lines[1])
	assert.Equal(t, "10,p2p-peer-node-1,peer,12,0.1", lines[2])
}

func TestWriteLatenciesCSV(t *testing.T) {
	records := []types.LatencyRecord{
		{MsgID: "msg-7", Receiver: "p2p-peer-node-1", LatencyMs: 0.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLatenciesCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "msg_id,receiver,latency_ms", lines[0])
	assert.Equal(t, "msg-7,p2p-peer-node-1,0.500", lines[1])
}
