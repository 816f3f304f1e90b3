package report

import (
	"math"
	"sort"

	"github.com/meshbench/meshbench/pkg/types"
)

// RoleComparison is one reduced row: a metric at one point in time,
// bootstrap value against the mean of all peers.
type RoleComparison struct {
	ElapsedSeconds int
	Metric         string
	Bootstrap      float64
	PeerMean       float64
}

// CompareRoles reduces a sample series into a bootstrap-vs-average-peer
// comparison per elapsed second and metric.
//
// Counter rates appear under "<name>_rate". Rows for the first tick
// (elapsed 0) are dropped: its counter rates are a known zero-valued
// artifact of having no prior sample.
func CompareRoles(samples []types.MetricSample) []RoleComparison {
	type cell struct {
		bootstrap    float64
		hasBootstrap bool
		peerSum      float64
		peerCount    int
	}
	type key struct {
		elapsed int
		metric  string
	}

	cells := make(map[key]*cell)
	for _, s := range samples {
		if s.ElapsedSeconds == 0 {
			continue
		}
		for name, value := range flatten(s) {
			k := key{elapsed: s.ElapsedSeconds, metric: name}
			c := cells[k]
			if c == nil {
				c = &cell{}
				cells[k] = c
			}
			if s.Role == types.RoleBootstrap {
				c.bootstrap = value
				c.hasBootstrap = true
			} else {
				c.peerSum += value
				c.peerCount++
			}
		}
	}

	rows := make([]RoleComparison, 0, len(cells))
	for k, c := range cells {
		row := RoleComparison{ElapsedSeconds: k.elapsed, Metric: k.metric}
		if c.hasBootstrap {
			row.Bootstrap = c.bootstrap
		}
		if c.peerCount > 0 {
			row.PeerMean = c.peerSum / float64(c.peerCount)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ElapsedSeconds != rows[j].ElapsedSeconds {
			return rows[i].ElapsedSeconds < rows[j].ElapsedSeconds
		}
		return rows[i].Metric < rows[j].Metric
	})
	return rows
}

// flatten merges a sample's raw values and derived rates into one
// name-to-value map, suffixing rate names.
func flatten(s types.MetricSample) map[string]float64 {
	flat := make(map[string]float64, len(s.Values)+len(s.Rates))
	for name, v := range s.Values {
		flat[name] = v
	}
	for name, v := range s.Rates {
		flat[name+"_rate"] = v
	}
	return flat
}

// LatencySummary is a basic statistics snapshot of a latency
// distribution.
type LatencySummary struct {
	Count  int
	MinMs  float64
	MeanMs float64
	P95Ms  float64
	MaxMs  float64
}

// SummarizeLatencies computes summary statistics over latency records.
func SummarizeLatencies(records []types.LatencyRecord) LatencySummary {
	if len(records) == 0 {
		return LatencySummary{}
	}

	values := make([]float64, 0, len(records))
	var sum float64
	min := math.MaxFloat64
	max := 0.0
	for _, r := range records {
		values = append(values, r.LatencyMs)
		sum += r.LatencyMs
		if r.LatencyMs < min {
			min = r.LatencyMs
		}
		if r.LatencyMs > max {
			max = r.LatencyMs
		}
	}

	sort.Float64s(values)

	return LatencySummary{
		Count:  len(records),
		MinMs:  min,
		MeanMs: sum / float64(len(records)),
		P95Ms:  percentile(values, 0.95),
		MaxMs:  max,
	}
}

// percentile returns the q-th percentile of sorted values.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
