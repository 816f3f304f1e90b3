package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/meshbench/meshbench/pkg/types"
)

// WriteSamplesCSV writes a metric sample series with a fixed column
// order: elapsed_s, instance, role, then every metric name in sorted
// order (rates suffixed _rate). Metrics absent from a sample leave
// their cell empty.
func WriteSamplesCSV(w io.Writer, samples []types.MetricSample) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	metrics := metricColumns(samples)

	header := append([]string{"elapsed_s", "instance", "role"}, metrics...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range samples {
		flat := flatten(s)
		record := []string{
			strconv.Itoa(s.ElapsedSeconds),
			s.Instance,
			string(s.Role),
		}
		for _, name := range metrics {
			if v, ok := flat[name]; ok {
				record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WriteLatenciesCSV writes latency records with a fixed column order.
func WriteLatenciesCSV(w io.Writer, records []types.LatencyRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"msg_id", "receiver", "latency_ms"}); err != nil {
		return err
	}

	for _, r := range records {
		record := []string{
			r.MsgID,
			r.Receiver,
			strconv.FormatFloat(r.LatencyMs, 'f', 3, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// metricColumns returns the sorted union of metric names across the
// series.
func metricColumns(samples []types.MetricSample) []string {
	seen := make(map[string]bool)
	for _, s := range samples {
		for name := range flatten(s) {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
