package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMetrics(t *testing.T) {
	whitelist := []string{
		"process_cpu_seconds_total",
		"go_memstats_alloc_bytes",
		"go_goroutines",
	}

	tests := []struct {
		name     string
		text     string
		expected map[string]float64
	}{
		{
			name:     "bare name and value",
			text:     "go_goroutines 42",
			expected: map[string]float64{"go_goroutines": 42.0},
		},
		{
			name:     "labeled metric",
			text:     `process_cpu_seconds_total{pid="1"} 12.5`,
			expected: map[string]float64{"process_cpu_seconds_total": 12.5},
		},
		{
			name:     "comment lines yield nothing",
			text:     "# HELP foo\n# TYPE go_goroutines gauge",
			expected: map[string]float64{},
		},
		{
			name:     "missing value does not abort later lines",
			text:     "go_goroutines\ngo_memstats_alloc_bytes 1024",
			expected: map[string]float64{"go_memstats_alloc_bytes": 1024.0},
		},
		{
			name:     "malformed value does not abort later lines",
			text:     "go_goroutines banana\nprocess_cpu_seconds_total 3.5",
			expected: map[string]float64{"process_cpu_seconds_total": 3.5},
		},
		{
			name:     "non-whitelisted metrics ignored",
			text:     "go_threads 18\ngo_goroutines 7",
			expected: map[string]float64{"go_goroutines": 7.0},
		},
		{
			name:     "prefix does not claim longer names",
			text:     "go_goroutines_total 99",
			expected: map[string]float64{},
		},
		{
			name:     "scientific notation",
			text:     "go_memstats_alloc_bytes 1.756056e+06",
			expected: map[string]float64{"go_memstats_alloc_bytes": 1756056.0},
		},
		{
			name: "full scrape",
			text: "# HELP go_goroutines Number of goroutines.\n" +
				"# TYPE go_goroutines gauge\n" +
				"go_goroutines 23\n" +
				"process_cpu_seconds_total 1.86\n" +
				"go_memstats_alloc_bytes 2.09856e+06\n",
			expected: map[string]float64{
				"go_goroutines":             23.0,
				"process_cpu_seconds_total": 1.86,
				"go_memstats_alloc_bytes":   2098560.0,
			},
		},
		{
			name:     "empty input",
			text:     "",
			expected: map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMetrics(tt.text, whitelist)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseMetricsFirstOccurrenceWins(t *testing.T) {
	text := `go_goroutines{le="a"} 5` + "\n" + `go_goroutines{le="b"} 9`
	got := ParseMetrics(text, []string{"go_goroutines"})
	assert.Equal(t, map[string]float64{"go_goroutines": 5.0}, got)
}
