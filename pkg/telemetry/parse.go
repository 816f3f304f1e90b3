package telemetry

import (
	"strconv"
	"strings"
)

// ParseMetrics extracts whitelisted metrics from plain-text telemetry
// output.
//
// The format is line-oriented: comment lines start with '#', data
// lines are either "name value" or "name{labels} value" with the value
// as the last whitespace-delimited token. A line that matches a
// whitelisted name but fails to parse is skipped; it never aborts
// parsing of subsequent lines.
func ParseMetrics(text string, whitelist []string) map[string]float64 {
	results := make(map[string]float64, len(whitelist))

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, ok := matchWhitelist(line, whitelist)
		if !ok {
			continue
		}
		if _, dup := results[name]; dup {
			// First occurrence wins; labeled series of the same
			// family are not aggregated.
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			continue
		}
		results[name] = value
	}

	return results
}

// matchWhitelist reports which whitelisted metric name the line
// belongs to. A match requires the name to be followed by a label
// block, whitespace, or end of name token, so "go_goroutines" does not
// claim "go_goroutines_total".
func matchWhitelist(line string, whitelist []string) (string, bool) {
	for _, name := range whitelist {
		if !strings.HasPrefix(line, name) {
			continue
		}
		rest := line[len(name):]
		if rest == "" {
			continue // name with no value token
		}
		switch rest[0] {
		case '{', ' ', '\t':
			return name, true
		}
	}
	return "", false
}
