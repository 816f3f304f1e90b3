package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/types"
)

// DefaultPath is the plain-text telemetry endpoint exposed by the node
// binary.
const DefaultPath = "/debug/metrics/prometheus"

// DefaultTimeout bounds one telemetry fetch so a single unreachable
// instance cannot stall a whole poll tick.
const DefaultTimeout = 5 * time.Second

// ErrNoData reports that an instance produced no usable sample for
// this tick. It is a transient per-instance condition, never fatal to
// the poll loop.
var ErrNoData = errors.New("no telemetry data")

// Poller fetches and parses one instance's telemetry endpoint.
type Poller struct {
	// Path is the HTTP path of the telemetry endpoint.
	Path string

	// Whitelist is the set of metric names to extract.
	Whitelist []string

	// Client is the HTTP client used for fetches.
	Client *http.Client
}

// NewPoller creates a poller for the given metric whitelist
func NewPoller(whitelist []string) *Poller {
	return &Poller{
		Path:      DefaultPath,
		Whitelist: whitelist,
		Client:    &http.Client{Timeout: DefaultTimeout},
	}
}

// PollOnce fetches one instance's telemetry and returns the
// whitelisted metric values.
//
// Returns ErrNoData if the endpoint is unreachable or if it responded
// without all expected metrics. Both conditions are logged distinctly
// and drop the instance's sample for this tick only.
func (p *Poller) PollOnce(ctx context.Context, inst *types.InstanceRecord) (map[string]float64, error) {
	logger := log.WithInstance(inst.Name)

	url := fmt.Sprintf("http://localhost:%d%s", inst.TelemetryPort, p.Path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Int("port", inst.TelemetryPort).Msg("telemetry endpoint unreachable")
		return nil, ErrNoData
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().Int("status", resp.StatusCode).Msg("telemetry endpoint returned error status")
		return nil, ErrNoData
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read telemetry response")
		return nil, ErrNoData
	}

	values := ParseMetrics(string(body), p.Whitelist)
	if len(values) < len(p.Whitelist) {
		logger.Warn().
			Int("found", len(values)).
			Int("expected", len(p.Whitelist)).
			Msg("telemetry reachable but missing expected metrics")
		return nil, ErrNoData
	}

	return values, nil
}
