package experiment

import (
	"context"
	"time"

	"github.com/meshbench/meshbench/pkg/config"
	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/mesh"
	"github.com/meshbench/meshbench/pkg/runtime"
	"github.com/meshbench/meshbench/pkg/telemetry"
	"github.com/meshbench/meshbench/pkg/types"
)

// Resources runs the resource-usage experiment: deploy a star
// topology, poll every instance's telemetry for the measurement
// window, and return the accumulated sample series for
// bootstrap-vs-peer comparison.
func Resources(ctx context.Context, cfg *config.Config, rt runtime.Runtime) (*Result, error) {
	logger := log.WithComponent("experiment")

	result := &Result{Summary: newRunSummary(types.RunKindResources, cfg)}
	start := time.Now()

	err := mesh.Run(ctx, meshConfig(cfg), rt, func(ctx context.Context, m *mesh.Mesh) error {
		logger.Info().
			Str("run_id", result.Summary.ID).
			Int("peers", cfg.Mesh.Peers).
			Msg("mesh is up, starting resource monitoring")

		collector := &telemetry.Collector{
			Poller:   telemetry.NewPoller(cfg.Poll.Metrics),
			Counters: cfg.Poll.Counters,
			Interval: time.Duration(cfg.Poll.IntervalS) * time.Second,
			Duration: time.Duration(cfg.Poll.DurationS) * time.Second,
		}

		result.Samples = collector.Run(ctx, m.Nodes())
		return nil
	})

	result.Summary.Duration = time.Since(start)
	if err != nil {
		// Samples gathered before the failure are kept; the caller
		// decides whether the partial series is worth persisting.
		return result, err
	}
	return result, nil
}
