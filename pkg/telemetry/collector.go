package telemetry

import (
	"context"
	"math"
	"time"

	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/types"
)

// Collector runs the fixed-cadence poll loop over a set of instances
// and accumulates one MetricSample per instance per successful tick.
type Collector struct {
	Poller *Poller

	// Counters names the whitelisted metrics that are cumulative
	// counters; each gets a derived per-second rate against the same
	// instance's previous sample.
	Counters []string

	// Interval is the inter-tick sleep.
	Interval time.Duration

	// Duration is the total wall-clock measurement window.
	Duration time.Duration
}

// prevSample remembers an instance's last counter readings for rate
// derivation.
type prevSample struct {
	elapsed int
	values  map[string]float64
}

// Run polls every instance on a fixed cadence for the configured
// duration and returns the accumulated sample sequence.
//
// Instances are visited sequentially in the given order; a failed poll
// drops that instance's sample for the tick and the loop continues.
// The sequence is append-only: samples collected before ctx
// cancellation are returned, not rolled back.
func (c *Collector) Run(ctx context.Context, instances []*types.InstanceRecord) []types.MetricSample {
	logger := log.WithComponent("telemetry")

	var samples []types.MetricSample
	prev := make(map[string]prevSample, len(instances))

	start := time.Now()
	logger.Info().
		Dur("duration", c.Duration).
		Dur("interval", c.Interval).
		Int("instances", len(instances)).
		Msg("starting poll loop")

	for time.Since(start) < c.Duration {
		elapsed := int(math.Round(time.Since(start).Seconds()))

		for _, inst := range instances {
			values, err := c.Poller.PollOnce(ctx, inst)
			if err != nil {
				// Already logged by the poller; drop this tick's
				// sample for this instance.
				continue
			}

			sample := types.MetricSample{
				ElapsedSeconds: elapsed,
				Instance:       inst.Name,
				Role:           inst.Role,
				Values:         values,
				Rates:          c.deriveRates(prev, inst.Name, elapsed, values),
			}
			samples = append(samples, sample)

			prev[inst.Name] = prevSample{elapsed: elapsed, values: values}
		}

		select {
		case <-ctx.Done():
			logger.Warn().Msg("poll loop cancelled; returning partial series")
			return samples
		case <-time.After(c.Interval):
		}
	}

	logger.Info().Int("samples", len(samples)).Msg("poll loop finished")
	return samples
}

// deriveRates computes per-second counter rates against the
// instance's own previous sample. The first sample for an instance has
// no prior and yields rate 0 by convention; so does a tick with no
// elapsed time since the prior sample.
func (c *Collector) deriveRates(prev map[string]prevSample, instance string, elapsed int, values map[string]float64) map[string]float64 {
	rates := make(map[string]float64, len(c.Counters))
	for _, name := range c.Counters {
		rates[name] = 0
	}

	last, ok := prev[instance]
	if !ok {
		return rates
	}

	dt := elapsed - last.elapsed
	if dt <= 0 {
		return rates
	}

	for _, name := range c.Counters {
		cur, curOK := values[name]
		old, oldOK := last.values[name]
		if !curOK || !oldOK {
			continue
		}
		rates[name] = (cur - old) / float64(dt)
	}
	return rates
}
