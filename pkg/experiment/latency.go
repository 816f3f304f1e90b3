package experiment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/meshbench/meshbench/pkg/config"
	"github.com/meshbench/meshbench/pkg/latency"
	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/mesh"
	"github.com/meshbench/meshbench/pkg/runtime"
	"github.com/meshbench/meshbench/pkg/types"
)

// broadcastPath is the control endpoint that triggers a broadcast on
// an instance.
const broadcastPath = "/broadcast"

// controlTimeout bounds the broadcast trigger request.
const controlTimeout = 5 * time.Second

// Latency runs the propagation-latency experiment: deploy the mesh,
// trigger one broadcast on the bootstrap, let it propagate, then
// gather every instance's logs and correlate delivery events.
func Latency(ctx context.Context, cfg *config.Config, rt runtime.Runtime) (*Result, error) {
	logger := log.WithComponent("experiment")

	result := &Result{Summary: newRunSummary(types.RunKindLatency, cfg)}
	start := time.Now()

	err := mesh.Run(ctx, meshConfig(cfg), rt, func(ctx context.Context, m *mesh.Mesh) error {
		bootstrap := m.Bootstrap()

		logger.Info().
			Str("run_id", result.Summary.ID).
			Msg("mesh is up, triggering broadcast on bootstrap")

		if err := triggerBroadcast(ctx, bootstrap); err != nil {
			return err
		}

		wait := time.Duration(cfg.Latency.WaitS) * time.Second
		logger.Info().Dur("wait", wait).Msg("waiting for broadcast to propagate")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		logs := make([]latency.InstanceLog, 0, len(m.Nodes()))
		for _, node := range m.Nodes() {
			text, err := rt.Logs(ctx, node.ContainerID)
			if err != nil {
				return fmt.Errorf("failed to gather logs of %s: %w", node.Name, err)
			}
			logs = append(logs, latency.InstanceLog{Instance: node.Name, Text: text})
		}

		records, err := latency.Correlate(logs)
		if err != nil {
			return err
		}
		result.Latencies = records
		return nil
	})

	result.Summary.Duration = time.Since(start)
	if err != nil {
		return result, err
	}
	return result, nil
}

// triggerBroadcast POSTs to the instance's control endpoint. Any error
// status or transport failure is fatal to the experiment: without a
// broadcast there is nothing to measure.
func triggerBroadcast(ctx context.Context, inst *types.InstanceRecord) error {
	url := fmt.Sprintf("http://localhost:%d%s", inst.ControlPort, broadcastPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build broadcast request: %w", err)
	}

	client := &http.Client{Timeout: controlTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to trigger broadcast on %s: %w", inst.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("broadcast trigger on %s returned status %d", inst.Name, resp.StatusCode)
	}
	return nil
}
