package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meshbench/meshbench/pkg/config"
	"github.com/meshbench/meshbench/pkg/experiment"
	"github.com/meshbench/meshbench/pkg/report"
	"github.com/meshbench/meshbench/pkg/runtime"
)

// Run commands
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an experiment against a fresh mesh",
}

var runResourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Profile per-node resource usage over time",
	Long: `Deploy the mesh, poll every node's telemetry endpoint for the
configured duration, then print a bootstrap-vs-peer comparison of the
collected metrics. The series is archived and, when configured,
exported as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		rt, err := runtime.NewDockerRuntime()
		if err != nil {
			return fmt.Errorf("failed to connect to container runtime: %v", err)
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Running resource experiment (%d peers, %ds poll window)...\n",
			cfg.Mesh.Peers, cfg.Poll.DurationS)

		result, runErr := experiment.Resources(ctx, cfg, rt)
		if persistErr := experiment.Persist(cfg, result); persistErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist run: %v\n", persistErr)
		}

		if len(result.Samples) > 0 {
			fmt.Println()
			printComparison(report.CompareRoles(result.Samples))
		}

		fmt.Println()
		if runErr != nil {
			fmt.Printf("Run %s finished with errors (%d samples kept)\n",
				result.Summary.ID, len(result.Samples))
			return runErr
		}
		fmt.Printf("✓ Run %s complete: %d samples in %s\n",
			result.Summary.ID, len(result.Samples), result.Summary.Duration.Round(timeUnit))
		return nil
	},
}

var runLatencyCmd = &cobra.Command{
	Use:   "latency",
	Short: "Measure broadcast propagation latency",
	Long: `Deploy the mesh, trigger a single broadcast on the bootstrap node,
wait for it to propagate, then correlate the delivery events found in
every node's logs into per-receiver latencies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		rt, err := runtime.NewDockerRuntime()
		if err != nil {
			return fmt.Errorf("failed to connect to container runtime: %v", err)
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Running latency experiment (%d peers, %ds propagation wait)...\n",
			cfg.Mesh.Peers, cfg.Latency.WaitS)

		result, runErr := experiment.Latency(ctx, cfg, rt)
		if persistErr := experiment.Persist(cfg, result); persistErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist run: %v\n", persistErr)
		}

		if len(result.Latencies) > 0 {
			fmt.Println()
			printLatencies(report.SummarizeLatencies(result.Latencies))
		}

		fmt.Println()
		if runErr != nil {
			fmt.Printf("Run %s finished with errors (%d latencies kept)\n",
				result.Summary.ID, len(result.Latencies))
			return runErr
		}
		fmt.Printf("✓ Run %s complete: %d latencies in %s\n",
			result.Summary.ID, len(result.Latencies), result.Summary.Duration.Round(timeUnit))
		return nil
	},
}

func init() {
	runCmd.AddCommand(runResourcesCmd)
	runCmd.AddCommand(runLatencyCmd)

	runCmd.PersistentFlags().Int("peers", -1, "Number of peer nodes (overrides config)")
	runResourcesCmd.Flags().Int("duration", 0, "Poll window in seconds (overrides config)")
}

// loadConfig resolves the effective config: file (or defaults) first,
// then any explicit flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if path == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %v", err)
		}
	}

	if cmd.Flags().Changed("peers") {
		cfg.Mesh.Peers, _ = cmd.Flags().GetInt("peers")
	}
	if cmd.Flags().Changed("duration") {
		cfg.Poll.DurationS, _ = cmd.Flags().GetInt("duration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	return cfg, nil
}
