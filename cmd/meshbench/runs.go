package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshbench/meshbench/pkg/report"
	"github.com/meshbench/meshbench/pkg/store"
)

const timeUnit = time.Second

// Archive commands
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.Output.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open run archive: %v", err)
		}
		defer s.Close()

		runs, err := s.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No archived runs.")
			return nil
		}

		fmt.Printf("%-38s %-10s %-20s %-9s %5s %7s %9s\n",
			"ID", "KIND", "STARTED", "DURATION", "PEERS", "SAMPLES", "LATENCIES")
		for _, r := range runs {
			fmt.Printf("%-38s %-10s %-20s %-9s %5d %7d %9d\n",
				r.ID, r.Kind, r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Duration.Round(timeUnit), r.PeerCount, r.SampleCount, r.LatencyCount)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one archived run in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.Output.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open run archive: %v", err)
		}
		defer s.Close()

		summary, err := s.GetRun(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run %s\n", summary.ID)
		fmt.Printf("  Kind:      %s\n", summary.Kind)
		fmt.Printf("  Started:   %s\n", summary.StartedAt.Format(time.RFC3339))
		fmt.Printf("  Duration:  %s\n", summary.Duration.Round(timeUnit))
		fmt.Printf("  Peers:     %d\n", summary.PeerCount)
		if summary.Notes != "" {
			fmt.Printf("  Notes:     %s\n", summary.Notes)
		}

		samples, err := s.GetSamples(summary.ID)
		if err != nil {
			return err
		}
		if len(samples) > 0 {
			fmt.Println()
			printComparison(report.CompareRoles(samples))
		}

		latencies, err := s.GetLatencies(summary.ID)
		if err != nil {
			return err
		}
		if len(latencies) > 0 {
			fmt.Println()
			printLatencies(report.SummarizeLatencies(latencies))
		}
		return nil
	},
}

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

func printComparison(rows []report.RoleComparison) {
	fmt.Printf("%-10s %-40s %14s %14s\n", "ELAPSED", "METRIC", "BOOTSTRAP", "PEER MEAN")
	for _, row := range rows {
		fmt.Printf("%-10d %-40s %14.4f %14.4f\n",
			row.ElapsedSeconds, row.Metric, row.Bootstrap, row.PeerMean)
	}
}

func printLatencies(s report.LatencySummary) {
	fmt.Printf("Broadcast latency over %d deliveries:\n", s.Count)
	fmt.Printf("  Min:   %.3f ms\n", s.MinMs)
	fmt.Printf("  Mean:  %.3f ms\n", s.MeanMs)
	fmt.Printf("  P95:   %.3f ms\n", s.P95Ms)
	fmt.Printf("  Max:   %.3f ms\n", s.MaxMs)
}
