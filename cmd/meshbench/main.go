package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshbench/meshbench/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meshbench",
	Short: "Meshbench - P2P mesh experiment harness",
	Long: `Meshbench deploys a peer-to-peer mesh of containerized nodes on a
private network, drives experiments against it, and tears everything
down afterwards.

Two experiment variants are available: a resource-usage profile that
polls node telemetry over time, and a broadcast-latency measurement
that correlates delivery events across node logs.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		log.Init(log.Config{Level: log.Level(level)})
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Meshbench version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (defaults apply when omitted)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
}
