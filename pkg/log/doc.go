/*
Package log provides structured logging for meshbench using zerolog.

The package wraps zerolog behind a small API: Init configures the
global logger once at process entry, and WithComponent / WithInstance /
WithRun create child loggers that stamp every line with the relevant
context field. Console output is the default (experiments are run
interactively); JSON output is available for machine consumption.

Usage:

	log.Init(log.Config{Level: log.InfoLevel})

	meshLog := log.WithComponent("mesh")
	meshLog.Info().Int("peers", 5).Msg("deploying mesh")

	instLog := log.WithInstance("p2p-peer-node-40123")
	instLog.Warn().Err(err).Msg("telemetry endpoint unreachable")

Cleanup paths log errors instead of returning them; keeping the logger
global (initialized once, read-only afterwards) means those paths never
need a logger threaded through.
*/
package log
