package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/meshbench/meshbench/pkg/config"
	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/mesh"
	"github.com/meshbench/meshbench/pkg/report"
	"github.com/meshbench/meshbench/pkg/store"
	"github.com/meshbench/meshbench/pkg/types"
)

// Result is everything one experiment run produced.
type Result struct {
	Summary   types.RunSummary
	Samples   []types.MetricSample
	Latencies []types.LatencyRecord
}

// newRunSummary stamps the common metadata of a starting run.
func newRunSummary(kind types.RunKind, cfg *config.Config) types.RunSummary {
	return types.RunSummary{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
		PeerCount: cfg.Mesh.Peers,
	}
}

// meshConfig converts the file configuration into a mesh topology
// configuration.
func meshConfig(cfg *config.Config) mesh.Config {
	convention := mesh.ConventionFirstLine
	if cfg.Mesh.IdentityConvention == "event" {
		convention = mesh.ConventionEvent
	}

	return mesh.Config{
		ImageName:          cfg.Image.Name,
		BuildContext:       cfg.Image.BuildContext,
		NetworkName:        cfg.Network.Name,
		BootstrapName:      cfg.Mesh.BootstrapName,
		PeerCount:          cfg.Mesh.Peers,
		P2PPort:            cfg.Mesh.P2PPort,
		IdentityConvention: convention,
		ResolveTimeout:     time.Duration(cfg.Mesh.ResolveTimeoutS) * time.Second,
		SettleDelay:        time.Duration(cfg.Mesh.SettleDelayS) * time.Second,
	}
}

// Persist archives the run and, when configured, exports its series as
// CSV for downstream analysis. Partial results from a failed run are
// persisted too; the sample sequence is append-only and still usable.
func Persist(cfg *config.Config, result *Result) error {
	logger := log.WithRun(result.Summary.ID)

	s, err := store.Open(cfg.Output.DataDir)
	if err != nil {
		return err
	}
	defer s.Close()

	result.Summary.SampleCount = len(result.Samples)
	result.Summary.LatencyCount = len(result.Latencies)

	if err := s.SaveRun(&result.Summary, result.Samples, result.Latencies); err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}
	logger.Info().Str("data_dir", cfg.Output.DataDir).Msg("run archived")

	if cfg.Output.CSVDir == "" {
		return nil
	}

	if len(result.Samples) > 0 {
		path := filepath.Join(cfg.Output.CSVDir, fmt.Sprintf("samples-%s.csv", result.Summary.ID))
		if err := writeCSV(path, func(f *os.File) error {
			return report.WriteSamplesCSV(f, result.Samples)
		}); err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("samples exported")
	}

	if len(result.Latencies) > 0 {
		path := filepath.Join(cfg.Output.CSVDir, fmt.Sprintf("latencies-%s.csv", result.Summary.ID))
		if err := writeCSV(path, func(f *os.File) error {
			return report.WriteLatenciesCSV(f, result.Latencies)
		}); err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("latencies exported")
	}

	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
