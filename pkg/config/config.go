package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the experiment configuration file.
type Config struct {
	Image   ImageConfig   `yaml:"image"`
	Network NetworkConfig `yaml:"network"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Poll    PollConfig    `yaml:"poll"`
	Latency LatencyConfig `yaml:"latency"`
	Output  OutputConfig  `yaml:"output"`
}

// ImageConfig describes the node image to build.
type ImageConfig struct {
	Name         string `yaml:"name"`
	BuildContext string `yaml:"build_context"`
}

// NetworkConfig describes the isolated experiment network.
type NetworkConfig struct {
	Name string `yaml:"name"`
}

// MeshConfig describes the topology and bootstrap behavior.
type MeshConfig struct {
	Peers         int    `yaml:"peers"`
	P2PPort       int    `yaml:"p2p_port"`
	BootstrapName string `yaml:"bootstrap_name"`

	// IdentityConvention is "first-line" or "event"; it must match the
	// node build's logging style.
	IdentityConvention string `yaml:"identity_convention"`

	ResolveTimeoutS int `yaml:"resolve_timeout_s"`
	SettleDelayS    int `yaml:"settle_delay_s"`
}

// PollConfig describes the telemetry measurement window.
type PollConfig struct {
	IntervalS int      `yaml:"interval_s"`
	DurationS int      `yaml:"duration_s"`
	Metrics   []string `yaml:"metrics"`

	// Counters lists which whitelisted metrics are cumulative counters
	// needing rate derivation.
	Counters []string `yaml:"counters"`
}

// LatencyConfig describes the broadcast-latency experiment window.
type LatencyConfig struct {
	// WaitS is how long to let a triggered broadcast propagate before
	// the instance logs are gathered and correlated.
	WaitS int `yaml:"wait_s"`
}

// OutputConfig describes where results land.
type OutputConfig struct {
	// DataDir holds the run archive database.
	DataDir string `yaml:"data_dir"`

	// CSVDir receives exported CSV files; empty disables export.
	CSVDir string `yaml:"csv_dir"`
}

// Default returns the configuration matching the reference node setup.
func Default() *Config {
	return &Config{
		Image: ImageConfig{
			Name:         "go-p2p-node",
			BuildContext: "./go-p2p",
		},
		Network: NetworkConfig{Name: "p2p-test-network"},
		Mesh: MeshConfig{
			Peers:              5,
			P2PPort:            4001,
			BootstrapName:      "bootstrap-node",
			IdentityConvention: "first-line",
			ResolveTimeoutS:    10,
			SettleDelayS:       10,
		},
		Poll: PollConfig{
			IntervalS: 5,
			DurationS: 60,
			Metrics: []string{
				"process_cpu_seconds_total",
				"go_memstats_alloc_bytes",
				"go_goroutines",
			},
			Counters: []string{"process_cpu_seconds_total"},
		},
		Latency: LatencyConfig{WaitS: 10},
		Output: OutputConfig{
			DataDir: ".",
			CSVDir:  ".",
		},
	}
}

// Load reads a YAML config file over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the harness cannot run.
func (c *Config) Validate() error {
	if c.Image.Name == "" {
		return fmt.Errorf("image.name must not be empty")
	}
	if c.Network.Name == "" {
		return fmt.Errorf("network.name must not be empty")
	}
	if c.Mesh.Peers < 0 {
		return fmt.Errorf("mesh.peers must be >= 0, got %d", c.Mesh.Peers)
	}
	if c.Mesh.BootstrapName == "" {
		return fmt.Errorf("mesh.bootstrap_name must not be empty")
	}
	switch c.Mesh.IdentityConvention {
	case "first-line", "event":
	default:
		return fmt.Errorf("mesh.identity_convention must be %q or %q, got %q",
			"first-line", "event", c.Mesh.IdentityConvention)
	}
	if c.Poll.IntervalS <= 0 {
		return fmt.Errorf("poll.interval_s must be > 0, got %d", c.Poll.IntervalS)
	}
	if c.Poll.DurationS <= 0 {
		return fmt.Errorf("poll.duration_s must be > 0, got %d", c.Poll.DurationS)
	}
	if len(c.Poll.Metrics) == 0 {
		return fmt.Errorf("poll.metrics must name at least one metric")
	}
	if c.Latency.WaitS <= 0 {
		return fmt.Errorf("latency.wait_s must be > 0, got %d", c.Latency.WaitS)
	}
	for _, counter := range c.Poll.Counters {
		found := false
		for _, m := range c.Poll.Metrics {
			if m == counter {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("poll.counters entry %q is not in poll.metrics", counter)
		}
	}
	return nil
}
