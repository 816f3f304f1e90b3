package types

import (
	"time"
)

// Role identifies the role of an instance within a mesh
type Role string

const (
	RoleBootstrap Role = "bootstrap"
	RolePeer      Role = "peer"
)

// InstanceRecord describes one running node instance.
//
// The ContainerID is an opaque handle owned by the container runtime;
// the mesh holds it only to drive lifecycle operations. All fields are
// fixed at launch except Identity, which is resolved once for the
// bootstrap instance and never changes afterwards.
type InstanceRecord struct {
	ContainerID   string
	Name          string
	Role          Role
	ControlPort   int
	TelemetryPort int

	// Identity is the instance's self-announced network identity.
	// Populated only for the bootstrap record once resolved.
	Identity string
}

// MetricSample is one polled observation of one instance.
type MetricSample struct {
	// ElapsedSeconds is relative to the start of the poll loop.
	ElapsedSeconds int
	Instance      string
	Role          Role

	// Values holds raw gauge/counter readings by metric name.
	Values map[string]float64

	// Rates holds per-second rates derived from cumulative counters
	// against this instance's previous sample. Zero on the first
	// sample for an instance.
	Rates map[string]float64
}

// LatencyRecord is one correlated broadcast delivery measurement.
type LatencyRecord struct {
	MsgID     string
	Receiver  string
	LatencyMs float64
}

// RunKind distinguishes the experiment variants
type RunKind string

const (
	RunKindResources RunKind = "resources"
	RunKindLatency   RunKind = "latency"
)

// RunSummary describes one archived experiment run.
type RunSummary struct {
	ID           string
	Kind         RunKind
	StartedAt    time.Time
	Duration     time.Duration
	PeerCount    int
	SampleCount  int
	LatencyCount int
	Notes        string
}
