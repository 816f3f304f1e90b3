/*
Package types defines the shared data model for meshbench.

These are plain data structures passed between the mesh lifecycle
manager, the telemetry collector, the latency correlator, and the run
archive. They carry no behavior and no dependencies on the packages
that produce or consume them.

Core types:

  - InstanceRecord: one running node instance (container handle, role,
    published ports, resolved identity)
  - MetricSample: one polled telemetry observation with raw values and
    counter-derived rates
  - LatencyRecord: one broadcast-to-receipt delivery measurement
  - RunSummary: metadata for one archived experiment run

Invariants maintained by producers:

  - A mesh's instance sequence is never reordered and index 0 is always
    the bootstrap record when non-empty.
  - MetricSample rates are derived only against the same instance's
    previous sample, never across instances.
  - LatencyRecord values are non-negative; negative deltas are clock
    skew and are discarded before records are built.
*/
package types
