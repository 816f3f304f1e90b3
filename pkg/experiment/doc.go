/*
Package experiment composes the mesh lifecycle with a measurement body
into the two runnable experiment variants.

Resources deploys a star topology and drives the telemetry collector
over the whole fleet for a fixed window, producing the sample series
for a bootstrap-vs-peer comparison. Latency deploys the same topology,
triggers one broadcast through the bootstrap's control endpoint, and
correlates delivery events out of the instance logs.

Both variants run inside mesh.Run, so teardown is guaranteed on every
exit path, and both return whatever measurements existed at the time
of a failure: a partial series is data, not garbage.
*/
package experiment
