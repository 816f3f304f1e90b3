/*
Package store archives experiment runs in an embedded BoltDB file.

Each run is keyed by its ID across three buckets: the summary, the
metric sample series, and the latency record series. A run is written
atomically in one transaction, after the experiment body has finished,
so the archive only ever holds complete runs. Reads back the series
for `meshbench runs show` and for re-exporting CSV without re-running
the experiment.
*/
package store
