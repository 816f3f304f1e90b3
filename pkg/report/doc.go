/*
Package report reduces measurement series and exports them for
downstream analysis.

The harness's responsibility ends at structured records: CSV files
with a fixed column order for plotting elsewhere, a
bootstrap-vs-average-peer comparison table, and basic latency
distribution statistics. No rendering happens here.
*/
package report
