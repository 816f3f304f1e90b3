/*
Package telemetry polls each instance's plain-text metrics endpoint
and turns monotonic counters into rates.

The Poller fetches one instance's endpoint with a short timeout,
parses the line-oriented "name value" / "name{labels} value" format
against a configured whitelist, and treats both "unreachable" and
"reachable but incomplete" as the same non-fatal outcome: ErrNoData,
with distinct warnings for the two cases so the operator can tell a
dead instance from a misconfigured whitelist.

The Collector drives the loop: for a fixed wall-clock duration, on a
fixed interval, it visits every instance in order, derives

	rate = (counter_t - counter_t-1) / (t - t-1)

per counter against that instance's own previous sample (never across
instances), and appends one MetricSample per instance per successful
tick. The first sample for any instance carries rate 0 by convention;
downstream reduction drops the first tick as a known artifact.

The resulting sequence is append-only. A fatal experiment failure after
polling started does not discard the samples already collected.
*/
package telemetry
