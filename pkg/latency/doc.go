/*
Package latency correlates broadcast events across instance logs into
propagation-latency measurements.

Each node logs independent JSON records with an event tag and a
nanosecond timestamp. The correlator takes every instance's
accumulated log, finds the first message_broadcast event observed
anywhere, and matches message_received events by msg_id. The processes
are independently clocked, so receipts that appear to precede the
broadcast are discarded as skew rather than surfaced as errors.
*/
package latency
