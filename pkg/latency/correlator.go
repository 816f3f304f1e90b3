package latency

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/meshbench/meshbench/pkg/log"
	"github.com/meshbench/meshbench/pkg/types"
)

// Event tags emitted by the node binary.
const (
	EventBroadcast = "message_broadcast"
	EventReceived  = "message_received"
)

// ErrNoData reports that no broadcast event, or no matching received
// events, were found in the supplied logs.
var ErrNoData = errors.New("no correlatable broadcast data")

// Event is one structured log record from a node instance.
type Event struct {
	Event       string `json:"event"`
	MsgID       string `json:"msg_id"`
	Sender      string `json:"sender,omitempty"`
	TimestampNs int64  `json:"timestamp_ns"`
}

// InstanceLog pairs an instance name with its accumulated log text.
type InstanceLog struct {
	Instance string
	Text     string
}

// ParseEvents extracts structured events from raw log text. Lines that
// are not valid JSON event records are silently skipped; node logs
// interleave non-event output.
func ParseEvents(text string) []Event {
	var events []Event
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] != '{' {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Event == "" {
			continue
		}
		events = append(events, ev)
	}
	return events
}

// Correlate scans all instance logs for the first broadcast event and
// computes per-receiver delivery latency for every received event
// sharing its message ID.
//
// Latency is (received - broadcast) nanoseconds converted to
// milliseconds. Received events with a timestamp before the broadcast
// are clock-skew artifacts and are discarded, not reported as errors.
// Returns ErrNoData when no broadcast or no matching receipts exist.
func Correlate(logs []InstanceLog) ([]types.LatencyRecord, error) {
	logger := log.WithComponent("latency")

	type received struct {
		instance string
		ev       Event
	}

	var broadcast *Event
	var receipts []received

	for _, il := range logs {
		for _, ev := range ParseEvents(il.Text) {
			switch ev.Event {
			case EventBroadcast:
				// Only the first broadcast observed across all
				// instances is authoritative.
				if broadcast == nil {
					b := ev
					broadcast = &b
				}
			case EventReceived:
				receipts = append(receipts, received{instance: il.Instance, ev: ev})
			}
		}
	}

	if broadcast == nil {
		logger.Warn().Msg("no broadcast event found in any instance log")
		return nil, ErrNoData
	}

	var records []types.LatencyRecord
	skewed := 0
	for _, r := range receipts {
		if r.ev.MsgID != broadcast.MsgID {
			continue
		}
		deltaNs := r.ev.TimestampNs - broadcast.TimestampNs
		if deltaNs < 0 {
			skewed++
			continue
		}
		records = append(records, types.LatencyRecord{
			MsgID:     r.ev.MsgID,
			Receiver:  r.instance,
			LatencyMs: float64(deltaNs) / 1e6,
		})
	}

	if skewed > 0 {
		logger.Warn().Int("discarded", skewed).Msg("dropped receipts with negative delta (clock skew)")
	}

	if len(records) == 0 {
		logger.Warn().Str("msg_id", broadcast.MsgID).Msg("broadcast had no matching receipts")
		return nil, ErrNoData
	}

	return records, nil
}
