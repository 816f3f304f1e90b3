package latency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshbench/meshbench/pkg/log"
)

func init() {
	log.Init(log.Config{Level: log.ErrorLevel})
}

func TestParseEventsSkipsNonJSON(t *testing.T) {
	text := "12D3KooWsomePeerID\n" +
		"plain text noise\n" +
		`{"event":"message_received","msg_id":"7","timestamp_ns":1500}` + "\n" +
		`{not json}` + "\n" +
		`{"no_event_tag":true}` + "\n"

	events := ParseEvents(text)
	require.Len(t, events, 1)
	assert.Equal(t, EventReceived, events[0].Event)
	assert.Equal(t, "7", events[0].MsgID)
	assert.Equal(t, int64(1500), events[0].TimestampNs)
}

// TestCorrelate covers the reference scenario: one broadcast at
// ts=1000 with receipts at ts=1500 (kept), ts=900 (negative delta,
// dropped) and a receipt for a different msg_id (dropped).
func TestCorrelate(t *testing.T) {
	logs := []InstanceLog{
		{
			Instance: "bootstrap-node",
			Text:     `{"event":"message_broadcast","msg_id":"7","timestamp_ns":1000}`,
		},
		{
			Instance: "p2p-peer-node-1",
			Text:     `{"event":"message_received","msg_id":"7","timestamp_ns":1500}`,
		},
		{
			Instance: "p2p-peer-node-2",
			Text:     `{"event":"message_received","msg_id":"7","timestamp_ns":900}`,
		},
		{
			Instance: "p2p-peer-node-3",
			Text:     `{"event":"message_received","msg_id":"9","timestamp_ns":2000}`,
		},
	}

	records, err := Correlate(logs)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].MsgID)
	assert.Equal(t, "p2p-peer-node-1", records[0].Receiver)
	assert.InDelta(t, 0.0005, records[0].LatencyMs, 1e-12)
}

func TestCorrelateFirstBroadcastWins(t *testing.T) {
	logs := []InstanceLog{
		{
			Instance: "bootstrap-node",
			Text: `{"event":"message_broadcast","msg_id":"a","timestamp_ns":1000}` + "\n" +
				`{"event":"message_broadcast","msg_id":"b","timestamp_ns":2000}`,
		},
		{
			Instance: "p2p-peer-node-1",
			Text: `{"event":"message_received","msg_id":"a","timestamp_ns":3000}` + "\n" +
				`{"event":"message_received","msg_id":"b","timestamp_ns":4000}`,
		},
	}

	records, err := Correlate(logs)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].MsgID)
}

func TestCorrelateNoBroadcast(t *testing.T) {
	logs := []InstanceLog{
		{Instance: "p2p-peer-node-1", Text: `{"event":"message_received","msg_id":"7","timestamp_ns":1500}`},
	}

	_, err := Correlate(logs)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCorrelateNoMatchingReceipts(t *testing.T) {
	logs := []InstanceLog{
		{Instance: "bootstrap-node", Text: `{"event":"message_broadcast","msg_id":"7","timestamp_ns":1000}`},
		{Instance: "p2p-peer-node-1", Text: `{"event":"message_received","msg_id":"8","timestamp_ns":1500}`},
	}

	_, err := Correlate(logs)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCorrelateZeroDeltaKept(t *testing.T) {
	logs := []InstanceLog{
		{Instance: "bootstrap-node", Text: `{"event":"message_broadcast","msg_id":"7","timestamp_ns":1000}`},
		{Instance: "p2p-peer-node-1", Text: `{"event":"message_received","msg_id":"7","timestamp_ns":1000}`},
	}

	records, err := Correlate(logs)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].LatencyMs)
}
