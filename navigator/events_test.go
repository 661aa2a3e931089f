package navigator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversEventsToRunSubscribers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe("run-1")
	defer unsub()

	h.Publish("run-1", Event{Event: "action_planned", RunID: "run-1", Payload: map[string]any{"kind": "tap_by_id"}})

	var ev Event
	require.NoError(t, json.Unmarshal(<-ch, &ev))
	assert.Equal(t, "action_planned", ev.Event)
	assert.Equal(t, "run-1", ev.RunID)
}

func TestHubIsolatesRuns(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe("run-a")
	defer unsub()

	h.Publish("run-b", Event{Event: "run_finished", RunID: "run-b"})

	select {
	case b := <-ch:
		t.Fatalf("unexpected delivery: %s", b)
	default:
	}
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe("run-1")
	defer unsub()

	// Channel buffer is 16; the overflow must be dropped, not block.
	for i := 0; i < 40; i++ {
		h.Publish("run-1", Event{Event: "action_executed", RunID: "run-1"})
	}
	assert.Equal(t, 16, len(ch))
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe("run-1")
	unsub()

	h.Publish("run-1", Event{Event: "verdict", RunID: "run-1"})

	_, open := <-ch
	assert.False(t, open)
}

func TestHubFansOutToMultipleSubscribers(t *testing.T) {
	h := NewHub()
	ch1, unsub1 := h.Subscribe("run-1")
	defer unsub1()
	ch2, unsub2 := h.Subscribe("run-1")
	defer unsub2()

	h.Publish("run-1", Event{Event: "run_started", RunID: "run-1"})

	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}
