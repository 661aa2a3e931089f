package navigator

import (
	"encoding/json"
	"sync"
)

// Event is a progress notification for one navigation run. Out-of-scope
// surfaces (flow runner, web UI) subscribe to stream it.
type Event struct {
	Event   string      `json:"event"`
	RunID   string      `json:"run_id"`
	Payload interface{} `json:"payload,omitempty"`
}

type subscriber chan []byte

// Hub fans run events out to per-run subscribers. Slow subscribers drop
// events rather than block the navigation loop.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[subscriber]struct{} // runID -> set of subscribers
}

func NewHub() *Hub { return &Hub{subs: map[string]map[subscriber]struct{}{}} }

// Subscribe returns a channel of JSON-encoded events for one run. The
// caller must call the returned unsubscribe func when done.
func (h *Hub) Subscribe(runID string) (<-chan []byte, func()) {
	ch := make(subscriber, 16)
	h.mu.Lock()
	set := h.subs[runID]
	if set == nil {
		set = map[subscriber]struct{}{}
		h.subs[runID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.subs[runID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, runID)
			}
		}
		close(ch)
		h.mu.Unlock()
	}
	return ch, unsubscribe
}

func (h *Hub) Publish(runID string, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[runID] {
		select {
		case ch <- b:
		default:
		}
	}
}
