package messages

import (
	"sync"

	"github.com/ivanmatek/ember/internal/domain/model"
)

const subscriberBuffer = 16

// Hub fans accepted messages out to live stream subscribers, keyed by match.
// Delivery is best-effort: a subscriber that stops draining its channel is
// skipped, never blocked on. History stays in the store.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan model.Message]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan model.Message]struct{}),
	}
}

// Subscribe registers a listener for one match and returns the channel plus a
// cancel func that closes it. Cancel is safe to call more than once.
func (h *Hub) Subscribe(matchID string) (<-chan model.Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan model.Message, subscriberBuffer)
	if h.subscribers[matchID] == nil {
		h.subscribers[matchID] = make(map[chan model.Message]struct{})
	}
	h.subscribers[matchID][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.unsubscribe(matchID, ch)
		})
	}
	return ch, cancel
}

func (h *Hub) unsubscribe(matchID string, ch chan model.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subscribers[matchID]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subscribers, matchID)
		}
	}
	close(ch)
}

func (h *Hub) Publish(msg model.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[msg.MatchID] {
		select {
		case ch <- msg:
		default:
			// Subscriber is not keeping up; drop rather than stall the sender.
		}
	}
}
