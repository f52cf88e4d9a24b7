package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Hub is an in-memory PubSub keyed by channel name.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*hubSubscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*hubSubscription]struct{}),
	}
}

type hubSubscription struct {
	hub     *Hub
	channel string
	ch      chan []byte
	once    sync.Once
}

func (s *hubSubscription) Messages() <-chan []byte { return s.ch }

func (s *hubSubscription) Close() error {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
	return nil
}

func (h *Hub) Subscribe(_ context.Context, channel string) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &hubSubscription{
		hub:     h,
		channel: channel,
		ch:      make(chan []byte, subscriberBuffer),
	}
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*hubSubscription]struct{})
	}
	h.channels[channel][sub] = struct{}{}
	return sub, nil
}

func (h *Hub) unsubscribe(sub *hubSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.channels[sub.channel]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.channels, sub.channel)
		}
	}
	close(sub.ch)
}

// Publish never blocks; a subscriber with a full buffer misses the event.
// Subscribers only use events as a reload trigger, so the next event or a
// manual reload catches them up.
func (h *Hub) Publish(_ context.Context, channel string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.channels[channel] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribers reports how many subscriptions a channel has.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
